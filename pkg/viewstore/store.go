// Package viewstore persists the state of open views so a view handle
// survives a server restart.
//
// A [Record] captures what is needed to rebuild a view: the source it was
// opened on, the activation mode, and the IDs of the nodes that were
// expanded. The tree itself is never stored; it is re-parsed from the source
// when the view is restored.
//
// Implementations:
//   - [Memory]: in-process map for tests and single-shot servers
//   - [FileStore]: one JSON file per view under the XDG data directory
//   - [MongoStore]: a MongoDB collection for shared deployments
package viewstore

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("view not found")

// Record is the persisted state of one view.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Path      string    `json:"path" bson:"path"`
	Language  string    `json:"language,omitempty" bson:"language,omitempty"`
	Mode      string    `json:"mode" bson:"mode"`
	Expanded  []string  `json:"expanded,omitempty" bson:"expanded,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Expanded = slices.Clone(r.Expanded)
	return &c
}

// Store is the interface for view state backends.
type Store interface {
	// Get retrieves a record by ID. It returns ErrNotFound if none exists.
	Get(ctx context.Context, id string) (*Record, error)

	// Put creates or replaces a record.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Memory
// =============================================================================

// Memory is an in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Put(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }

func sortRecords(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

var _ Store = (*Memory)(nil)
