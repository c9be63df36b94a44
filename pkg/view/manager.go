package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/viewstore"
)

// ErrNotFound is returned by [Manager] for unknown handles.
var ErrNotFound = errors.New("view not found")

// LoaderFactory creates the loader for a view opened on path.
type LoaderFactory func(path string, lang source.Language) Loader

// Manager owns the views of a long-running process. Each view is guarded by
// its own mutex, and its state is written to a [viewstore.Store] after every
// change so that a handle can be restored after a restart.
type Manager struct {
	store     viewstore.Store
	newLoader LoaderFactory
	opts      Options
	logger    *log.Logger

	mu    sync.Mutex
	views map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	view *View
	rec  *viewstore.Record
}

// NewManager creates a manager. opts is the template for every view; its
// ID, Path and Mode are set per view. A nil store keeps state in memory and
// a nil factory loads files from disk.
func NewManager(store viewstore.Store, newLoader LoaderFactory, opts Options) *Manager {
	if store == nil {
		store = viewstore.NewMemory()
	}
	if newLoader == nil {
		newLoader = func(path string, lang source.Language) Loader { return FileLoader(path, lang) }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		store:     store,
		newLoader: newLoader,
		opts:      opts,
		logger:    logger,
		views:     make(map[string]*entry),
	}
}

// Open opens a view on path and returns its handle.
func (m *Manager) Open(ctx context.Context, path string, lang source.Language, mode Mode) (string, error) {
	if mode == "" {
		mode = ModeToggle
	}
	now := time.Now().UTC()
	rec := &viewstore.Record{
		ID:        uuid.NewString(),
		Path:      path,
		Language:  string(lang),
		Mode:      string(mode),
		CreatedAt: now,
		UpdatedAt: now,
	}
	v, err := m.open(ctx, rec)
	if err != nil {
		return "", err
	}
	rec.Expanded = v.Expanded()
	if err := m.store.Put(ctx, rec); err != nil {
		v.Close()
		return "", fmt.Errorf("store view: %w", err)
	}

	m.mu.Lock()
	m.views[rec.ID] = &entry{view: v, rec: rec}
	m.mu.Unlock()

	m.logger.Info("opened view", "id", rec.ID, "path", path)
	return rec.ID, nil
}

func (m *Manager) open(ctx context.Context, rec *viewstore.Record) (*View, error) {
	mode, err := ParseMode(rec.Mode)
	if err != nil {
		return nil, err
	}
	opts := m.opts
	opts.ID = rec.ID
	opts.Path = rec.Path
	opts.Mode = mode
	opts.Logger = m.logger
	return Open(ctx, m.newLoader(rec.Path, source.Language(rec.Language)), opts)
}

// With runs fn on the view with the given handle while holding the view's
// lock, then persists the view's state. A handle known to the store but not
// to this process is restored first.
func (m *Manager) With(ctx context.Context, id string, fn func(*View) error) error {
	e, err := m.entry(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.view.Closed() {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fnErr := fn(e.view)

	e.rec.Mode = string(e.view.Mode())
	e.rec.Expanded = e.view.Expanded()
	e.rec.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, e.rec.Clone()); err != nil {
		m.logger.Warn("persist view", "id", id, "err", err)
	}
	return fnErr
}

func (m *Manager) entry(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	e, ok := m.views[id]
	m.mu.Unlock()
	if ok {
		return e, nil
	}

	rec, err := m.store.Get(ctx, id)
	if errors.Is(err, viewstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	v, err := m.open(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("restore view %s: %w", id, err)
	}
	if !v.NoContent() {
		_ = v.Restore(rec.Expanded)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.views[id]; ok {
		// Another request restored the view first.
		v.Close()
		return existing, nil
	}
	e = &entry{view: v, rec: rec}
	m.views[id] = e
	m.logger.Info("restored view", "id", id, "path", rec.Path)
	return e, nil
}

// Close closes the view and deletes its stored state.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.views[id]
	delete(m.views, id)
	m.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.view.Close()
		e.mu.Unlock()
	} else if _, err := m.store.Get(ctx, id); errors.Is(err, viewstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.store.Delete(ctx, id)
}

// List returns the stored records of all views.
func (m *Manager) List(ctx context.Context) ([]*viewstore.Record, error) {
	return m.store.List(ctx)
}

// Shutdown closes every in-memory view without deleting stored state.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.views {
		e.mu.Lock()
		e.view.Close()
		e.mu.Unlock()
		delete(m.views, id)
	}
}
