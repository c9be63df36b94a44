package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Source is the contract an external tree must satisfy to be mirrored.
type Source[S any] interface {
	// Children returns the node's children in traversal order.
	Children() []S
	// Label returns the node's display label.
	Label() string
	// RawText returns the source text the node spans.
	RawText() string
}

// MirrorFunc maps one source node to a payload.
type MirrorFunc[S, T any] func(S) (T, error)

// MirrorError reports a mirror failure together with the path of the
// source node being mirrored.
type MirrorError struct {
	Path string
	Err  error
}

func (e *MirrorError) Error() string { return fmt.Sprintf("mirror node %s: %v", e.Path, e.Err) }

func (e *MirrorError) Unwrap() error { return e.Err }

type buildConfig struct {
	leafText int
	measure  func(string) float64
}

// BuildOption configures [Build].
type BuildOption func(*buildConfig)

// WithLeafText attaches one synthetic label leaf carrying the source node's
// raw text to every mirrored node that has no source children. Text longer
// than maxLen runes is truncated; maxLen <= 0 disables truncation.
func WithLeafText(maxLen int) BuildOption {
	return func(c *buildConfig) {
		if maxLen <= 0 {
			maxLen = -1
		}
		c.leafText = maxLen
	}
}

// WithMeasure sets each node's Intrinsic width from its label.
func WithMeasure(fn func(label string) float64) BuildOption {
	return func(c *buildConfig) { c.measure = fn }
}

// Build mirrors root depth-first into a new tree. The returned root is
// expanded; all other nodes start collapsed. If mirror fails for any node
// the build is aborted and no tree is returned.
func Build[S Source[S], T any](root S, mirror MirrorFunc[S, T], opts ...BuildOption) (*Node[T], error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	n, err := build(root, mirror, &cfg, RootID)
	if err != nil {
		return nil, err
	}
	n.Collapsed = false
	return n, nil
}

func build[S Source[S], T any](src S, mirror MirrorFunc[S, T], cfg *buildConfig, path string) (*Node[T], error) {
	payload, err := mirror(src)
	if err != nil {
		return nil, &MirrorError{Path: path, Err: err}
	}
	node := New(payload, src.Label())
	measure(cfg, node)

	kids := src.Children()
	for i, kid := range kids {
		child, err := build(kid, mirror, cfg, path+"."+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		AddChild(node, child)
	}

	if len(kids) == 0 && cfg.leafText != 0 {
		leaf := New(payload, leafLabel(src.RawText(), cfg.leafText))
		leaf.Synthetic = true
		measure(cfg, leaf)
		AddChild(node, leaf)
	}
	return node, nil
}

func measure[T any](cfg *buildConfig, n *Node[T]) {
	if cfg.measure != nil {
		n.Intrinsic = cfg.measure(n.Label)
	}
}

// leafLabel collapses whitespace runs and truncates to maxLen runes.
func leafLabel(text string, maxLen int) string {
	s := strings.Join(strings.Fields(text), " ")
	if maxLen < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
