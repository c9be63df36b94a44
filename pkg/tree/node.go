package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RootID is the path ID of every tree's root node.
const RootID = "0"

// ErrNotFound is returned by [Find] when a path ID does not resolve.
var ErrNotFound = errors.New("node not found")

// Node is a positioned, sized tree node carrying an opaque payload.
type Node[T any] struct {
	// Payload is the caller's data for this node.
	Payload T

	// Label is the display text, used to derive the intrinsic width.
	Label string

	// Synthetic marks an augmented label leaf that has no source counterpart.
	Synthetic bool

	// X is the left edge of the node's horizontal slot. Y is its row offset.
	X, Y float64

	// Width is the computed width of the slot.
	Width float64

	// Intrinsic is the node's own width, independent of its children.
	Intrinsic float64

	// Collapsed hides the node's children from layout and rendering.
	Collapsed bool

	parent   *Node[T]
	children []*Node[T]
	index    int
}

// New creates a detached node. Detached nodes start collapsed; [Build]
// expands the root.
func New[T any](payload T, label string) *Node[T] {
	return &Node[T]{Payload: payload, Label: label, Collapsed: true}
}

// AddChild appends child to parent and sets its back-reference.
// It panics if child already has a parent or if the edge would form a cycle.
func AddChild[T any](parent, child *Node[T]) {
	if child.parent != nil {
		panic("tree: node already has a parent")
	}
	for n := parent; n != nil; n = n.parent {
		if n == child {
			panic("tree: adding node would create a cycle")
		}
	}
	child.parent = parent
	child.index = len(parent.children)
	parent.children = append(parent.children, child)
}

// Parent returns the node's parent, or nil for the root.
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// Children returns the node's children in source order.
// The returned slice must not be modified.
func (n *Node[T]) Children() []*Node[T] { return n.children }

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool { return len(n.children) == 0 }

// Expanded reports whether the node's children take part in layout.
func (n *Node[T]) Expanded() bool { return !n.Collapsed && len(n.children) > 0 }

// CenterX returns the horizontal midpoint of the node's slot.
func (n *Node[T]) CenterX() float64 { return n.X + n.Width/2 }

// Depth returns the number of edges between the node and its root.
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Visible reports whether the node would be drawn: it is the root, or its
// parent is visible and not collapsed.
func (n *Node[T]) Visible() bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.Collapsed {
			return false
		}
	}
	return true
}

// Root walks up to the node's root.
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// ID returns the node's path ID, e.g. "0.2.1".
func (n *Node[T]) ID() string {
	var idx []int
	for c := n; c.parent != nil; c = c.parent {
		idx = append(idx, c.index)
	}
	var b strings.Builder
	b.WriteString(RootID)
	for i := len(idx) - 1; i >= 0; i-- {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(idx[i]))
	}
	return b.String()
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node[T]) Size() int {
	count := 0
	Visit(n, func(*Node[T]) { count++ })
	return count
}

// Find resolves a path ID relative to root.
func Find[T any](root *Node[T], id string) (*Node[T], error) {
	parts := strings.Split(id, ".")
	if len(parts) == 0 || parts[0] != RootID {
		return nil, fmt.Errorf("%w: %q: path must start with %q", ErrNotFound, id, RootID)
	}
	n := root
	for _, p := range parts[1:] {
		i, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: invalid index %q", ErrNotFound, id, p)
		}
		if i < 0 || i >= len(n.children) {
			return nil, fmt.Errorf("%w: %q: index %d out of range", ErrNotFound, id, i)
		}
		n = n.children[i]
	}
	return n, nil
}
