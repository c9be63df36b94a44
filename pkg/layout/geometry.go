package layout

import (
	"iter"

	"github.com/matzehuels/astview/pkg/tree"
)

// Box is the drawable rectangle of one visible node.
type Box[T any] struct {
	Node      *tree.Node[T]
	X, Y      float64
	Width     float64
	Height    float64
	Label     string
	Collapsed bool
}

// CenterX returns the horizontal midpoint of the box.
func (b Box[T]) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical midpoint of the box.
func (b Box[T]) CenterY() float64 { return b.Y + b.Height/2 }

// Edge is a line segment from a child box midpoint to its parent box
// midpoint.
type Edge[T any] struct {
	Child, Parent *tree.Node[T]
	X1, Y1        float64
	X2, Y2        float64
}

// Boxes yields a box for every visible node in pre-order. A node reports
// Collapsed when it has children that are not laid out, including nodes
// clipped by a cap.
func (e *Engine[T]) Boxes(root *tree.Node[T]) iter.Seq[Box[T]] {
	return func(yield func(Box[T]) bool) {
		e.walk(root, func(n *tree.Node[T]) bool {
			return yield(e.box(n))
		})
	}
}

// Edges yields one edge for every visible non-root node in pre-order.
func (e *Engine[T]) Edges(root *tree.Node[T]) iter.Seq[Edge[T]] {
	return func(yield func(Edge[T]) bool) {
		e.walk(root, func(n *tree.Node[T]) bool {
			if n == root {
				return true
			}
			p := n.Parent()
			half := e.opts.BoxHeight / 2
			return yield(Edge[T]{
				Child:  n,
				Parent: p,
				X1:     n.CenterX(),
				Y1:     n.Y + half,
				X2:     p.CenterX(),
				Y2:     p.Y + half,
			})
		})
	}
}

func (e *Engine[T]) box(n *tree.Node[T]) Box[T] {
	return Box[T]{
		Node:      n,
		X:         n.X,
		Y:         n.Y,
		Width:     n.Width,
		Height:    e.opts.BoxHeight,
		Label:     n.Label,
		Collapsed: !n.IsLeaf() && !e.expanded(n),
	}
}

// walk visits the laid-out nodes in pre-order until fn returns false.
func (e *Engine[T]) walk(n *tree.Node[T], fn func(*tree.Node[T]) bool) bool {
	if !fn(n) {
		return false
	}
	if !e.expanded(n) {
		return true
	}
	for _, c := range n.Children() {
		if !e.walk(c, fn) {
			return false
		}
	}
	return true
}

// Hit returns the visible node whose box contains the point (x, y), or nil.
func (e *Engine[T]) Hit(root *tree.Node[T], x, y float64) *tree.Node[T] {
	var found *tree.Node[T]
	e.walk(root, func(n *tree.Node[T]) bool {
		if x >= n.X && x < n.X+n.Width && y >= n.Y && y < n.Y+e.opts.BoxHeight {
			found = n
			return false
		}
		return true
	})
	return found
}
