package tree

import "iter"

// Visit walks the subtree rooted at n in pre-order, including the children
// of collapsed nodes.
func Visit[T any](n *Node[T], visit func(*Node[T])) {
	visit(n)
	for _, c := range n.children {
		Visit(c, visit)
	}
}

// VisitVisible walks the subtree rooted at n in pre-order, skipping the
// children of collapsed nodes. n itself is always visited.
func VisitVisible[T any](n *Node[T], visit func(*Node[T])) {
	visit(n)
	if n.Collapsed {
		return
	}
	for _, c := range n.children {
		VisitVisible(c, visit)
	}
}

// All returns a pre-order iterator over the subtree rooted at n.
func All[T any](n *Node[T]) iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		walk(n, false, yield)
	}
}

// Visible returns a pre-order iterator over the visible part of the
// subtree rooted at n.
func Visible[T any](n *Node[T]) iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		walk(n, true, yield)
	}
}

func walk[T any](n *Node[T], visibleOnly bool, yield func(*Node[T]) bool) bool {
	if !yield(n) {
		return false
	}
	if visibleOnly && n.Collapsed {
		return true
	}
	for _, c := range n.children {
		if !walk(c, visibleOnly, yield) {
			return false
		}
	}
	return true
}

// Expanded returns the IDs of all expanded nodes with children, in pre-order.
func Expanded[T any](root *Node[T]) []string {
	var ids []string
	for n := range All(root) {
		if n.Expanded() {
			ids = append(ids, n.ID())
		}
	}
	return ids
}

// CollapseAll marks every node in the subtree rooted at n as collapsed.
func CollapseAll[T any](n *Node[T]) {
	Visit(n, func(c *Node[T]) { c.Collapsed = true })
}
