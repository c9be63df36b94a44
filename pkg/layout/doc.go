// Package layout positions the nodes of a [tree.Node] tree for drawing.
//
// # Overview
//
// The engine works in two passes over the visible part of a tree. A
// post-order pass ([Engine.ComputeWidths]) sizes every node: a collapsed or
// childless node is as wide as its own label, an expanded node is as wide as
// the larger of its label and the sum of its children. A pre-order pass
// ([Engine.AssignPositions]) then hands each node a horizontal slot and a
// row: children of an expanded node tile its slot from left to right, and
// every level sits one [Options.RowHeight] below its parent.
//
//	eng := layout.New[source.Node](layout.Options{})
//	res := eng.Layout(root)
//	for b := range eng.Boxes(root) {
//		draw(b.X, b.Y, b.Width, b.Height, b.Label)
//	}
//
// [Engine.Toggle] flips a node between collapsed and expanded and lays the
// whole tree out again. Expanding reveals exactly one new level; collapsing
// resets every descendant, so a later expand starts from a clean state.
//
// # Output
//
// [Engine.Boxes] and [Engine.Edges] are lazy sequences over the visible
// nodes. Nothing is materialized until a renderer ranges over them. An edge
// joins the midpoint of a child box to the midpoint of its parent box.
//
// # Limits
//
// Very deep or very wide trees can be capped with [Options.MaxDepth] and
// [Options.MaxNodes]. Nodes that would exceed a cap are laid out as if they
// were collapsed for that pass, and [Result.Truncated] is set. The caps never
// modify [tree.Node.Collapsed].
//
// # Concurrency
//
// An [Engine] and the tree it lays out must be confined to one goroutine.
package layout
