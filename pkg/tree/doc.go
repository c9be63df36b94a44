// Package tree provides the generic tree model behind astview diagrams.
//
// A [Node] mirrors one node of an external source tree (typically a parsed
// syntax tree) and carries the geometry the layout engine assigns to it:
// a horizontal slot (X, Width), a row offset (Y) and a collapsed flag that
// controls whether its children take part in layout and rendering.
//
// # Building
//
// Trees are built once per source snapshot with [Build], which walks any
// value implementing [Source] depth-first and maps each node to a caller
// payload:
//
//	root, err := tree.Build(astRoot, func(n source.Node) (source.Node, error) {
//	    return n, nil
//	}, tree.WithLeafText(40), tree.WithMeasure(measure))
//
// The build either succeeds completely or returns an error; partial trees
// are never returned.
//
// # Visibility
//
// The root starts expanded and every other node starts collapsed, so a
// fresh tree shows the root and its direct children. A node is visible when
// it is the root or its parent is visible and expanded.
//
// # Addressing
//
// Every node has a stable path ID made of child indexes ("0" is the root,
// "0.2.1" the second child of the root's third child). Use [Find] to
// resolve an ID back to a node.
//
// # Concurrency
//
// Trees are not safe for concurrent mutation. Callers own a tree for its
// entire lifetime and discard it wholesale on refresh.
package tree
