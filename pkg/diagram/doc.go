// Package diagram defines the serialization format for laid-out syntax trees.
//
// A [Diagram] is the per-node output of a layout pass: one [Box] for every
// visible node and one [Edge] for every child-to-parent line. It is the
// boundary between the tree model and everything that draws it. Renderers,
// the HTTP API, the cache and the view store all exchange diagrams rather
// than live trees.
//
// # Format
//
//	{
//	  "source": "main.c",
//	  "language": "c",
//	  "width": 412,
//	  "height": 80,
//	  "row_height": 60,
//	  "box_height": 20,
//	  "boxes": [{"id": "0", "label": "translation_unit", "x": 0, ...}],
//	  "edges": [{"from": "0.0", "to": "0", "x1": 206, ...}]
//	}
//
// Box IDs are child-index paths ("0", "0.2", "0.2.1") and stay stable
// across toggles of unrelated nodes, so clients can address a node between
// requests.
package diagram
