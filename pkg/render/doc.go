// Package render draws diagrams in the supported output formats.
//
// # Overview
//
// Every renderer consumes a [diagram.Diagram], the immutable per-node output
// of a layout pass, so renderers may run concurrently on the same diagram.
//
//   - [SVG]: boxes and child-to-parent lines at the computed coordinates
//   - [DOT]: a Graphviz digraph of the visible tree
//   - [Graphviz]: DOT laid out and drawn by Graphviz itself
//   - [Text]: a character canvas for terminals
//   - [ToPNG], [ToPDF]: SVG conversion via rsvg-convert
//
// [Render] dispatches on a [Format] name:
//
//	data, err := render.Render(ctx, d, render.FormatSVG, render.Options{})
//
// # SVG Styles
//
// [StyleSpan] draws each node as wide as its whole layout slot, so sibling
// boxes touch and a parent spans all of its children. [StyleCompact] sizes
// each box to its label and centers it in the slot.
//
// # Format Conversion
//
// PNG and PDF output shells out to rsvg-convert (librsvg):
//
//	brew install librsvg        # macOS
//	apt install librsvg2-bin    # Linux
package render
