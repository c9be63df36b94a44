package layout

import (
	"github.com/matzehuels/astview/pkg/tree"
)

// Default engine settings, in drawing units.
const (
	DefaultRowHeight = 60
	DefaultBoxHeight = 20
	DefaultMinWidth  = 8
)

// Options configures an [Engine]. Zero values select the defaults.
type Options struct {
	// RowHeight is the vertical distance between two tree levels.
	RowHeight float64
	// BoxHeight is the height of a drawn node box.
	BoxHeight float64
	// MinWidth is the narrowest a node may be. A negative value disables
	// the floor.
	MinWidth float64
	// MaxDepth caps the depth of laid-out nodes. Zero means unlimited.
	MaxDepth int
	// MaxNodes caps the number of laid-out nodes. Zero means unlimited.
	MaxNodes int
	// Strict makes Layout and Toggle panic when the result fails Validate.
	Strict bool
}

func (o Options) withDefaults() Options {
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.BoxHeight <= 0 {
		o.BoxHeight = DefaultBoxHeight
	}
	if o.MinWidth < 0 {
		o.MinWidth = 0
	} else if o.MinWidth == 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.MaxNodes < 0 {
		o.MaxNodes = 0
	}
	return o
}

// Result summarizes one layout pass.
type Result struct {
	// Width is the root's width, which spans the whole drawing.
	Width float64
	// Height is the bottom edge of the deepest visible box.
	Height float64
	// Visible is the number of nodes laid out.
	Visible int
	// Depth is the deepest visible level.
	Depth int
	// Truncated reports that MaxDepth or MaxNodes clipped the tree.
	Truncated bool
}

// Engine lays out trees of [tree.Node] values.
type Engine[T any] struct {
	opts    Options
	clipped map[*tree.Node[T]]bool
}

// New returns an engine with opts applied over the defaults.
func New[T any](opts Options) *Engine[T] {
	return &Engine[T]{opts: opts.withDefaults()}
}

// Options returns the engine's effective options.
func (e *Engine[T]) Options() Options { return e.opts }

// expanded reports whether n's children take part in the current pass.
func (e *Engine[T]) expanded(n *tree.Node[T]) bool {
	return n.Expanded() && !e.clipped[n]
}

// ComputeWidths sets Width for n and every visible descendant and returns
// n's width.
func (e *Engine[T]) ComputeWidths(n *tree.Node[T]) float64 {
	own := max(n.Intrinsic, e.opts.MinWidth)
	if !e.expanded(n) {
		n.Width = own
		return own
	}
	var sum float64
	for _, c := range n.Children() {
		sum += e.ComputeWidths(c)
	}
	n.Width = max(own, sum)
	return n.Width
}

// AssignPositions places n at x on row depth and its visible descendants
// beneath it. Widths must already be computed.
func (e *Engine[T]) AssignPositions(n *tree.Node[T], x float64, depth int) {
	n.X = x
	n.Y = float64(depth) * e.opts.RowHeight
	if !e.expanded(n) {
		return
	}
	var sum float64
	for _, c := range n.Children() {
		sum += c.Width
	}
	cursor := x + (n.Width-sum)/2
	for _, c := range n.Children() {
		e.AssignPositions(c, cursor, depth+1)
		cursor += c.Width
	}
}

// Layout computes widths and positions for the whole tree rooted at root.
func (e *Engine[T]) Layout(root *tree.Node[T]) Result {
	res := e.clip(root)
	e.ComputeWidths(root)
	e.AssignPositions(root, 0, 0)
	res.Width = root.Width
	res.Height = float64(res.Depth)*e.opts.RowHeight + e.opts.BoxHeight

	if e.opts.Strict {
		if err := e.Validate(root); err != nil {
			panic(err)
		}
	}
	return res
}

// Toggle flips node between collapsed and expanded and re-lays the tree out
// from root. Expanding shows node's direct children, each collapsed.
// Collapsing also collapses every descendant. Toggling a childless node
// changes nothing.
func (e *Engine[T]) Toggle(root, node *tree.Node[T]) Result {
	switch {
	case node.IsLeaf():
	case node.Collapsed:
		node.Collapsed = false
		for _, c := range node.Children() {
			c.Collapsed = true
		}
	default:
		tree.CollapseAll(node)
	}
	return e.Layout(root)
}

// Expand expands node and its descendants up to depth levels below it.
// A negative depth expands the whole subtree. It does not re-lay the tree out.
func Expand[T any](node *tree.Node[T], depth int) {
	var walk func(n *tree.Node[T], d int)
	walk = func(n *tree.Node[T], d int) {
		if depth >= 0 && d >= depth {
			return
		}
		n.Collapsed = false
		for _, c := range n.Children() {
			walk(c, d+1)
		}
	}
	walk(node, 0)
}

// clip decides which expanded nodes are laid out as collapsed for this pass.
// Nodes are admitted breadth-first so that caps trim the deepest levels.
func (e *Engine[T]) clip(root *tree.Node[T]) Result {
	e.clipped = nil
	res := Result{Visible: 1}

	type item struct {
		n     *tree.Node[T]
		depth int
	}
	queue := []item{{root, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		res.Depth = max(res.Depth, it.depth)
		if !it.n.Expanded() {
			continue
		}
		kids := it.n.Children()
		if (e.opts.MaxDepth > 0 && it.depth >= e.opts.MaxDepth) ||
			(e.opts.MaxNodes > 0 && res.Visible+len(kids) > e.opts.MaxNodes) {
			if e.clipped == nil {
				e.clipped = make(map[*tree.Node[T]]bool)
			}
			e.clipped[it.n] = true
			res.Truncated = true
			continue
		}
		res.Visible += len(kids)
		for _, c := range kids {
			queue = append(queue, item{c, it.depth + 1})
		}
	}
	return res
}

// Clipped reports whether n was laid out as collapsed by a cap in the last
// pass even though it is expanded.
func (e *Engine[T]) Clipped(n *tree.Node[T]) bool { return e.clipped[n] }
