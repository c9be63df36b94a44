package diagram

import (
	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/tree"
)

// =============================================================================
// Diagram - Laid-out Tree Serialization
// =============================================================================

// Diagram is the canonical serialization format for a laid-out tree.
type Diagram struct {
	Source    string  `json:"source,omitempty" bson:"source,omitempty"`
	Language  string  `json:"language,omitempty" bson:"language,omitempty"`
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	RowHeight float64 `json:"row_height" bson:"row_height"`
	BoxHeight float64 `json:"box_height" bson:"box_height"`
	Truncated bool    `json:"truncated,omitempty" bson:"truncated,omitempty"`
	Boxes     []Box   `json:"boxes" bson:"boxes"`
	Edges     []Edge  `json:"edges" bson:"edges"`
}

// Box is one visible node.
type Box struct {
	ID        string  `json:"id" bson:"id"`
	Label     string  `json:"label" bson:"label"`
	X         float64 `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	Depth     int     `json:"depth,omitempty" bson:"depth,omitempty"`
	Collapsed bool    `json:"collapsed,omitempty" bson:"collapsed,omitempty"` // Has hidden children
	Leaf      bool    `json:"leaf,omitempty" bson:"leaf,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty" bson:"synthetic,omitempty"` // Raw-text label leaf
	Error     bool    `json:"error,omitempty" bson:"error,omitempty"`         // Syntax error node
}

// CenterX returns the horizontal midpoint of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical midpoint of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Edge is a line from a child box midpoint to its parent box midpoint.
type Edge struct {
	From string  `json:"from" bson:"from"` // Child box ID
	To   string  `json:"to" bson:"to"`     // Parent box ID
	X1   float64 `json:"x1" bson:"x1"`
	Y1   float64 `json:"y1" bson:"y1"`
	X2   float64 `json:"x2" bson:"x2"`
	Y2   float64 `json:"y2" bson:"y2"`
}

// Box returns the box with the given ID.
func (d *Diagram) Box(id string) (Box, bool) {
	for _, b := range d.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Empty reports whether the diagram has nothing to draw.
func (d *Diagram) Empty() bool { return len(d.Boxes) == 0 }

// Depth returns the deepest box depth.
func (d *Diagram) Depth() int {
	depth := 0
	for _, b := range d.Boxes {
		depth = max(depth, b.Depth)
	}
	return depth
}

// =============================================================================
// Tree → Diagram Conversion
// =============================================================================

// Options carries the diagram fields that do not come from the tree.
type Options[T any] struct {
	Source   string
	Language string
	// IsError marks boxes whose payload is a syntax error.
	IsError func(T) bool
}

// FromTree exports the last layout of root. res must be the result of that
// layout pass.
func FromTree[T any](eng *layout.Engine[T], root *tree.Node[T], res layout.Result, opts Options[T]) Diagram {
	lo := eng.Options()
	d := Diagram{
		Source:    opts.Source,
		Language:  opts.Language,
		Width:     res.Width,
		Height:    res.Height,
		RowHeight: lo.RowHeight,
		BoxHeight: lo.BoxHeight,
		Truncated: res.Truncated,
		Boxes:     make([]Box, 0, res.Visible),
		Edges:     make([]Edge, 0, max(res.Visible-1, 0)),
	}
	for b := range eng.Boxes(root) {
		box := Box{
			ID:        b.Node.ID(),
			Label:     b.Label,
			X:         b.X,
			Y:         b.Y,
			Width:     b.Width,
			Height:    b.Height,
			Depth:     b.Node.Depth(),
			Collapsed: b.Collapsed,
			Leaf:      b.Node.IsLeaf(),
			Synthetic: b.Node.Synthetic,
		}
		if opts.IsError != nil && !b.Node.Synthetic {
			box.Error = opts.IsError(b.Node.Payload)
		}
		d.Boxes = append(d.Boxes, box)
	}
	for e := range eng.Edges(root) {
		d.Edges = append(d.Edges, Edge{
			From: e.Child.ID(),
			To:   e.Parent.ID(),
			X1:   e.X1,
			Y1:   e.Y1,
			X2:   e.X2,
			Y2:   e.Y2,
		})
	}
	return d
}

// NoContent returns the diagram of a view whose source is unavailable.
func NoContent(source string) Diagram {
	return Diagram{Source: source, Boxes: []Box{}, Edges: []Edge{}}
}
