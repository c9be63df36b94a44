package render

import (
	"math"
	"strings"

	"github.com/matzehuels/astview/pkg/diagram"
)

// defaultUnit matches the layout package's default character width.
const defaultUnit = 9.0

// Span locates a box label on a [Canvas].
type Span struct {
	ID   string
	Line int
	Col  int
	Len  int
}

// Canvas is a character grid holding a text drawing of a diagram. Each tree
// level takes two lines: one for labels and one for connectors to the next
// level.
type Canvas struct {
	cells [][]rune
	spans []Span
}

// NewCanvas draws d on a character grid, mapping opts.Unit layout units to
// one column.
func NewCanvas(d diagram.Diagram, opts Options) *Canvas {
	opts = opts.withDefaults()
	c := &Canvas{}
	if d.Empty() {
		c.put(0, 0, "(no content)")
		return c
	}

	col := func(x float64) int { return int(math.Round(x / opts.Unit)) }
	row := func(y float64) int {
		if d.RowHeight <= 0 {
			return 0
		}
		return 2 * int(math.Round(y/d.RowHeight))
	}

	for _, b := range d.Boxes {
		start, end := col(b.X), col(b.X+b.Width)
		avail := max(end-start-1, 1)
		label := []rune(textLabel(b))
		if len(label) > avail {
			label = truncRunes(label, avail)
		}
		center := col(b.CenterX())
		at := max(center-len(label)/2, start)
		line := row(b.Y)
		c.put(line, at, string(label))
		c.spans = append(c.spans, Span{ID: b.ID, Line: line, Col: at, Len: len(label)})
	}

	// Group edges by parent so each parent gets one connector line.
	children := make(map[string][]int)
	var parents []string
	for _, e := range d.Edges {
		if _, ok := children[e.To]; !ok {
			parents = append(parents, e.To)
		}
		children[e.To] = append(children[e.To], col(e.X1))
	}
	for _, p := range parents {
		pb, ok := d.Box(p)
		if !ok {
			continue
		}
		c.connect(row(pb.Y)+1, col(pb.CenterX()), children[p])
	}
	return c
}

// connect draws the connector from a parent at column pc to child columns
// on the given line.
func (c *Canvas) connect(line, pc int, kids []int) {
	lo, hi := pc, pc
	for _, k := range kids {
		lo, hi = min(lo, k), max(hi, k)
	}
	for x := lo; x <= hi; x++ {
		c.set(line, x, '─')
	}
	for _, k := range kids {
		switch {
		case k == lo:
			c.set(line, k, '┌')
		case k == hi:
			c.set(line, k, '┐')
		default:
			c.set(line, k, '┬')
		}
	}
	if lo == hi {
		c.set(line, pc, '│')
		return
	}
	switch c.get(line, pc) {
	case '┌':
		c.set(line, pc, '├')
	case '┐':
		c.set(line, pc, '┤')
	case '┬':
		c.set(line, pc, '┼')
	default:
		switch pc {
		case lo:
			c.set(line, pc, '└')
		case hi:
			c.set(line, pc, '┘')
		default:
			c.set(line, pc, '┴')
		}
	}
}

func textLabel(b diagram.Box) string {
	switch {
	case b.Synthetic:
		return `"` + b.Label + `"`
	case b.Collapsed:
		return "+" + b.Label
	case b.Leaf:
		return b.Label
	}
	return "-" + b.Label
}

func truncRunes(r []rune, n int) []rune {
	if n < 3 {
		return r[:n]
	}
	out := append([]rune{}, r[:n-2]...)
	return append(out, '.', '.')
}

func (c *Canvas) set(line, col int, r rune) {
	if line < 0 || col < 0 {
		return
	}
	for len(c.cells) <= line {
		c.cells = append(c.cells, nil)
	}
	for len(c.cells[line]) <= col {
		c.cells[line] = append(c.cells[line], ' ')
	}
	c.cells[line][col] = r
}

func (c *Canvas) get(line, col int) rune {
	if line < 0 || line >= len(c.cells) || col < 0 || col >= len(c.cells[line]) {
		return ' '
	}
	return c.cells[line][col]
}

func (c *Canvas) put(line, col int, s string) {
	for i, r := range []rune(s) {
		c.set(line, col+i, r)
	}
}

// Lines returns the canvas rows with trailing spaces removed.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.cells))
	for i, row := range c.cells {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

// Width returns the widest line in columns.
func (c *Canvas) Width() int {
	w := 0
	for _, row := range c.cells {
		w = max(w, len(row))
	}
	return w
}

// Spans returns the label positions in diagram box order.
func (c *Canvas) Spans() []Span { return c.spans }

// Span returns the label position of the box with the given ID.
func (c *Canvas) Span(id string) (Span, bool) {
	for _, s := range c.spans {
		if s.ID == id {
			return s, true
		}
	}
	return Span{}, false
}

func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n") + "\n"
}

// Text draws d as plain text.
func Text(d diagram.Diagram, opts Options) string {
	return NewCanvas(d, opts).String()
}
