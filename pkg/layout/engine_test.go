package layout

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/astview/pkg/tree"
)

// abc builds the root "A" with children "B" and "C" of widths 10, 20, 30.
func abc() (a, b, c *tree.Node[string]) {
	a = tree.New("A", "A")
	b = tree.New("B", "B")
	c = tree.New("C", "C")
	a.Intrinsic, b.Intrinsic, c.Intrinsic = 10, 20, 30
	tree.AddChild(a, b)
	tree.AddChild(a, c)
	a.Collapsed = false
	return a, b, c
}

// randomTree builds a tree of up to size nodes with random fan-out,
// widths and expansion state.
func randomTree(r *rand.Rand, size int) *tree.Node[int] {
	root := tree.New(0, "n0")
	root.Intrinsic = float64(r.IntN(60))
	nodes := []*tree.Node[int]{root}
	for i := 1; i < size; i++ {
		parent := nodes[r.IntN(len(nodes))]
		n := tree.New(i, "n")
		n.Intrinsic = float64(r.IntN(60))
		n.Collapsed = r.IntN(3) == 0
		tree.AddChild(parent, n)
		nodes = append(nodes, n)
	}
	root.Collapsed = false
	return root
}

func TestScenarioTwoChildren(t *testing.T) {
	a, b, c := abc()
	eng := New[string](Options{})
	res := eng.Layout(a)

	if b.X != 0 || b.Width != 20 {
		t.Errorf("B = x %v w %v, want x 0 w 20", b.X, b.Width)
	}
	if c.X != 20 || c.Width != 30 {
		t.Errorf("C = x %v w %v, want x 20 w 30", c.X, c.Width)
	}
	if a.Width != 50 || res.Width != 50 {
		t.Errorf("root width = %v (result %v), want 50", a.Width, res.Width)
	}
	if a.CenterX() != 25 {
		t.Errorf("root center = %v, want 25", a.CenterX())
	}
	if b.Y != DefaultRowHeight || a.Y != 0 {
		t.Errorf("rows: A y %v, B y %v", a.Y, b.Y)
	}
	if res.Visible != 3 || res.Depth != 1 || res.Truncated {
		t.Errorf("result = %+v", res)
	}
}

func TestScenarioCollapseChildlessSibling(t *testing.T) {
	a, b, c := abc()
	eng := New[string](Options{})
	eng.Layout(a)
	cx := c.X

	b.Collapsed = true
	eng.Layout(a)

	if c.X != cx {
		t.Errorf("C moved from %v to %v", cx, c.X)
	}
	if b.Width != 20 {
		t.Errorf("B width = %v, want 20", b.Width)
	}
	if a.Width != 50 {
		t.Errorf("root width = %v, want 50", a.Width)
	}
}

func TestToggleLeafIsNoop(t *testing.T) {
	a, b, c := abc()
	eng := New[string](Options{})
	before := eng.Layout(a)
	coords := snapshot(a)

	after := eng.Toggle(a, b)
	if !slices.Equal(coords, snapshot(a)) {
		t.Errorf("coordinates changed: %v -> %v", coords, snapshot(a))
	}
	if before != after {
		t.Errorf("result changed: %+v -> %+v", before, after)
	}
	if c.X != 20 {
		t.Errorf("C x = %v, want 20", c.X)
	}
}

func TestWidthProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := range 50 {
		root := randomTree(r, 1+r.IntN(80))
		eng := New[int](Options{MinWidth: -1})
		eng.Layout(root)

		eng.walk(root, func(n *tree.Node[int]) bool {
			if !eng.expanded(n) {
				if n.Width != n.Intrinsic {
					t.Errorf("tree %d node %s: width %v, want intrinsic %v", i, n.ID(), n.Width, n.Intrinsic)
				}
				return true
			}
			var sum float64
			for _, c := range n.Children() {
				sum += c.Width
			}
			if n.Width < sum {
				t.Errorf("tree %d node %s: width %v < children %v", i, n.ID(), n.Width, sum)
			}
			return true
		})
	}
}

func TestContiguityProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := range 50 {
		root := randomTree(r, 1+r.IntN(80))
		eng := New[int](Options{})
		eng.Layout(root)

		eng.walk(root, func(n *tree.Node[int]) bool {
			if !eng.expanded(n) {
				return true
			}
			kids := n.Children()
			for j := 1; j < len(kids); j++ {
				prev, cur := kids[j-1], kids[j]
				if !near(prev.X+prev.Width, cur.X) {
					t.Errorf("tree %d node %s: child %d ends at %v, child %d starts at %v",
						i, n.ID(), j-1, prev.X+prev.Width, j, cur.X)
				}
				if cur.Payload < prev.Payload {
					t.Errorf("tree %d node %s: children out of source order", i, n.ID())
				}
			}
			return true
		})
		if err := eng.Validate(root); err != nil {
			t.Errorf("tree %d: Validate() = %v", i, err)
		}
	}
}

func TestAssignPositionsIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	root := randomTree(r, 200)
	eng := New[int](Options{})
	eng.Layout(root)
	first := snapshot(root)

	eng.AssignPositions(root, 0, 0)
	if !slices.Equal(first, snapshot(root)) {
		t.Error("second AssignPositions changed coordinates")
	}
}

func TestToggleRoundTrip(t *testing.T) {
	// root -> p -> q -> r
	root := tree.New("root", "root")
	p := tree.New("p", "p")
	q := tree.New("q", "q")
	leaf := tree.New("r", "r")
	tree.AddChild(root, p)
	tree.AddChild(p, q)
	tree.AddChild(q, leaf)
	root.Collapsed = false

	eng := New[string](Options{})
	eng.Toggle(root, p)
	if p.Collapsed || !q.Collapsed {
		t.Fatalf("expand p: p.Collapsed=%v q.Collapsed=%v", p.Collapsed, q.Collapsed)
	}
	eng.Toggle(root, q)
	if q.Collapsed {
		t.Fatal("q should be expanded")
	}

	eng.Toggle(root, p) // collapse
	eng.Toggle(root, p) // expand again
	if p.Collapsed {
		t.Error("p should be restored to expanded")
	}
	if !q.Collapsed {
		t.Error("q should reset to collapsed after a collapse/expand round-trip")
	}
	if leaf.Visible() {
		t.Error("r should be hidden")
	}
}

func TestToggleShowsOneLevel(t *testing.T) {
	root := tree.New(0, "root")
	p := tree.New(1, "p")
	tree.AddChild(root, p)
	for i := range 3 {
		c := tree.New(10+i, "c")
		c.Collapsed = false
		tree.AddChild(p, c)
		tree.AddChild(c, tree.New(20+i, "g"))
	}
	root.Collapsed = false

	eng := New[int](Options{})
	res := eng.Toggle(root, p)
	if res.Visible != 5 {
		t.Errorf("Visible = %d, want 5", res.Visible)
	}
	for _, c := range p.Children() {
		if !c.Collapsed {
			t.Errorf("child %d should be collapsed after expanding p", c.Payload)
		}
	}
}

func TestTruncation(t *testing.T) {
	build := func() *tree.Node[int] {
		root := tree.New(0, "root")
		for i := range 4 {
			c := tree.New(i+1, "c")
			tree.AddChild(root, c)
			for j := range 3 {
				tree.AddChild(c, tree.New(10*(i+1)+j, "g"))
			}
		}
		Expand(root, -1)
		return root
	}

	tests := []struct {
		name      string
		opts      Options
		visible   int
		depth     int
		truncated bool
	}{
		{name: "Unlimited", visible: 17, depth: 2},
		{name: "MaxDepth", opts: Options{MaxDepth: 1}, visible: 5, depth: 1, truncated: true},
		{name: "MaxNodes", opts: Options{MaxNodes: 10}, visible: 8, depth: 2, truncated: true},
		{name: "MaxNodesRootOnly", opts: Options{MaxNodes: 2}, visible: 1, depth: 0, truncated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := build()
			eng := New[int](tt.opts)
			res := eng.Layout(root)
			if res.Visible != tt.visible || res.Depth != tt.depth || res.Truncated != tt.truncated {
				t.Errorf("result = %+v, want visible %d depth %d truncated %v",
					res, tt.visible, tt.depth, tt.truncated)
			}
			boxes := 0
			for range eng.Boxes(root) {
				boxes++
			}
			if boxes != tt.visible {
				t.Errorf("boxes = %d, want %d", boxes, tt.visible)
			}
			if err := eng.Validate(root); err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if root.Children()[0].Collapsed {
				t.Error("caps must not modify Collapsed")
			}
		})
	}
}

func TestValidateDetectsInconsistency(t *testing.T) {
	a, b, _ := abc()
	eng := New[string](Options{})
	eng.Layout(a)
	b.X = 5

	err := eng.Validate(a)
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("Validate() = %v, want ErrInconsistent", err)
	}
}

func TestStrictPanicsOnBadWidths(t *testing.T) {
	a, b, _ := abc()
	eng := New[string](Options{Strict: true})
	eng.Layout(a) // consistent, must not panic

	b.Intrinsic = math.NaN()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInconsistent) {
			t.Errorf("recover() = %v, want ErrInconsistent", r)
		}
	}()
	eng.Layout(a)
}

func TestCenteredChildren(t *testing.T) {
	root := tree.New("root", "root")
	root.Intrinsic = 100
	c := tree.New("c", "c")
	c.Intrinsic = 40
	tree.AddChild(root, c)
	root.Collapsed = false

	New[string](Options{}).Layout(root)
	if root.Width != 100 {
		t.Errorf("root width = %v, want 100", root.Width)
	}
	if c.X != 30 {
		t.Errorf("child x = %v, want 30", c.X)
	}
}

func TestEdges(t *testing.T) {
	a, b, c := abc()
	eng := New[string](Options{})
	eng.Layout(a)

	var edges []Edge[string]
	for e := range eng.Edges(a) {
		edges = append(edges, e)
	}
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(edges))
	}
	e := edges[1]
	if e.Child != c || e.Parent != a {
		t.Error("second edge should join C to A")
	}
	if e.X1 != 35 || e.Y1 != DefaultRowHeight+DefaultBoxHeight/2 || e.X2 != 25 || e.Y2 != DefaultBoxHeight/2 {
		t.Errorf("edge = %+v", e)
	}

	b.Parent().Collapsed = true
	eng.Layout(a)
	for range eng.Edges(a) {
		t.Error("collapsed root should yield no edges")
	}
}

func TestHit(t *testing.T) {
	a, _, c := abc()
	eng := New[string](Options{})
	eng.Layout(a)

	if got := eng.Hit(a, 30, DefaultRowHeight+1); got != c {
		t.Errorf("Hit() = %v, want C", got)
	}
	if got := eng.Hit(a, 30, DefaultBoxHeight+1); got != nil {
		t.Errorf("Hit() between rows = %v, want nil", got)
	}
}

func TestLabelWidth(t *testing.T) {
	m := LabelWidth(DefaultCharWidth, DefaultPadding)
	if got := m("call"); got != 4*9+8 {
		t.Errorf("LabelWidth(call) = %v", got)
	}
	if got := m("für"); got != 3*9+8 {
		t.Errorf("LabelWidth counts runes, got %v", got)
	}
}

func snapshot[T any](root *tree.Node[T]) []float64 {
	var out []float64
	tree.Visit(root, func(n *tree.Node[T]) {
		out = append(out, n.X, n.Y, n.Width)
	})
	return out
}
