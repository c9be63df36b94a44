package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/astview/pkg/diagram"
)

// abc is the diagram of root A over children B and C with widths 20 and 30.
func abc() diagram.Diagram {
	return diagram.Diagram{
		Source:    "abc.c",
		Width:     50,
		Height:    80,
		RowHeight: 60,
		BoxHeight: 20,
		Boxes: []diagram.Box{
			{ID: "0", Label: "A", X: 0, Y: 0, Width: 50, Height: 20},
			{ID: "0.0", Label: "B", X: 0, Y: 60, Width: 20, Height: 20, Depth: 1, Leaf: true},
			{ID: "0.1", Label: "C", X: 20, Y: 60, Width: 30, Height: 20, Depth: 1, Collapsed: true, Error: true},
		},
		Edges: []diagram.Edge{
			{From: "0.0", To: "0", X1: 10, Y1: 70, X2: 25, Y2: 10},
			{From: "0.1", To: "0", X1: 35, Y1: 70, X2: 25, Y2: 10},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"svg", FormatSVG, false},
		{" PNG ", FormatPNG, false},
		{"text", FormatText, false},
		{"gv", FormatGraphviz, false},
		{"jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	fs, err := ParseFormats("svg, dot,svg,,json")
	if err != nil || len(fs) != 3 {
		t.Errorf("ParseFormats() = %v, %v", fs, err)
	}
	if _, err := ParseFormats("svg,bmp"); err == nil {
		t.Error("ParseFormats() accepted bmp")
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatGraphviz.Ext() != "gv.svg" || FormatSVG.Ext() != "svg" {
		t.Error("unexpected extensions")
	}
	if FormatPNG.ContentType() != "image/png" || FormatText.ContentType() != "text/plain; charset=utf-8" {
		t.Error("unexpected content types")
	}
	if !FormatPDF.NeedsConverter() || FormatSVG.NeedsConverter() {
		t.Error("NeedsConverter mismatch")
	}
}

func TestSVGSpan(t *testing.T) {
	svg := string(SVG(abc(), Options{}))

	for _, want := range []string{
		`viewBox="0 0 70.0 100.0"`,
		`<g class="node" data-id="0">`,
		`<rect x="0.0" y="0.0" width="50.0" height="20.0"/>`,
		`<rect x="20.0" y="60.0" width="30.0" height="20.0"/>`,
		`class="node collapsed error" data-id="0.1"`,
		`<line class="edge" x1="35.0" y1="70.0" x2="25.0" y2="10.0"/>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Count(svg, "<line ") != 2 {
		t.Errorf("want 2 edges, got %d", strings.Count(svg, "<line "))
	}
}

func TestSVGCompact(t *testing.T) {
	svg := string(SVG(abc(), Options{Style: StyleCompact}))
	// "A" is 1 char at 12px: 7.2 + 8 = 15.2 wide, centered on 25.
	if !strings.Contains(svg, `<rect x="17.4" y="0.0" width="15.2" height="20.0"/>`) {
		t.Errorf("compact root box not label-sized:\n%s", svg)
	}
}

func TestSVGEscapesAndEmpty(t *testing.T) {
	d := abc()
	d.Boxes[1].Label = "a<b&c"
	svg := string(SVG(d, Options{}))
	if !strings.Contains(svg, "a&lt;b&amp;c") {
		t.Error("labels must be XML-escaped")
	}

	empty := string(SVG(diagram.NoContent("x.c"), Options{}))
	if !strings.Contains(empty, "no content") {
		t.Error("empty diagram should say no content")
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		label string
		width float64
		want  string
	}{
		{"identifier", 200, "identifier"},
		{"identifier", 45, "iden.."},
		{"identifier", 10, ""},
	}
	for _, tt := range tests {
		if got := fitLabel(tt.label, tt.width, 10); got != tt.want {
			t.Errorf("fitLabel(%q, %v) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
}

func TestDOT(t *testing.T) {
	dot := DOT(abc())
	for _, want := range []string{
		"digraph AST {",
		`"0" [label="A"];`,
		`"0.1" [label="C", fillcolor=lightgrey, color=red, penwidth=2];`,
		`"0" -> "0.0";`,
		`"0" -> "0.1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestText(t *testing.T) {
	got := Text(abc(), Options{Unit: 5})
	want := "    -A\n" +
		"  ┌──┴─┐\n" +
		"  B   +C\n"
	if got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}

	c := NewCanvas(abc(), Options{Unit: 5})
	if s, ok := c.Span("0.1"); !ok || s.Line != 2 || s.Col != 6 || s.Len != 2 {
		t.Errorf("Span(0.1) = %+v, %v", s, ok)
	}
	if c.Width() != 8 {
		t.Errorf("Width() = %d", c.Width())
	}

	if got := Text(diagram.NoContent(""), Options{}); got != "(no content)\n" {
		t.Errorf("empty Text() = %q", got)
	}
}

func TestTextSingleChild(t *testing.T) {
	d := diagram.Diagram{
		Width: 30, Height: 80, RowHeight: 60, BoxHeight: 20,
		Boxes: []diagram.Box{
			{ID: "0", Label: "P", Width: 30, Height: 20},
			{ID: "0.0", Label: "K", Y: 60, Width: 30, Height: 20, Leaf: true},
		},
		Edges: []diagram.Edge{{From: "0.0", To: "0", X1: 15, Y1: 70, X2: 15, Y2: 10}},
	}
	lines := NewCanvas(d, Options{Unit: 5}).Lines()
	if len(lines) != 3 || strings.TrimSpace(lines[1]) != "│" {
		t.Errorf("lines = %q", lines)
	}
}

func TestRenderDispatch(t *testing.T) {
	ctx := context.Background()
	for _, f := range []Format{FormatSVG, FormatDOT, FormatText, FormatJSON} {
		data, err := Render(ctx, abc(), f, Options{})
		if err != nil || len(data) == 0 {
			t.Errorf("Render(%s) = %d bytes, %v", f, len(data), err)
		}
	}
	if _, err := Render(ctx, abc(), Format("bmp"), Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(bmp) error = %v", err)
	}
}

func TestRenderPNGWithoutConverter(t *testing.T) {
	if HasConverter() {
		t.Skip("rsvg-convert installed")
	}
	_, err := Render(context.Background(), abc(), FormatPNG, Options{})
	if !errors.Is(err, ErrConverterMissing) {
		t.Errorf("error = %v, want ErrConverterMissing", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
}
