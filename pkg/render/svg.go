package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/astview/pkg/diagram"
)

// Style selects how SVG boxes are sized.
type Style string

// SVG styles.
const (
	StyleSpan    Style = "span"
	StyleCompact Style = "compact"
)

// ParseStyle resolves a style name. The empty name selects [StyleSpan].
func ParseStyle(name string) (Style, error) {
	switch Style(strings.ToLower(name)) {
	case "", StyleSpan:
		return StyleSpan, nil
	case StyleCompact:
		return StyleCompact, nil
	}
	return "", fmt.Errorf("unknown style %q (want %s or %s)", name, StyleSpan, StyleCompact)
}

const (
	defaultFontSize = 12.0
	defaultMargin   = 10.0
	fontCharWidth   = 0.6
	boxPadding      = 4.0
)

const nodeCSS = `
    .edge { stroke: #6b7280; stroke-width: 1; }
    .node rect { fill: #ffffff; stroke: #374151; stroke-width: 1; rx: 3; }
    .node.collapsed rect { fill: #e5e7eb; }
    .node.synthetic rect { fill: #f9fafb; stroke: #9ca3af; stroke-dasharray: 3 2; }
    .node.synthetic text { fill: #6b7280; font-style: italic; }
    .node.error rect { stroke: #dc2626; stroke-width: 2; }
    .node text { font-family: ui-monospace, Menlo, Consolas, monospace; fill: #111827; }
    .node:hover rect { stroke-width: 2; }`

// SVG draws d with boxes at their computed coordinates.
func SVG(d diagram.Diagram, opts Options) []byte {
	opts = opts.withDefaults()
	m := opts.Margin
	w, h := d.Width+2*m, d.Height+2*m
	if d.Empty() {
		w, h = 200+2*m, d.BoxHeight+2*m
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f,%.1f)">`+"\n", m, m)

	if d.Empty() {
		fmt.Fprintf(&buf, `    <text x="0" y="%.1f" font-size="%.1f" fill="#6b7280">no content</text>`+"\n",
			max(d.BoxHeight, opts.FontSize), opts.FontSize)
	}

	buf.WriteString(`    <g class="edges">` + "\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, `      <line class="edge" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			e.X1, e.Y1, e.X2, e.Y2)
	}
	buf.WriteString("    </g>\n")

	buf.WriteString(`    <g class="nodes">` + "\n")
	for _, b := range d.Boxes {
		writeBox(&buf, b, opts)
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func writeBox(buf *bytes.Buffer, b diagram.Box, opts Options) {
	x, w := b.X, b.Width
	if opts.Style == StyleCompact {
		w = min(b.Width, labelWidth(b.Label, opts.FontSize))
		x = b.CenterX() - w/2
	}
	label := fitLabel(b.Label, w, opts.FontSize)

	fmt.Fprintf(buf, `      <g class="%s" data-id="%s">`, boxClass(b), escapeXML(b.ID))
	fmt.Fprintf(buf, `<title>%s</title>`, escapeXML(b.Label))
	fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`, x, b.Y, w, b.Height)
	fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`,
		x+w/2, b.CenterY(), opts.FontSize, escapeXML(label))
	buf.WriteString("</g>\n")
}

func boxClass(b diagram.Box) string {
	cls := []string{"node"}
	if b.Collapsed {
		cls = append(cls, "collapsed")
	}
	if b.Synthetic {
		cls = append(cls, "synthetic")
	}
	if b.Error {
		cls = append(cls, "error")
	}
	return strings.Join(cls, " ")
}

func labelWidth(label string, fontSize float64) float64 {
	return float64(len([]rune(label)))*fontSize*fontCharWidth + 2*boxPadding
}

// fitLabel truncates label to the characters that fit in width.
func fitLabel(label string, width, fontSize float64) string {
	maxChars := int((width - 2*boxPadding) / (fontSize * fontCharWidth))
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	if maxChars < 3 {
		return string(r[:max(maxChars, 0)])
	}
	return string(r[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func (o Options) withDefaults() Options {
	if o.Style == "" {
		o.Style = StyleSpan
	}
	if o.FontSize <= 0 {
		o.FontSize = defaultFontSize
	}
	if o.Margin < 0 {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = defaultMargin
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	if o.Unit <= 0 {
		o.Unit = defaultUnit
	}
	return o
}
