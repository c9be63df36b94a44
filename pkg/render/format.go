package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/astview/pkg/diagram"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatSVG      Format = "svg"
	FormatDOT      Format = "dot"
	FormatGraphviz Format = "graphviz"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatPNG      Format = "png"
	FormatPDF      Format = "pdf"
)

var (
	// ErrUnknownFormat is returned for unrecognized format names.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrConverterMissing is returned when PNG or PDF output is requested
	// but rsvg-convert is not installed.
	ErrConverterMissing = errors.New("rsvg-convert not found")
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatSVG, FormatDOT, FormatGraphviz, FormatText, FormatJSON, FormatPNG, FormatPDF}
}

// ParseFormat resolves a format name. "text" is accepted for "txt" and "gv"
// for "graphviz".
func ParseFormat(name string) (Format, error) {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "text":
		return FormatText, nil
	case "gv":
		return FormatGraphviz, nil
	default:
		for _, f := range Formats() {
			if string(f) == s {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ParseFormats splits a comma-separated list of format names.
func ParseFormats(list string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatGraphviz {
		return "gv.svg"
	}
	return string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// NeedsConverter reports whether the format shells out to rsvg-convert.
func (f Format) NeedsConverter() bool { return f == FormatPNG || f == FormatPDF }

// Options configures rendering. Zero values select defaults.
type Options struct {
	// Style selects the SVG box style.
	Style Style
	// FontSize is the SVG label font size.
	FontSize float64
	// Margin is the blank border around the SVG drawing.
	Margin float64
	// Scale is the PNG resolution factor.
	Scale float64
	// Unit is the number of layout units per text column.
	Unit float64
}

// Render draws d in format f.
func Render(ctx context.Context, d diagram.Diagram, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatSVG:
		return SVG(d, opts), nil
	case FormatDOT:
		return []byte(DOT(d)), nil
	case FormatGraphviz:
		return Graphviz(ctx, DOT(d))
	case FormatText:
		return []byte(Text(d, opts)), nil
	case FormatJSON:
		return diagram.Marshal(d)
	case FormatPNG:
		return ToPNG(ctx, SVG(d, opts), opts.Scale)
	case FormatPDF:
		return ToPDF(ctx, SVG(d, opts))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
