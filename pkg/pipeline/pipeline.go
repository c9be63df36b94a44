// Package pipeline provides the batch visualization pipeline for astview.
//
// This package implements the complete parse → layout → render pipeline used
// by the CLI and the HTTP server. By centralizing this logic, both entry
// points produce identical diagrams and share cache keys.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a C or C++ source and build its syntax tree
//  2. Layout: Mirror the syntax tree, expand it and compute box positions
//  3. Render: Generate output in various formats (SVG, DOT, text, JSON, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Path:        "main.c",
//	    ExpandDepth: 3,
//	    Formats:     []string{"svg", "txt"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout only (parses as needed)
//	d, err := runner.Layout(ctx, opts)
//
//	// Render an existing diagram
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/astview/pkg/cache"
	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/render"
	"github.com/matzehuels/astview/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultExpandDepth expands the root and its children, so two levels
	// below the root are visible.
	DefaultExpandDepth = 2

	// DefaultMaxNodes caps the laid-out tree for batch rendering.
	DefaultMaxNodes = 20000

	// DefaultStyle is the default SVG style.
	DefaultStyle = string(render.StyleSpan)
)

// Format constants for output formats.
const (
	FormatSVG      = string(render.FormatSVG)
	FormatDOT      = string(render.FormatDOT)
	FormatGraphviz = string(render.FormatGraphviz)
	FormatText     = string(render.FormatText)
	FormatJSON     = string(render.FormatJSON)
	FormatPNG      = string(render.FormatPNG)
	FormatPDF      = string(render.FormatPDF)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Path         string `json:"path,omitempty"`
	Language     string `json:"language,omitempty"`
	Anonymous    bool   `json:"anonymous,omitempty"`
	LeafText     int    `json:"leaf_text,omitempty"`
	StrictSyntax bool   `json:"strict_syntax,omitempty"`

	// Source is parsed instead of reading Path when non-nil. Path then only
	// labels the diagram.
	Source []byte `json:"-"`

	// Layout options
	ExpandDepth int     `json:"expand_depth,omitempty"`
	ExpandAll   bool    `json:"expand_all,omitempty"`
	MaxDepth    int     `json:"max_depth,omitempty"`
	MaxNodes    int     `json:"max_nodes,omitempty"`
	RowHeight   float64 `json:"row_height,omitempty"`
	BoxHeight   float64 `json:"box_height,omitempty"`
	MinWidth    float64 `json:"min_width,omitempty"`
	CharWidth   float64 `json:"char_width,omitempty"`
	Padding     float64 `json:"padding,omitempty"`
	Strict      bool    `json:"strict,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	FontSize float64  `json:"font_size,omitempty"`
	Margin   float64  `json:"margin,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh bypasses cached diagrams.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the laid-out tree.
	Diagram diagram.Diagram

	// DiagramHash is the content hash of the diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VisibleCount int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DiagramHit bool // Whether the diagram came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	f, err := render.ParseFormat(format)
	if err != nil || string(f) != format {
		return fmt.Errorf("invalid format: %q (must be one of: svg, dot, graphviz, txt, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if style == "" {
		return fmt.Errorf("invalid style: %q (must be one of: span, compact)", style)
	}
	if _, err := render.ParseStyle(style); err != nil {
		return fmt.Errorf("invalid style: %q (must be one of: span, compact)", style)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the source fields and resolves the language.
func (o *Options) ValidateForParse() error {
	if o.Path == "" && o.Source == nil {
		return fmt.Errorf("path or source is required")
	}
	lang, err := o.ResolveLanguage()
	if err != nil {
		return err
	}
	o.Language = lang.String()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ResolveLanguage returns the explicit language, or the one implied by the
// path's extension.
func (o *Options) ResolveLanguage() (source.Language, error) {
	if o.Language != "" {
		return source.ParseLanguage(o.Language)
	}
	return source.LanguageFor(o.Path)
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.ExpandDepth == 0 {
		o.ExpandDepth = DefaultExpandDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.CharWidth == 0 {
		o.CharWidth = layout.DefaultCharWidth
	}
	if o.Padding == 0 {
		o.Padding = layout.DefaultPadding
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.ExpandDepth < 0 {
		return fmt.Errorf("expand_depth must be >= 0, got %d", o.ExpandDepth)
	}
	if o.MaxDepth < 0 || o.MaxNodes < 0 {
		return fmt.Errorf("max_depth and max_nodes must be >= 0")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.CharWidth == 0 {
		o.CharWidth = layout.DefaultCharWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		RowHeight: o.RowHeight,
		BoxHeight: o.BoxHeight,
		MinWidth:  o.MinWidth,
		MaxDepth:  o.MaxDepth,
		MaxNodes:  o.MaxNodes,
		Strict:    o.Strict,
	}
}

// RenderOptions returns the renderer options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Style:    render.Style(o.Style),
		FontSize: o.FontSize,
		Margin:   o.Margin,
		Scale:    o.Scale,
		Unit:     o.CharWidth,
	}
}

// DiagramKeyOpts returns cache key options for diagram computation.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Language:    o.Language,
		ExpandDepth: o.ExpandDepth,
		ExpandAll:   o.ExpandAll,
		LeafText:    o.LeafText,
		Anonymous:   o.Anonymous,
		MaxDepth:    o.MaxDepth,
		MaxNodes:    o.MaxNodes,
		RowHeight:   o.RowHeight,
		BoxHeight:   o.BoxHeight,
		MinWidth:    o.MinWidth,
		CharWidth:   o.CharWidth,
		Padding:     o.Padding,
		Strict:      o.StrictSyntax,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Style:    o.Style,
		FontSize: o.FontSize,
		Scale:    o.Scale,
		Unit:     o.CharWidth,
	}
}
