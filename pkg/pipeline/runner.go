package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/astview/pkg/cache"
	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/observability"
	"github.com/matzehuels/astview/pkg/source"
)

// Cache key types reported to observability hooks.
const (
	keyTypeDiagram  = "diagram"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1+2: Parse and layout
	layoutStart := time.Now()
	d, hit, err := r.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(d.Boxes)
	result.CacheInfo.DiagramHit = hit

	r.Logger.Info("computed layout",
		"source", opts.Path,
		"boxes", len(d.Boxes),
		"truncated", d.Truncated,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.render(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.DiagramHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse reads and parses the source named by opts. The caller owns the
// returned tree.
func (r *Runner) Parse(ctx context.Context, opts Options) (*source.Tree, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	src, err := ReadSource(opts)
	if err != nil {
		return nil, err
	}
	return r.parse(ctx, src, opts)
}

func (r *Runner) parse(ctx context.Context, src []byte, opts Options) (*source.Tree, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Language, opts.Path)
	start := time.Now()

	st, err := Parse(ctx, src, opts)
	nodes := 0
	if err == nil {
		nodes = st.Stats().Nodes
	}
	hooks.OnParseComplete(ctx, opts.Language, opts.Path, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("parsed source", "path", opts.Path, "language", opts.Language, "nodes", nodes, "errors", st.HasError())
	return st, nil
}

// LayoutWithCacheInfo produces the diagram for opts and reports whether it
// came from the cache. Diagrams are keyed by the source fingerprint and the
// layout options.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, opts Options) (diagram.Diagram, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return diagram.Diagram{}, false, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Diagram{}, false, err
	}
	r.applyLogger(&opts)

	src, err := ReadSource(opts)
	if err != nil {
		return diagram.Diagram{}, false, err
	}
	sourceHash := strconv.FormatUint(source.Fingerprint(src), 16)
	cacheKey := r.Keyer.DiagramKey(sourceHash, opts.DiagramKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if d, err := diagram.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeDiagram)
				d.Source = opts.Path
				return d, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeDiagram)
	}

	st, err := r.parse(ctx, src, opts)
	if err != nil {
		return diagram.Diagram{}, false, err
	}
	defer st.Close()

	hooks := observability.Pipeline()
	stats := st.Stats()
	hooks.OnLayoutStart(ctx, stats.Nodes)
	start := time.Now()
	d, err := GenerateDiagram(st, opts)
	if err != nil {
		return diagram.Diagram{}, false, fmt.Errorf("build tree: %w", err)
	}
	hooks.OnLayoutComplete(ctx, len(d.Boxes), d.Truncated, time.Since(start))

	if data, err := diagram.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeDiagram, len(data))
		} else {
			r.Logger.Warn("cache diagram", "err", err)
		}
	}
	return d, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, opts Options) (diagram.Diagram, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	artifacts, _, hit, err := r.render(ctx, d, opts)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// render serves cached formats and renders the rest. It returns the
// artifacts, the diagram hash and whether every format was cached.
func (r *Runner) render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, string, bool, error) {
	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	hash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, hash, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, d, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return artifacts, hash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
