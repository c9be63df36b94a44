// Package cli implements the astview command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/buildinfo"
	"github.com/matzehuels/astview/pkg/cache"
	"github.com/matzehuels/astview/pkg/config"
	"github.com/matzehuels/astview/pkg/observability"
	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "astview visualizes C and C++ syntax trees",
		Long: `astview parses C and C++ sources with tree-sitter and draws their syntax
trees as collapsible node-and-edge diagrams, in the terminal, over HTTP, or as
SVG, DOT, Graphviz, PNG, PDF, JSON and text files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.UseLogger(c.Logger)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/astview/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file. Flags are bound after loading,
// so values set on the command line win.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache that cannot be
// located falls back to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.cfg.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cfg.URL, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the file cache directory: the configured one, or the XDG
// cache directory (~/.cache/astview/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions maps the configuration onto pipeline options. Commands bind
// their flags to the returned struct, so flags override the file.
func (c *CLI) pipelineOptions() pipeline.Options {
	l, s, r := c.cfg.Layout, c.cfg.Source, c.cfg.Render
	return pipeline.Options{
		Language:    s.Language,
		Anonymous:   s.Anonymous,
		LeafText:    s.LeafText,
		ExpandDepth: l.ExpandDepth,
		ExpandAll:   l.ExpandAll,
		MaxDepth:    l.MaxDepth,
		MaxNodes:    l.MaxNodes,
		RowHeight:   l.RowHeight,
		BoxHeight:   l.BoxHeight,
		MinWidth:    l.MinWidth,
		CharWidth:   l.CharWidth,
		Padding:     l.Padding,
		Strict:      l.Strict,
		Formats:     append([]string(nil), r.Formats...),
		Style:       r.Style,
		FontSize:    r.FontSize,
		Margin:      r.Margin,
		Scale:       r.Scale,
		Logger:      c.Logger,
	}
}

// optionFlags binds the parse and layout flags shared by several commands.
// Only flags set on the command line override the configuration.
type optionFlags struct {
	language    string
	anonymous   bool
	leafText    int
	expandDepth int
	expandAll   bool
	maxDepth    int
	maxNodes    int
	strict      bool
	refresh     bool
	noCache     bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.language, "lang", "l", "", "language: c, cpp (default: from file extension)")
	fs.BoolVar(&f.anonymous, "anonymous", false, "include anonymous tokens such as punctuation")
	fs.IntVar(&f.leafText, "leaf-text", 0, "show source text under leaves, truncated to N runes (-1 for all)")
	fs.IntVarP(&f.expandDepth, "depth", "d", 0, "expand this many levels below the root")
	fs.BoolVarP(&f.expandAll, "all", "a", false, "expand every node")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "stop laying out below this depth (0 for no limit)")
	fs.IntVar(&f.maxNodes, "max-nodes", 0, "stop laying out after this many nodes")
	fs.BoolVar(&f.strict, "strict", false, "fail on syntax errors")
	fs.BoolVar(&f.refresh, "refresh", false, "bypass cached results")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")

	cmd.ValidArgsFunction = completeSourceFiles
	_ = cmd.RegisterFlagCompletionFunc("lang", completeLanguages)
}

// apply overlays the flags the user set on opts.
func (f *optionFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("lang") {
		opts.Language = f.language
	}
	if fs.Changed("anonymous") {
		opts.Anonymous = f.anonymous
	}
	if fs.Changed("leaf-text") {
		opts.LeafText = f.leafText
	}
	if fs.Changed("depth") {
		opts.ExpandDepth = f.expandDepth
	}
	if fs.Changed("all") {
		opts.ExpandAll = f.expandAll
	}
	if fs.Changed("max-depth") {
		opts.MaxDepth = f.maxDepth
	}
	if fs.Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	opts.StrictSyntax = f.strict
	opts.Refresh = f.refresh
}

// parseFormats parses a comma-separated format string into canonical format
// names. Aliases such as "text" are resolved.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatSVG}, nil
	}
	formats, err := render.ParseFormats(s)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out, nil
}

// isCanceled reports whether err stems from an interrupted command.
func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
