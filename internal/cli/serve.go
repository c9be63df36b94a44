package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/internal/server"
	"github.com/matzehuels/astview/pkg/config"
	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/view"
	"github.com/matzehuels/astview/pkg/viewstore"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		root    string
		store   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve views and renders over HTTP",
		Long: `Serve views and renders over HTTP.

Views are opened on files below --root and addressed by a handle returned
from POST /api/v1/views. View state is kept in memory, in files below the
data directory (--store file) or in MongoDB (--store mongo, see
server.mongo_uri), so handles survive a restart with the file and mongo
stores.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("root") {
				cfg.Root = root
			}
			if cmd.Flags().Changed("store") {
				cfg.Store = store
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&root, "root", "", "directory view paths are resolved against (default: working directory)")
	cmd.Flags().StringVar(&store, "store", "", "view store: memory, file, mongo")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("store", cobra.FixedCompletions(
		[]string{config.StoreMemory, config.StoreFile, config.StoreMongo}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Server, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newViewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	views := view.NewManager(store, c.loaderFactory(), c.viewOptions())
	defer views.Shutdown()

	root := cfg.Root
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	srv := server.New(server.Config{
		Addr:            cfg.Addr,
		Root:            root,
		ShutdownTimeout: cfg.ShutdownTimeout.Duration,
	}, views, runner, c.Logger)

	printSuccess("Serving on %s", StyleLink.Render("http://localhost"+cfg.Addr))
	printKeyValue("root", root)
	printKeyValue("store", cfg.Store)
	printKeyValue("cache", c.cfg.Cache.Backend)
	printNewline()

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newViewStore opens the configured view store.
func (c *CLI) newViewStore(ctx context.Context, cfg config.Server) (viewstore.Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		dir := cfg.StoreDir
		if dir == "" {
			data, err := config.DataDir()
			if err != nil {
				return nil, fmt.Errorf("locate data dir: %w", err)
			}
			dir = filepath.Join(data, "views")
		}
		return viewstore.NewFileStore(dir)
	case config.StoreMongo:
		s, err := viewstore.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect view store: %w", err)
		}
		return s, nil
	case config.StoreMemory, "":
		return viewstore.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown view store %q", cfg.Store)
}

// loaderFactory returns file loaders honoring the source settings.
func (c *CLI) loaderFactory() view.LoaderFactory {
	var opts []source.Option
	if c.cfg.Source.Anonymous {
		opts = append(opts, source.WithAnonymous())
	}
	return func(path string, lang source.Language) view.Loader {
		return view.FileLoader(path, lang, opts...)
	}
}

// viewOptions maps the configuration onto the template options of every
// view.
func (c *CLI) viewOptions() view.Options {
	l, s := c.cfg.Layout, c.cfg.Source
	return view.Options{
		Layout: layout.Options{
			RowHeight: l.RowHeight,
			BoxHeight: l.BoxHeight,
			MinWidth:  l.MinWidth,
			MaxDepth:  l.MaxDepth,
			MaxNodes:  l.MaxNodes,
			Strict:    l.Strict,
		},
		ExpandDepth: l.ExpandDepth,
		ExpandAll:   l.ExpandAll,
		LeafText:    s.LeafText,
		Measure:     layout.LabelWidth(l.CharWidth, l.Padding),
		Logger:      c.Logger,
	}
}
