package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/observability"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/view"
)

// viewFlags holds the flags of the view command.
type viewFlags struct {
	language    string
	anonymous   bool
	leafText    int
	expandDepth int
	expandAll   bool
	strict      bool
	mode        string
	watch       bool
	logFile     string
}

// viewCommand creates the view command, which browses a syntax tree in the
// terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse a syntax tree interactively",
		Long: `Browse a syntax tree interactively.

Move between nodes with the arrow keys and activate the current node with
enter. In toggle mode activation expands or collapses the node; in select
mode it selects the node and shows its source position. The inspector pane
lists the properties of the current node.

With --watch the tree is reloaded whenever the file changes on disk.

Examples:
  astview view main.c
  astview view -a --watch src/parser.cpp
  astview view --mode select --log-file view.log widget.cpp`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSourceFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, args[0], flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.language, "lang", "l", "", "language: c, cpp (default: from file extension)")
	fs.BoolVar(&flags.anonymous, "anonymous", false, "include anonymous tokens such as punctuation")
	fs.IntVar(&flags.leafText, "leaf-text", 0, "show source text under leaves, truncated to N runes (-1 for all)")
	fs.IntVarP(&flags.expandDepth, "depth", "d", 0, "expand this many levels below the root")
	fs.BoolVarP(&flags.expandAll, "all", "a", false, "expand every node")
	fs.BoolVar(&flags.strict, "strict", false, "reject trees with syntax errors")
	fs.StringVarP(&flags.mode, "mode", "m", string(view.ModeToggle), "activation mode: toggle, select")
	fs.BoolVarP(&flags.watch, "watch", "w", false, "reload when the file changes")
	fs.StringVar(&flags.logFile, "log-file", "", "write logs to this file while the view is open")
	_ = cmd.RegisterFlagCompletionFunc("lang", completeLanguages)
	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(
		[]string{string(view.ModeToggle), string(view.ModeSelect)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, path string, flags viewFlags) error {
	ctx := cmd.Context()

	lang, err := c.viewLanguage(cmd, path, flags.language)
	if err != nil {
		return err
	}
	mode, err := view.ParseMode(flags.mode)
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	logger := log.New(io.Discard)
	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}
	if logger.GetLevel() <= log.DebugLevel {
		observability.UseLogger(logger)
	} else {
		observability.Reset()
	}

	opts := c.viewOptions()
	opts.Path = path
	opts.Mode = mode
	opts.Logger = logger
	c.applyViewFlags(cmd, flags, &opts)

	var m *tuiModel
	opts.OnSelect = func(n source.Node) {
		if m != nil {
			m.selected(n)
		}
	}

	var srcOpts []source.Option
	if flags.anonymous || (!cmd.Flags().Changed("anonymous") && c.cfg.Source.Anonymous) {
		srcOpts = append(srcOpts, source.WithAnonymous())
	}
	v, err := view.Open(ctx, view.FileLoader(path, lang, srcOpts...), opts)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer v.Close()

	charWidth := c.cfg.Layout.CharWidth
	if charWidth <= 0 {
		charWidth = layout.DefaultCharWidth
	}
	m = newTUIModel(ctx, v, charWidth)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if flags.watch {
		w, err := newFileWatcher(path, logger, func() { p.Send(refreshMsg{}) })
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.Start(ctx)
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil && !isCanceled(ctx, err) {
		return fmt.Errorf("run view: %w", err)
	}
	if sel := v.Selected(); sel != "" {
		if n, err := v.Node(sel); err == nil && !n.Synthetic {
			printKeyValue("selected", fmt.Sprintf("%s %s", n.Payload.Label(), n.Payload.StartPoint()))
		}
	}
	return nil
}

// viewLanguage resolves the language up front so that an unsupported file
// fails before the terminal is taken over.
func (c *CLI) viewLanguage(cmd *cobra.Command, path, flag string) (source.Language, error) {
	name := c.cfg.Source.Language
	if cmd.Flags().Changed("lang") {
		name = flag
	}
	if name != "" {
		return source.ParseLanguage(name)
	}
	return source.LanguageFor(path)
}

func (c *CLI) applyViewFlags(cmd *cobra.Command, flags viewFlags, opts *view.Options) {
	fs := cmd.Flags()
	if fs.Changed("leaf-text") {
		opts.LeafText = flags.leafText
	}
	if fs.Changed("depth") {
		opts.ExpandDepth = flags.expandDepth
	}
	if fs.Changed("all") {
		opts.ExpandAll = flags.expandAll
	}
	opts.StrictSyntax = flags.strict
}
