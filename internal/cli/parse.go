package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
)

// parseCommand creates the parse command, which prints the syntax tree as an
// indented outline.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree of a C or C++ file",
		Long: `Print the syntax tree of a C or C++ file as an indented outline.

Each line shows the node's path ID, its grammar kind, the grammar field it
fills in its parent and its source range. Path IDs can be passed to
'inspect --node' and to the HTTP API.

Examples:
  astview parse main.c
  astview parse --max-depth 2 widget.cpp
  astview parse --leaf-text 20 -o main.outline main.c`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			opts.Path = args[0]
			return c.runParse(cmd.Context(), opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, opts pipeline.Options, output string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	prog := newProgress(c.Logger)
	st, err := runner.Parse(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()
	prog.done("Parsed " + opts.Path)

	root, err := pipeline.BuildTree(st, opts)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}

	if output == "" {
		return writeOutline(stdout, root, opts.MaxDepth)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := writeOutline(f, root, opts.MaxDepth); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	stats := st.Stats()
	printSuccess("Parsed %s", opts.Path)
	printFile(output)
	printDetail("%d nodes · depth %d · %d lines · %d syntax errors", stats.Nodes, stats.Depth, stats.Lines, stats.Errors)
	return nil
}

// writeOutline prints one line per node in pre-order, indented by depth.
// A positive maxDepth omits deeper nodes.
func writeOutline(w io.Writer, root *tree.Node[source.Node], maxDepth int) error {
	var err error
	var walk func(n *tree.Node[source.Node], depth int)
	walk = func(n *tree.Node[source.Node], depth int) {
		if err != nil || (maxDepth > 0 && depth > maxDepth) {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), outlineLine(n))
		for _, child := range n.Children() {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return err
}

func outlineLine(n *tree.Node[source.Node]) string {
	if n.Synthetic {
		return fmt.Sprintf("%q  %s", n.Label, n.ID())
	}
	var b strings.Builder
	if field := n.Payload.Field(); field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	b.WriteString(n.Label)
	fmt.Fprintf(&b, " [%s-%s]  %s", n.Payload.StartPoint(), n.Payload.EndPoint(), n.ID())
	return b.String()
}
