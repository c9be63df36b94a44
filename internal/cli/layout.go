package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagrams.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Compute the tree diagram of a C or C++ file",
		Long: `Compute the tree diagram of a C or C++ file.

The layout command parses the source, expands the tree to the requested depth
and writes the laid-out diagram as JSON (same format as 'render -f json').
The diagram can be rendered to SVG, PNG, PDF or text with 'astview render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			opts.Path = args[0]
			return c.runLayout(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Laying out "+filepath.Base(opts.Path)+"...")
	spinner.Start()

	d, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		if isCanceled(ctx, err) {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.StopWithSuccess("Laid out " + opts.Path)

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(opts.Path, filepath.Ext(opts.Path)) + diagramExt
	}
	if err := diagram.WriteFile(d, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printFile(outputPath)
	printStats(len(d.Boxes), d.Truncated, cacheHit)
	printNewline()
	printNextStep("Render", "astview render "+outputPath)

	return nil
}
