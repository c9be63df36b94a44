package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/render"
)

// diagramExt marks diagram files written by the layout command.
const diagramExt = ".diagram.json"

// renderCommand creates the render command for generating output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      optionFlags
		output     string
		formatsStr string
		style      string
		fontSize   float64
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the tree diagram of a C or C++ file",
		Long: `Render the tree diagram of a C or C++ file, or of a diagram written by
'astview layout', to one or more output formats.

Formats: svg (default), dot, graphviz, txt, json, png, pdf. PNG and PDF need
rsvg-convert on the PATH. With a single format, '-o -' writes to stdout.

Examples:
  astview render main.c
  astview render -f txt -o - --depth 3 main.c
  astview render -f svg,png --all --leaf-text 16 widget.cpp
  astview render main.diagram.json -f pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			opts.Path = args[0]
			if cmd.Flags().Changed("format") {
				formats, err := parseFormats(formatsStr)
				if err != nil {
					return err
				}
				opts.Formats = formats
			}
			if cmd.Flags().Changed("style") {
				opts.Style = style
			}
			if cmd.Flags().Changed("font-size") {
				opts.FontSize = fontSize
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated: svg, dot, graphviz, txt, json, png, pdf")
	cmd.Flags().StringVar(&style, "style", pipeline.DefaultStyle, "SVG box style: span (default), compact")
	cmd.Flags().Float64Var(&fontSize, "font-size", 0, "SVG label font size")
	cmd.Flags().Float64Var(&scale, "scale", 0, "PNG resolution factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	if output == "-" && len(opts.Formats) != 1 {
		return fmt.Errorf("-o - needs exactly one format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering "+filepath.Base(opts.Path)+"...")
	if output != "-" {
		spinner.Start()
	}

	var (
		d         diagram.Diagram
		artifacts map[string][]byte
		cached    bool
	)
	if strings.HasSuffix(opts.Path, diagramExt) {
		d, err = diagram.ReadFile(opts.Path)
		if err == nil {
			d.Source = cmp.Or(d.Source, opts.Path)
			artifacts, cached, err = runner.RenderWithCacheInfo(ctx, d, opts)
		}
	} else {
		var res *pipeline.Result
		if res, err = runner.Execute(ctx, opts); err == nil {
			d, artifacts = res.Diagram, res.Artifacts
			cached = res.CacheInfo.DiagramHit && res.CacheInfo.RenderHit
		}
	}
	if err != nil {
		if isCanceled(ctx, err) {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if output == "-" {
		_, err := stdout.Write(artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(opts.Path, output, opts.Formats)
	for _, f := range opts.Formats {
		if err := os.WriteFile(paths[f], artifacts[f], 0644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}

	printSuccess("Rendered %s", opts.Path)
	for _, f := range opts.Formats {
		printFile(paths[f])
	}
	printStats(len(d.Boxes), d.Truncated, cached)
	if d.Truncated {
		printWarning("Diagram truncated by max-depth or max-nodes")
	}
	return nil
}

// outputPaths maps each format to its output file. A single format is
// written to output verbatim; otherwise output (or the input without its
// extension) is used as the base name.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(input, output)
	for _, name := range formats {
		paths[name] = base + "." + render.Format(name).Ext()
	}
	return paths
}

// basePath strips a known format extension from output, or derives the base
// from the input file when output is empty.
func basePath(input, output string) string {
	if output == "" {
		if strings.HasSuffix(input, diagramExt) {
			return strings.TrimSuffix(input, diagramExt)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if _, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(output), ".")); err == nil {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}
