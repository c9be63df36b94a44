package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apierr "github.com/matzehuels/astview/pkg/errors"
	"github.com/matzehuels/astview/pkg/inspect"
	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/tree"
)

// inspectCommand creates the inspect command, which describes one node.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags  optionFlags
		nodeID string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe a syntax tree node",
		Long: `Describe a syntax tree node: its kind, position, children, the fields
specific to its kind and its source text.

Nodes are addressed by path ID as printed by 'astview parse': "0" is the root,
"0.2" its third child, and so on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apierr.ValidateNodeID(nodeID); err != nil {
				return err
			}
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			opts.Path = args[0]
			return c.runInspect(cmd.Context(), opts, nodeID, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&nodeID, "node", "n", tree.RootID, "path ID of the node")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, nodeID string, asJSON bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	st, err := runner.Parse(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	root, err := pipeline.BuildTree(st, opts)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	n, err := tree.Find(root, nodeID)
	if err != nil {
		return err
	}
	if n.Synthetic {
		return fmt.Errorf("node %s is a source text label, inspect %s instead", nodeID, n.Parent().ID())
	}
	props := inspect.DefaultRegistry().Inspect(n.Payload)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ID         string             `json:"id"`
			Label      string             `json:"label"`
			Properties []inspect.Property `json:"properties"`
		}{nodeID, n.Label, props})
	}

	printLine(StyleTitle.Render(n.Label) + " " + StyleDim.Render(nodeID))
	printProperties(props, 0)
	return nil
}

// printProperties prints sections as headings and their entries as
// key-value lines.
func printProperties(props []inspect.Property, depth int) {
	indent := strings.Repeat("  ", depth)
	width := max(12-2*depth, 4)
	for _, p := range props {
		switch {
		case depth == 0:
			printNewline()
			printLine(StyleHighlight.Render(p.Name))
		case p.Value != "":
			key := styleName.Render(fmt.Sprintf("%-*s", width, p.Name))
			printLine(indent + key + " " + StyleValue.Render(p.Value))
		default:
			printLine(indent + styleName.Render(p.Name))
		}
		printProperties(p.Children, depth+1)
	}
}
