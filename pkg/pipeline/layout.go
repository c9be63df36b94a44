package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
)

// BuildTree mirrors a parsed source into a tree model with measured labels
// and optional leaf text.
func BuildTree(st *source.Tree, opts Options) (*tree.Node[source.Node], error) {
	mirror := source.Mirror
	if opts.StrictSyntax {
		mirror = source.StrictMirror
	}
	buildOpts := []tree.BuildOption{tree.WithMeasure(layout.LabelWidth(opts.CharWidth, opts.Padding))}
	if opts.LeafText != 0 {
		buildOpts = append(buildOpts, tree.WithLeafText(opts.LeafText))
	}
	return tree.Build(st.Root(), mirror, buildOpts...)
}

// GenerateDiagram builds, expands and lays out the tree of st and exports
// the visible part.
func GenerateDiagram(st *source.Tree, opts Options) (diagram.Diagram, error) {
	root, err := BuildTree(st, opts)
	if err != nil {
		return diagram.Diagram{}, err
	}
	if opts.ExpandAll {
		layout.Expand(root, -1)
	} else {
		layout.Expand(root, opts.ExpandDepth)
	}

	eng := layout.New[source.Node](opts.LayoutOptions())
	res := eng.Layout(root)
	if opts.Logger != nil && opts.Logger.GetLevel() <= log.DebugLevel {
		if err := eng.Validate(root); err != nil {
			opts.Logger.Warn("layout check failed", "source", opts.Path, "err", err)
		}
	}
	return diagram.FromTree(eng, root, res, diagram.Options[source.Node]{
		Source:   opts.Path,
		Language: st.Language().String(),
		IsError:  func(n source.Node) bool { return n.IsError() || n.IsMissing() },
	}), nil
}
