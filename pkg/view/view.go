package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/inspect"
	"github.com/matzehuels/astview/pkg/layout"
	"github.com/matzehuels/astview/pkg/observability"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
)

// ErrClosed is returned by every operation on a closed view.
var ErrClosed = errors.New("view closed")

// ErrNoContent is returned by node operations while the view has no source.
var ErrNoContent = errors.New("view has no content")

// Node is a tree node carrying a syntax node.
type Node = tree.Node[source.Node]

// Options configures a [View].
type Options struct {
	// ID identifies the view in hooks and logs.
	ID string

	// Path labels the view's source when the loaded tree carries none.
	Path string

	Layout layout.Options

	// ExpandDepth expands this many levels below the root after each build.
	// ExpandAll expands everything.
	ExpandDepth int
	ExpandAll   bool

	// LeafText augments childless nodes with their source text, truncated
	// to this many runes. Zero disables augmentation, negative keeps the
	// whole text.
	LeafText int

	// Measure sizes node labels. Defaults to [layout.LabelWidth] with the
	// default character width and padding.
	Measure func(label string) float64

	// StrictSyntax aborts the build on error and missing nodes.
	StrictSyntax bool

	Mode Mode

	// OnSelect receives the activated node in [ModeSelect].
	OnSelect func(node source.Node)

	// Registry describes nodes for [View.Inspect]. Defaults to
	// [inspect.DefaultRegistry].
	Registry *inspect.Registry[source.Node]

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Measure == nil {
		o.Measure = layout.LabelWidth(layout.DefaultCharWidth, layout.DefaultPadding)
	}
	if o.Mode == "" {
		o.Mode = ModeToggle
	}
	if o.Registry == nil {
		o.Registry = inspect.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// View is one open visualization of a source file.
type View struct {
	opts   Options
	loader Loader
	engine *layout.Engine[source.Node]

	src      *source.Tree
	root     *Node
	result   layout.Result
	reason   error
	mode     Mode
	selected string
	closed   bool
}

// Open creates a view and performs the first load. A source that cannot be
// loaded yields an open view in the no-content state; a tree that cannot be
// mirrored fails the open.
func Open(ctx context.Context, loader Loader, opts Options) (*View, error) {
	opts = opts.withDefaults()
	v := &View{
		opts:   opts,
		loader: loader,
		engine: layout.New[source.Node](opts.Layout),
		mode:   opts.Mode,
	}
	if err := v.Refresh(ctx); err != nil {
		v.closed = true
		return nil, err
	}
	observability.View().OnOpen(ctx, opts.ID, v.Source())
	return v, nil
}

// Close releases the parsed source. It is safe to call more than once.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.discard()
	observability.View().OnClose(context.Background(), v.opts.ID)
	return nil
}

func (v *View) discard() {
	if v.src != nil {
		v.src.Close()
	}
	v.src = nil
	v.root = nil
	v.result = layout.Result{}
	v.selected = ""
}

// Refresh re-runs the loader and replaces the tree. The previous tree is
// kept if the new one cannot be mirrored.
func (v *View) Refresh(ctx context.Context) (err error) {
	if v.closed {
		return ErrClosed
	}
	start := time.Now()
	defer func() { observability.View().OnRefresh(ctx, v.opts.ID, time.Since(start), err) }()

	st, err := v.loader.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		v.opts.Logger.Warn("source unavailable", "view", v.opts.ID, "source", v.Source(), "err", err)
		v.discard()
		v.reason = err
		return nil
	}
	return v.Load(st)
}

// Load replaces the view's tree with one mirrored from st and takes
// ownership of st. On a mirror failure st is closed, the previous tree stays
// in place and the error is returned.
func (v *View) Load(st *source.Tree) error {
	if v.closed {
		st.Close()
		return ErrClosed
	}
	mirror := source.Mirror
	if v.opts.StrictSyntax {
		mirror = source.StrictMirror
	}
	buildOpts := []tree.BuildOption{tree.WithMeasure(v.opts.Measure)}
	if v.opts.LeafText != 0 {
		buildOpts = append(buildOpts, tree.WithLeafText(v.opts.LeafText))
	}

	root, err := tree.Build(st.Root(), mirror, buildOpts...)
	if err != nil {
		st.Close()
		v.opts.Logger.Error("build tree", "view", v.opts.ID, "source", v.sourceOf(st), "err", err)
		return err
	}

	v.discard()
	v.src = st
	v.root = root
	v.reason = nil
	switch {
	case v.opts.ExpandAll:
		layout.Expand(root, -1)
	case v.opts.ExpandDepth > 0:
		layout.Expand(root, v.opts.ExpandDepth)
	}
	v.result = v.engine.Layout(root)
	v.opts.Logger.Debug("built tree", "view", v.opts.ID, "nodes", root.Size(), "visible", v.result.Visible)
	return nil
}

// Activate handles a click on the node with the given ID according to the
// current mode.
func (v *View) Activate(id string) error {
	n, err := v.Node(id)
	if err != nil {
		return err
	}
	observability.View().OnActivate(context.Background(), v.opts.ID, id, string(v.mode))

	switch v.mode {
	case ModeSelect:
		v.selected = id
		if v.opts.OnSelect != nil {
			v.opts.OnSelect(n.Payload)
		}
	default:
		v.result = v.engine.Toggle(v.root, n)
	}
	return nil
}

// Mode returns the current activation mode.
func (v *View) Mode() Mode { return v.mode }

// SetMode switches the activation mode.
func (v *View) SetMode(m Mode) error {
	if v.closed {
		return ErrClosed
	}
	if m != ModeToggle && m != ModeSelect {
		return fmt.Errorf("unknown mode %q", m)
	}
	v.mode = m
	return nil
}

// Selected returns the ID of the last node activated in [ModeSelect].
func (v *View) Selected() string { return v.selected }

// ExpandTo resets the tree so that exactly the nodes within depth levels of
// the root are expanded. A negative depth expands everything.
func (v *View) ExpandTo(depth int) error {
	if err := v.ready(); err != nil {
		return err
	}
	tree.CollapseAll(v.root)
	v.root.Collapsed = false
	layout.Expand(v.root, depth)
	v.result = v.engine.Layout(v.root)
	return nil
}

// Expanded returns the IDs of the expanded nodes.
func (v *View) Expanded() []string {
	if v.root == nil {
		return nil
	}
	return tree.Expanded(v.root)
}

// Restore re-applies a set of expanded node IDs, typically from a stored
// record. IDs that no longer resolve are skipped.
func (v *View) Restore(expanded []string) error {
	if err := v.ready(); err != nil {
		return err
	}
	tree.CollapseAll(v.root)
	for _, id := range expanded {
		if n, err := tree.Find(v.root, id); err == nil {
			n.Collapsed = false
		}
	}
	v.result = v.engine.Layout(v.root)
	return nil
}

// Node resolves a node ID.
func (v *View) Node(id string) (*Node, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	return tree.Find(v.root, id)
}

// Inspect describes the node with the given ID.
func (v *View) Inspect(id string) ([]inspect.Property, error) {
	n, err := v.Node(id)
	if err != nil {
		return nil, err
	}
	return v.opts.Registry.Inspect(n.Payload), nil
}

// Diagram exports the current layout.
func (v *View) Diagram() diagram.Diagram {
	if v.root == nil {
		return diagram.NoContent(v.Source())
	}
	return diagram.FromTree(v.engine, v.root, v.result, diagram.Options[source.Node]{
		Source:   v.Source(),
		Language: v.src.Language().String(),
		IsError:  func(n source.Node) bool { return n.IsError() || n.IsMissing() },
	})
}

// Root returns the tree root, or nil in the no-content state.
func (v *View) Root() *Node { return v.root }

// Result returns the last layout result.
func (v *View) Result() layout.Result { return v.result }

// Engine returns the view's layout engine.
func (v *View) Engine() *layout.Engine[source.Node] { return v.engine }

// Tree returns the parsed source, or nil in the no-content state.
func (v *View) Tree() *source.Tree { return v.src }

// NoContent reports whether the view has no source to show.
func (v *View) NoContent() bool { return v.root == nil }

// Reason returns why the last refresh produced no content.
func (v *View) Reason() error { return v.reason }

// Closed reports whether Close has been called.
func (v *View) Closed() bool { return v.closed }

// Source returns the path of the displayed source.
func (v *View) Source() string { return v.sourceOf(v.src) }

// ID returns the view's identifier.
func (v *View) ID() string { return v.opts.ID }

func (v *View) sourceOf(st *source.Tree) string {
	if st != nil && st.Path() != "" {
		return st.Path()
	}
	return v.opts.Path
}

func (v *View) ready() error {
	if v.closed {
		return ErrClosed
	}
	if v.root == nil {
		return ErrNoContent
	}
	return nil
}
