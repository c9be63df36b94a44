package view

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/astview/pkg/inspect"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
	"github.com/matzehuels/astview/pkg/viewstore"
)

const twoDecls = `int counter;

int next(void) {
	return counter + 1;
}
`

const broken = "int main( { return 0; }\n"

// sequence returns a loader that yields the given sources in turn and
// repeats the last one.
func sequence(srcs ...string) Loader {
	i := 0
	return LoaderFunc(func(ctx context.Context) (*source.Tree, error) {
		s := srcs[min(i, len(srcs)-1)]
		i++
		return source.Parse(ctx, source.C, []byte(s), source.WithAnonymous())
	})
}

func open(t *testing.T, loader Loader, opts Options) *View {
	t.Helper()
	v, err := Open(context.Background(), loader, opts)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeToggle, false},
		{"toggle", ModeToggle, false},
		{" Select ", ModeSelect, false},
		{"hover", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if ModeToggle.Next() != ModeSelect || ModeSelect.Next() != ModeToggle {
		t.Error("Next() should alternate modes")
	}
}

func TestOpenNoContent(t *testing.T) {
	v := open(t, BytesLoader(source.C, []byte("  \n\t")), Options{Path: "empty.c"})

	if !v.NoContent() {
		t.Fatal("NoContent() = false for blank source")
	}
	if !errors.Is(v.Reason(), source.ErrNoContent) {
		t.Errorf("Reason() = %v, want source.ErrNoContent", v.Reason())
	}
	d := v.Diagram()
	if !d.Empty() || d.Source != "empty.c" {
		t.Errorf("Diagram() = %+v, want empty diagram for empty.c", d)
	}
	if err := v.Activate(tree.RootID); !errors.Is(err, ErrNoContent) {
		t.Errorf("Activate() error = %v, want ErrNoContent", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	v := open(t, FileLoader(t.TempDir()+"/gone.c", ""), Options{})
	if !v.NoContent() {
		t.Error("missing file should open in the no-content state")
	}
}

func TestToggleMode(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{})

	root := v.Root()
	if root.Collapsed {
		t.Fatal("root should start expanded")
	}
	if got := v.Expanded(); !slices.Equal(got, []string{"0"}) {
		t.Fatalf("Expanded() = %v, want [0]", got)
	}
	fn, err := v.Node("0.1")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Payload.Kind() != "function_definition" {
		t.Fatalf("node 0.1 kind = %q", fn.Payload.Kind())
	}
	before := v.Result().Visible

	if err := v.Activate("0.1"); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if fn.Collapsed {
		t.Error("activation in toggle mode should expand the node")
	}
	for _, c := range fn.Children() {
		if !c.Collapsed && !c.IsLeaf() {
			t.Errorf("child %s should start collapsed", c.ID())
		}
	}
	if got := v.Result().Visible; got != before+len(fn.Children()) {
		t.Errorf("Visible = %d, want %d", got, before+len(fn.Children()))
	}
	if got := v.Expanded(); !slices.Equal(got, []string{"0", "0.1"}) {
		t.Errorf("Expanded() = %v", got)
	}

	if err := v.Activate("0.1"); err != nil {
		t.Fatal(err)
	}
	if got := v.Result().Visible; got != before {
		t.Errorf("Visible after collapse = %d, want %d", got, before)
	}
}

func TestSelectMode(t *testing.T) {
	var selected []string
	v := open(t, sequence(twoDecls), Options{
		Mode:     ModeSelect,
		OnSelect: func(n source.Node) { selected = append(selected, n.Kind()) },
	})

	if err := v.Activate("0.1"); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(selected, []string{"function_definition"}) {
		t.Errorf("OnSelect got %v", selected)
	}
	if v.Selected() != "0.1" {
		t.Errorf("Selected() = %q", v.Selected())
	}
	if got := v.Expanded(); !slices.Equal(got, []string{"0"}) {
		t.Errorf("select mode changed expansion: %v", got)
	}

	if err := v.SetMode(ModeToggle); err != nil {
		t.Fatal(err)
	}
	if err := v.Activate("0.1"); err != nil {
		t.Fatal(err)
	}
	if len(selected) != 1 {
		t.Error("toggle mode should not emit selections")
	}
	if err := v.SetMode("hover"); err == nil {
		t.Error("SetMode(hover) should fail")
	}
}

func TestActivateUnknownNode(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{})
	if err := v.Activate("0.9"); !errors.Is(err, tree.ErrNotFound) {
		t.Errorf("Activate(0.9) error = %v, want tree.ErrNotFound", err)
	}
}

func TestRefreshDiscardsExpansion(t *testing.T) {
	v := open(t, sequence(twoDecls, twoDecls+"int extra;\n"), Options{})

	if err := v.Activate("0.1"); err != nil {
		t.Fatal(err)
	}
	old := v.Root()
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if v.Root() == old {
		t.Error("Refresh() should build a new tree")
	}
	if got := len(v.Root().Children()); got != 3 {
		t.Errorf("root children = %d, want 3", got)
	}
	if got := v.Expanded(); !slices.Equal(got, []string{"0"}) {
		t.Errorf("Expanded() after refresh = %v, want [0]", got)
	}
}

func TestRefreshMirrorFailureKeepsTree(t *testing.T) {
	v := open(t, sequence(twoDecls, broken), Options{StrictSyntax: true})
	old := v.Root()

	err := v.Refresh(context.Background())
	if !errors.Is(err, source.ErrSyntax) {
		t.Fatalf("Refresh() error = %v, want ErrSyntax", err)
	}
	var me *tree.MirrorError
	if !errors.As(err, &me) {
		t.Errorf("error %T is not a *tree.MirrorError", err)
	}
	if v.Root() != old || v.NoContent() {
		t.Error("previous tree should stay in place after a mirror failure")
	}
}

func TestOpenMirrorFailure(t *testing.T) {
	_, err := Open(context.Background(), sequence(broken), Options{StrictSyntax: true})
	if !errors.Is(err, source.ErrSyntax) {
		t.Errorf("Open() error = %v, want ErrSyntax", err)
	}
}

func TestRefreshSourceUnavailable(t *testing.T) {
	calls := 0
	loader := LoaderFunc(func(ctx context.Context) (*source.Tree, error) {
		calls++
		if calls > 1 {
			return nil, source.ErrNoContent
		}
		return source.Parse(ctx, source.C, []byte(twoDecls))
	})
	v := open(t, loader, Options{})

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v, want nil", err)
	}
	if !v.NoContent() || v.Tree() != nil {
		t.Error("view should be in the no-content state")
	}
}

func TestRefreshCanceled(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := v.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() error = %v, want context.Canceled", err)
	}
	if v.NoContent() {
		t.Error("canceled refresh should keep the tree")
	}
}

func TestExpandAndRestore(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{ExpandAll: true})
	all := v.Expanded()
	if len(all) < 3 {
		t.Fatalf("ExpandAll expanded only %v", all)
	}

	if err := v.ExpandTo(0); err != nil {
		t.Fatal(err)
	}
	if got := v.Expanded(); !slices.Equal(got, []string{"0"}) {
		t.Errorf("ExpandTo(0) = %v", got)
	}

	if err := v.Restore(append(all, "0.7.7")); err != nil {
		t.Fatal(err)
	}
	if got := v.Expanded(); !slices.Equal(got, all) {
		t.Errorf("Restore() = %v, want %v", got, all)
	}
}

func TestLeafText(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{ExpandAll: true, LeafText: 8})
	var synthetic int
	for n := range tree.All(v.Root()) {
		if n.Synthetic {
			synthetic++
			if len(n.Parent().Children()) != 1 {
				t.Errorf("synthetic leaf %s has siblings", n.ID())
			}
		}
	}
	if synthetic == 0 {
		t.Error("LeafText should add synthetic leaves")
	}
}

func TestInspect(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{})
	props, err := v.Inspect("0.1")
	if err != nil {
		t.Fatal(err)
	}
	fields, ok := inspect.Find(props, inspect.FieldsSection)
	if !ok {
		t.Fatalf("no %s section in %v", inspect.FieldsSection, props)
	}
	name, ok := inspect.Find(fields.Children, "name")
	if !ok || name.Value != "next" {
		t.Errorf("name = %+v", name)
	}
}

func TestDiagram(t *testing.T) {
	v := open(t, sequence(twoDecls), Options{Path: "decls.c"})
	d := v.Diagram()
	if d.Language != "c" || d.Source != "decls.c" {
		t.Errorf("Diagram() source = %q/%q", d.Source, d.Language)
	}
	if len(d.Boxes) != v.Result().Visible {
		t.Errorf("boxes = %d, want %d", len(d.Boxes), v.Result().Visible)
	}
	if len(d.Edges) != len(d.Boxes)-1 {
		t.Errorf("edges = %d, want %d", len(d.Edges), len(d.Boxes)-1)
	}
}

func TestClosed(t *testing.T) {
	v, err := Open(context.Background(), sequence(twoDecls), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}
	if err := v.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if err := v.Activate("0"); !errors.Is(err, ErrClosed) {
		t.Errorf("Activate() error = %v, want ErrClosed", err)
	}
	if err := v.Refresh(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Refresh() error = %v, want ErrClosed", err)
	}
	if err := v.SetMode(ModeSelect); !errors.Is(err, ErrClosed) {
		t.Errorf("SetMode() error = %v, want ErrClosed", err)
	}
}

// =============================================================================
// Manager
// =============================================================================

func bytesFactory(src string) LoaderFactory {
	return func(path string, lang source.Language) Loader {
		return BytesLoader(source.C, []byte(src))
	}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := viewstore.NewMemory()
	m := NewManager(store, bytesFactory(twoDecls), Options{})
	defer m.Shutdown()

	id, err := m.Open(ctx, "decls.c", source.C, ModeToggle)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	err = m.With(ctx, id, func(v *View) error { return v.Activate("0.1") })
	if err != nil {
		t.Fatalf("With() error: %v", err)
	}
	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.Expanded, []string{"0", "0.1"}) || rec.Path != "decls.c" {
		t.Errorf("stored record = %+v", rec)
	}

	if err := m.Close(ctx, id); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := m.With(ctx, id, func(*View) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("With(closed) error = %v, want ErrNotFound", err)
	}
	if err := m.Close(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Close(closed) error = %v, want ErrNotFound", err)
	}
}

func TestManagerRestore(t *testing.T) {
	ctx := context.Background()
	store, err := viewstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := NewManager(store, bytesFactory(twoDecls), Options{})
	id, err := first.Open(ctx, "decls.c", source.C, ModeSelect)
	if err != nil {
		t.Fatal(err)
	}
	err = first.With(ctx, id, func(v *View) error {
		if err := v.SetMode(ModeToggle); err != nil {
			return err
		}
		return v.Activate("0.1")
	})
	if err != nil {
		t.Fatal(err)
	}
	first.Shutdown()

	second := NewManager(store, bytesFactory(twoDecls), Options{})
	defer second.Shutdown()
	err = second.With(ctx, id, func(v *View) error {
		if v.Mode() != ModeToggle {
			t.Errorf("restored mode = %q", v.Mode())
		}
		if got := v.Expanded(); !slices.Equal(got, []string{"0", "0.1"}) {
			t.Errorf("restored expansion = %v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With() after restart error: %v", err)
	}

	recs, err := second.List(ctx)
	if err != nil || len(recs) != 1 {
		t.Errorf("List() = %v, %v", recs, err)
	}
}

func TestManagerUnknown(t *testing.T) {
	m := NewManager(nil, nil, Options{})
	err := m.With(context.Background(), "5f0c6a9e-3c1c-4d7e-9a59-1f6f0b3b2a11", func(*View) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("With(unknown) error = %v, want ErrNotFound", err)
	}
}
