package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/astview/pkg/tree"
)

const addC = `int add(int a, int b) {
	return a + b;
}
`

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		path string
		want Language
		err  bool
	}{
		{"main.c", C, false},
		{"include/util.h", C, false},
		{"widget.CPP", CPP, false},
		{"a.cc", CPP, false},
		{"sketch.ino", CPP, false},
		{"lib.hpp", CPP, false},
		{"main.go", "", true},
		{"Makefile", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := LanguageFor(tt.path)
			if tt.err {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Errorf("LanguageFor(%q) error = %v, want ErrUnsupportedLanguage", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("LanguageFor(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	for name, want := range map[string]Language{"c": C, "C": C, "cpp": CPP, "c++": CPP, " cxx ": CPP} {
		if got, err := ParseLanguage(name); err != nil || got != want {
			t.Errorf("ParseLanguage(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseLanguage("rust"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("ParseLanguage(rust) error = %v", err)
	}
}

func TestParseC(t *testing.T) {
	st, err := Parse(context.Background(), C, []byte(addC))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer st.Close()

	root := st.Root()
	if root.Label() != "translation_unit" {
		t.Fatalf("root label = %q", root.Label())
	}
	kids := root.Children()
	if len(kids) != 1 || kids[0].Kind() != "function_definition" {
		t.Fatalf("root children = %v", kids)
	}
	fn := kids[0]
	if got := fn.FieldText("body"); !strings.Contains(got, "return a + b;") {
		t.Errorf("body text = %q", got)
	}
	decl, ok := fn.ChildByField("declarator")
	if !ok || decl.Kind() != "function_declarator" {
		t.Fatalf("declarator = %v, %v", decl, ok)
	}
	if decl.FieldText("declarator") != "add" {
		t.Errorf("function name = %q", decl.FieldText("declarator"))
	}

	var fields []string
	for _, c := range fn.Children() {
		fields = append(fields, c.Field())
	}
	if strings.Join(fields, ",") != "type,declarator,body" {
		t.Errorf("child fields = %v", fields)
	}
	if fn.StartPoint() != (Point{0, 0}) || fn.EndPoint().Row != 2 {
		t.Errorf("span = %s..%s", fn.StartPoint(), fn.EndPoint())
	}
	if st.HasError() {
		t.Error("valid source reported errors")
	}
	if st.Fingerprint() != Fingerprint([]byte(addC)) {
		t.Error("fingerprint mismatch")
	}
}

func TestParseAnonymous(t *testing.T) {
	ctx := context.Background()
	named, err := Parse(ctx, C, []byte(addC))
	if err != nil {
		t.Fatal(err)
	}
	defer named.Close()
	all, err := Parse(ctx, C, []byte(addC), WithAnonymous())
	if err != nil {
		t.Fatal(err)
	}
	defer all.Close()

	n, a := named.Stats(), all.Stats()
	if a.Nodes <= n.Nodes {
		t.Errorf("anonymous tokens not exposed: %d <= %d", a.Nodes, n.Nodes)
	}
	if n.Lines != 3 {
		t.Errorf("Lines = %d, want 3", n.Lines)
	}
}

func TestParseCPP(t *testing.T) {
	src := "class Shape { public: virtual double area() const = 0; };\n"
	st, err := Parse(context.Background(), CPP, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	var kinds []string
	var walk func(Node)
	walk = func(n Node) {
		kinds = append(kinds, n.Kind())
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(st.Root())
	joined := strings.Join(kinds, " ")
	for _, want := range []string{"class_specifier", "field_declaration_list", "access_specifier"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %s in %s", want, joined)
		}
	}
}

func TestParseNoContent(t *testing.T) {
	ctx := context.Background()
	for _, src := range []string{"", "  \n\t"} {
		if _, err := Parse(ctx, C, []byte(src)); !errors.Is(err, ErrNoContent) {
			t.Errorf("Parse(%q) error = %v, want ErrNoContent", src, err)
		}
	}

	dir := t.TempDir()
	if _, err := ParseFile(ctx, filepath.Join(dir, "missing.c"), ""); !errors.Is(err, ErrNoContent) {
		t.Errorf("missing file error = %v, want ErrNoContent", err)
	}
	empty := filepath.Join(dir, "empty.c")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(ctx, empty, ""); !errors.Is(err, ErrNoContent) {
		t.Errorf("empty file error = %v, want ErrNoContent", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.c")
	if err := os.WriteFile(path, []byte(addC), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := ParseFile(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	defer st.Close()
	if st.Path() != path || st.Language() != C {
		t.Errorf("Path/Language = %q/%q", st.Path(), st.Language())
	}

	if _, err := ParseFile(context.Background(), path, "fortran"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("bad language error = %v", err)
	}
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Parse(ctx, C, []byte(addC)); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}

func TestMirrorIntoTree(t *testing.T) {
	st, err := Parse(context.Background(), C, []byte(addC))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	root, err := tree.Build(st.Root(), Mirror, tree.WithLeafText(20))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if root.Label != "translation_unit" {
		t.Errorf("root label = %q", root.Label)
	}
	var leaves []string
	tree.Visit(root, func(n *tree.Node[Node]) {
		if n.Synthetic {
			leaves = append(leaves, n.Label)
		}
	})
	if !strings.Contains(strings.Join(leaves, "|"), "add") {
		t.Errorf("expected the identifier text among leaf labels: %v", leaves)
	}
}

func TestStrictMirror(t *testing.T) {
	src := "int main( { return 0; }\n"
	st, err := Parse(context.Background(), C, []byte(src), WithAnonymous())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if !st.HasError() {
		t.Fatal("expected syntax errors")
	}
	if st.Stats().Errors == 0 {
		t.Error("Stats().Errors = 0")
	}

	if _, err := tree.Build(st.Root(), Mirror); err != nil {
		t.Errorf("lenient Build() error: %v", err)
	}
	_, err = tree.Build(st.Root(), StrictMirror)
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("strict Build() error = %v, want ErrSyntax", err)
	}
	var me *tree.MirrorError
	if !errors.As(err, &me) {
		t.Errorf("error %T is not a *tree.MirrorError", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("int x;"))
	if a != Fingerprint([]byte("int x;")) {
		t.Error("fingerprint not stable")
	}
	if a == Fingerprint([]byte("int y;")) {
		t.Error("different inputs collide")
	}
}
