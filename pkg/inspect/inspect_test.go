package inspect

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/astview/pkg/source"
)

type fakeNode struct {
	kind string
	name string
}

func fakeRegistry() *Registry[fakeNode] {
	r := NewRegistry(func(n fakeNode) string { return n.kind },
		Section[fakeNode]{Name: "Node", Fields: []Field[fakeNode]{
			{Name: "kind", Get: func(n fakeNode) string { return n.kind }},
		}},
		Section[fakeNode]{Name: "Tail", Trailing: true, Fields: []Field[fakeNode]{
			{Name: "empty", Get: func(fakeNode) string { return "" }},
			{Name: "const", Get: func(fakeNode) string { return "x" }},
		}},
	)
	r.Register(Descriptor[fakeNode]{Kind: "var", Fields: []Field[fakeNode]{
		{Name: "name", Get: func(n fakeNode) string { return n.name }},
	}})
	return r
}

func TestRegistryInspect(t *testing.T) {
	r := fakeRegistry()

	tests := []struct {
		name     string
		node     fakeNode
		sections []string
	}{
		{name: "Registered", node: fakeNode{"var", "x"}, sections: []string{"Node", FieldsSection, "Tail"}},
		{name: "Unregistered", node: fakeNode{"other", "y"}, sections: []string{"Node", "Tail"}},
		{name: "EmptyFieldsOmitted", node: fakeNode{"var", ""}, sections: []string{"Node", "Tail"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := r.Inspect(tt.node)
			var got []string
			for _, p := range props {
				got = append(got, p.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.sections, ",") {
				t.Errorf("sections = %v, want %v", got, tt.sections)
			}
			tail, _ := Find(props, "Tail")
			if len(tail.Children) != 1 {
				t.Errorf("empty values should be omitted, got %v", tail.Children)
			}
		})
	}
}

func TestRegistryAlias(t *testing.T) {
	r := fakeRegistry()
	r.Alias("var", "let", "const")
	if d, ok := r.Lookup("let"); !ok || d.Kind != "let" || len(d.Fields) != 1 {
		t.Errorf("Lookup(let) = %+v, %v", d, ok)
	}
	if r.Kinds() != 3 {
		t.Errorf("Kinds() = %d, want 3", r.Kinds())
	}

	defer func() {
		if recover() == nil {
			t.Error("Alias of unknown kind should panic")
		}
	}()
	r.Alias("nope", "x")
}

func TestFprint(t *testing.T) {
	props := []Property{
		{Name: "Node", Children: []Property{{Name: "kind", Value: "call_expression"}}},
		{Name: "Text", Children: []Property{{Name: "source", Value: "f(x)"}}},
	}
	var buf bytes.Buffer
	if err := Fprint(&buf, props); err != nil {
		t.Fatal(err)
	}
	want := "Node\n  kind: call_expression\nText\n  source: f(x)\n"
	if buf.String() != want {
		t.Errorf("Fprint() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"a  b\n c", 0, "a b c"},
		{"hello world", 5, "hell…"},
		{"short", 10, "short"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.in, tt.max); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

const sample = `#include <stdio.h>
#define LIMIT 10

struct point { int x; int y; };

static int *scale(int *v, int factor) {
	for (int i = 0; i < LIMIT; i++) {
		v[i] = v[i] * factor;
	}
	printf("%d\n", factor);
	return v;
}
`

func parseSample(t *testing.T) *source.Tree {
	t.Helper()
	st, err := source.Parse(context.Background(), source.C, []byte(sample))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

func findKind(n source.Node, kind string) (source.Node, bool) {
	if n.Kind() == kind {
		return n, true
	}
	for _, c := range n.Children() {
		if f, ok := findKind(c, kind); ok {
			return f, true
		}
	}
	return source.Node{}, false
}

func TestDefaultRegistry(t *testing.T) {
	st := parseSample(t)
	r := DefaultRegistry()

	tests := []struct {
		kind  string
		field string
		want  string
	}{
		{"function_definition", "name", "scale"},
		{"function_definition", "return type", "int"},
		{"preproc_include", "path", "<stdio.h>"},
		{"preproc_def", "name", "LIMIT"},
		{"preproc_def", "value", "10"},
		{"struct_specifier", "name", "point"},
		{"struct_specifier", "members", "2"},
		{"call_expression", "function", "printf"},
		{"call_expression", "arguments", "2"},
		{"for_statement", "condition", "i < LIMIT"},
		{"return_statement", "value", "v"},
		{"field_declaration", "name", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.field, func(t *testing.T) {
			n, ok := findKind(st.Root(), tt.kind)
			if !ok {
				t.Fatalf("no %s node", tt.kind)
			}
			props := r.Inspect(n)
			fields, ok := Find(props, FieldsSection)
			if !ok {
				t.Fatalf("no %s section in %+v", FieldsSection, props)
			}
			got, ok := Find(fields.Children, tt.field)
			if !ok || got.Value != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got.Value, tt.want)
			}
		})
	}
}

func TestDefaultRegistrySections(t *testing.T) {
	st := parseSample(t)
	fn, ok := findKind(st.Root(), "function_definition")
	if !ok {
		t.Fatal("no function_definition")
	}
	props := DefaultRegistry().Inspect(fn)

	var names []string
	for _, p := range props {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "Node,Position,Children,Fields,Text" {
		t.Errorf("sections = %s", got)
	}

	params, ok := Find(props, "parameters")
	if !ok || len(params.Children) != 2 {
		t.Fatalf("parameters = %+v", params)
	}
	if params.Children[0].Name != "v" || params.Children[1].Name != "factor" {
		t.Errorf("parameter names = %+v", params.Children)
	}
	start, _ := Find(props, "start")
	if start.Value != "6:1" {
		t.Errorf("start = %q, want 6:1", start.Value)
	}
}
