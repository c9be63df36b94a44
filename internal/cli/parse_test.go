package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
)

const sampleC = "int add(int a, int b) {\n\treturn a + b;\n}\n"

func buildSample(t *testing.T, leafText int) *tree.Node[source.Node] {
	t.Helper()
	st, err := source.Parse(context.Background(), source.C, []byte(sampleC))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	opts := pipeline.Options{Path: "sample.c", LeafText: leafText}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	root, err := pipeline.BuildTree(st, opts)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestWriteOutline(t *testing.T) {
	root := buildSample(t, 0)

	var buf bytes.Buffer
	if err := writeOutline(&buf, root, 0); err != nil {
		t.Fatalf("writeOutline() error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != root.Size() {
		t.Fatalf("got %d lines for %d nodes", len(lines), root.Size())
	}
	if !strings.HasPrefix(lines[0], "translation_unit [1:1-") || !strings.HasSuffix(lines[0], "  0") {
		t.Errorf("root line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  function_definition [1:1-3:2]  0.0") {
		t.Errorf("function line = %q", lines[1])
	}
	for _, want := range []string{"declarator: function_declarator", "body: compound_statement", "return_statement"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("outline lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestWriteOutlineMaxDepth(t *testing.T) {
	root := buildSample(t, 0)

	var buf bytes.Buffer
	if err := writeOutline(&buf, root, 1); err != nil {
		t.Fatal(err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != 2 {
		t.Errorf("depth-1 outline has %d lines, want 2:\n%s", len(got), buf.String())
	}
}

func TestOutlineLineSynthetic(t *testing.T) {
	root := buildSample(t, 8)

	var synthetic *tree.Node[source.Node]
	tree.Visit(root, func(n *tree.Node[source.Node]) {
		if synthetic == nil && n.Synthetic {
			synthetic = n
		}
	})
	if synthetic == nil {
		t.Fatal("leaf text did not add a synthetic node")
	}
	line := outlineLine(synthetic)
	if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, "  "+synthetic.ID()) {
		t.Errorf("outlineLine() = %q", line)
	}
}
