package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/astview/pkg/inspect"
)

// captureStdout redirects the printers to a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		boxes     int
		truncated bool
		cached    bool
		want      string
	}{
		{12, false, false, "12 nodes shown · fresh"},
		{3, true, true, "3 nodes shown · truncated · cached"},
	}
	for _, tt := range tests {
		buf := captureStdout(t)
		printStats(tt.boxes, tt.truncated, tt.cached)
		if got := strings.TrimSpace(buf.String()); got != tt.want {
			t.Errorf("printStats() = %q, want %q", got, tt.want)
		}
	}
}

func TestPrintProperties(t *testing.T) {
	buf := captureStdout(t)
	printProperties([]inspect.Property{
		{Name: "Node", Children: []inspect.Property{
			{Name: "kind", Value: "function_definition"},
			{Name: "children", Children: []inspect.Property{{Name: "compound_statement", Value: "1"}}},
		}},
	}, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Node" {
		t.Errorf("section heading = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  kind") || !strings.HasSuffix(lines[1], "function_definition") {
		t.Errorf("entry = %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "    compound_statement") {
		t.Errorf("nested entry = %q", lines[3])
	}
}
