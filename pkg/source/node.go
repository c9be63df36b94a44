package source

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Point is a zero-based row and column position.
type Point struct {
	Row    int `json:"row" bson:"row"`
	Column int `json:"column" bson:"column"`
}

func (p Point) String() string { return fmt.Sprintf("%d:%d", p.Row+1, p.Column+1) }

// Node is one syntax node of a [Tree].
type Node struct {
	n     *sitter.Node
	t     *Tree
	field string
}

// IsZero reports whether the node is the zero value.
func (n Node) IsZero() bool { return n.n == nil }

// Children returns the exposed child nodes in source order.
func (n Node) Children() []Node {
	count := int(n.n.ChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.n.Child(i)
		if c == nil || (!n.t.anonymous && !c.IsNamed()) {
			continue
		}
		out = append(out, Node{n: c, t: n.t, field: n.n.FieldNameForChild(i)})
	}
	return out
}

// Label returns the grammar kind, prefixed with MISSING for nodes the
// parser inserted during error recovery.
func (n Node) Label() string {
	if n.n.IsMissing() {
		return "MISSING " + n.n.Type()
	}
	return n.n.Type()
}

// RawText returns the source text the node spans.
func (n Node) RawText() string { return n.n.Content(n.t.src) }

// Kind returns the grammar kind, e.g. "function_definition".
func (n Node) Kind() string { return n.n.Type() }

// Symbol returns the grammar's numeric symbol for the node kind.
func (n Node) Symbol() int { return int(n.n.Symbol()) }

// Field returns the grammar field name under which the node appears in its
// parent, or "".
func (n Node) Field() string { return n.field }

// IsNamed reports whether the node is a named grammar rule.
func (n Node) IsNamed() bool { return n.n.IsNamed() }

// IsError reports whether the node is an ERROR node.
func (n Node) IsError() bool { return n.n.IsError() }

// IsMissing reports whether the parser inserted the node.
func (n Node) IsMissing() bool { return n.n.IsMissing() }

// HasError reports whether the node's subtree contains syntax errors.
func (n Node) HasError() bool { return n.n.HasError() }

// StartByte returns the offset of the node's first byte.
func (n Node) StartByte() int { return int(n.n.StartByte()) }

// EndByte returns the offset just past the node's last byte.
func (n Node) EndByte() int { return int(n.n.EndByte()) }

// StartPoint returns the node's start position.
func (n Node) StartPoint() Point { return point(n.n.StartPoint()) }

// EndPoint returns the node's end position.
func (n Node) EndPoint() Point { return point(n.n.EndPoint()) }

// ChildCount returns the number of children including anonymous tokens.
func (n Node) ChildCount() int { return int(n.n.ChildCount()) }

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() int { return int(n.n.NamedChildCount()) }

// ChildByField returns the child stored under a grammar field name.
func (n Node) ChildByField(name string) (Node, bool) {
	c := n.n.ChildByFieldName(name)
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, t: n.t, field: name}, true
}

// FieldText returns the source text of the child under a grammar field
// name, or "".
func (n Node) FieldText(name string) string {
	if c, ok := n.ChildByField(name); ok {
		return c.RawText()
	}
	return ""
}

// Language returns the grammar of the node's tree.
func (n Node) Language() Language { return n.t.lang }

func (n Node) String() string {
	return fmt.Sprintf("%s [%s-%s]", n.Label(), n.StartPoint(), n.EndPoint())
}

func point(p sitter.Point) Point {
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

// Mirror maps a node onto itself and never fails.
func Mirror(n Node) (Node, error) { return n, nil }

// StrictMirror maps a node onto itself and fails on error and missing
// nodes.
func StrictMirror(n Node) (Node, error) {
	if n.IsError() || n.IsMissing() {
		return Node{}, fmt.Errorf("%w: %s at %s", ErrSyntax, n.Label(), n.StartPoint())
	}
	return n, nil
}
