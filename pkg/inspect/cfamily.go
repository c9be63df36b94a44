package inspect

import (
	"strconv"
	"strings"

	"github.com/matzehuels/astview/pkg/source"
)

// maxText is the longest source excerpt shown in a property value.
const maxText = 120

// DefaultRegistry returns a registry with descriptors for common C and C++
// node kinds.
func DefaultRegistry() *Registry[source.Node] {
	r := NewRegistry(source.Node.Kind,
		Section[source.Node]{Name: "Node", Fields: []Field[source.Node]{
			{Name: "kind", Get: source.Node.Label},
			{Name: "language", Get: func(n source.Node) string { return n.Language().String() }},
			{Name: "field", Get: source.Node.Field},
			{Name: "symbol", Get: func(n source.Node) string { return strconv.Itoa(n.Symbol()) }},
			{Name: "flags", Get: flags},
		}},
		Section[source.Node]{Name: "Position", Fields: []Field[source.Node]{
			{Name: "start", Get: func(n source.Node) string { return n.StartPoint().String() }},
			{Name: "end", Get: func(n source.Node) string { return n.EndPoint().String() }},
			{Name: "bytes", Get: func(n source.Node) string {
				return strconv.Itoa(n.StartByte()) + ".." + strconv.Itoa(n.EndByte())
			}},
		}},
		Section[source.Node]{Name: "Children", Fields: []Field[source.Node]{
			{Name: "count", Get: func(n source.Node) string { return strconv.Itoa(n.ChildCount()) }},
			{Name: "named", Get: func(n source.Node) string { return strconv.Itoa(n.NamedChildCount()) }},
			{Name: "kinds", Items: childKinds},
		}},
		Section[source.Node]{Name: "Text", Trailing: true, Fields: []Field[source.Node]{
			{Name: "source", Get: func(n source.Node) string { return Excerpt(n.RawText(), maxText) }},
		}},
	)

	r.Register(
		Descriptor[source.Node]{Kind: "function_definition", Fields: []Field[source.Node]{
			{Name: "name", Get: func(n source.Node) string { return DeclaratorName(n) }},
			{Name: "return type", Get: text("type")},
			{Name: "parameters", Items: parameters},
		}},
		Descriptor[source.Node]{Kind: "declaration", Fields: []Field[source.Node]{
			{Name: "type", Get: text("type")},
			{Name: "name", Get: func(n source.Node) string { return DeclaratorName(n) }},
			{Name: "value", Get: func(n source.Node) string {
				if d, ok := n.ChildByField("declarator"); ok {
					return Excerpt(d.FieldText("value"), maxText)
				}
				return ""
			}},
		}},
		Descriptor[source.Node]{Kind: "parameter_declaration", Fields: []Field[source.Node]{
			{Name: "type", Get: text("type")},
			{Name: "name", Get: func(n source.Node) string { return DeclaratorName(n) }},
		}},
		Descriptor[source.Node]{Kind: "call_expression", Fields: []Field[source.Node]{
			{Name: "function", Get: text("function")},
			{Name: "arguments", Get: func(n source.Node) string {
				if a, ok := n.ChildByField("arguments"); ok {
					return strconv.Itoa(a.NamedChildCount())
				}
				return ""
			}},
		}},
		Descriptor[source.Node]{Kind: "identifier", Fields: []Field[source.Node]{
			{Name: "name", Get: source.Node.RawText},
		}},
		Descriptor[source.Node]{Kind: "number_literal", Fields: []Field[source.Node]{
			{Name: "value", Get: source.Node.RawText},
		}},
		Descriptor[source.Node]{Kind: "binary_expression", Fields: []Field[source.Node]{
			{Name: "operator", Get: text("operator")},
			{Name: "left", Get: text("left")},
			{Name: "right", Get: text("right")},
		}},
		Descriptor[source.Node]{Kind: "assignment_expression", Fields: []Field[source.Node]{
			{Name: "operator", Get: text("operator")},
			{Name: "left", Get: text("left")},
			{Name: "right", Get: text("right")},
		}},
		Descriptor[source.Node]{Kind: "if_statement", Fields: []Field[source.Node]{
			{Name: "condition", Get: text("condition")},
			{Name: "has else", Get: func(n source.Node) string {
				_, ok := n.ChildByField("alternative")
				return strconv.FormatBool(ok)
			}},
		}},
		Descriptor[source.Node]{Kind: "for_statement", Fields: []Field[source.Node]{
			{Name: "initializer", Get: text("initializer")},
			{Name: "condition", Get: text("condition")},
			{Name: "update", Get: text("update")},
		}},
		Descriptor[source.Node]{Kind: "while_statement", Fields: []Field[source.Node]{
			{Name: "condition", Get: text("condition")},
		}},
		Descriptor[source.Node]{Kind: "return_statement", Fields: []Field[source.Node]{
			{Name: "value", Get: func(n source.Node) string {
				s := strings.TrimSpace(strings.TrimPrefix(n.RawText(), "return"))
				return Excerpt(strings.TrimSuffix(s, ";"), maxText)
			}},
		}},
		Descriptor[source.Node]{Kind: "struct_specifier", Fields: []Field[source.Node]{
			{Name: "name", Get: text("name")},
			{Name: "members", Get: memberCount},
		}},
		Descriptor[source.Node]{Kind: "field_declaration", Fields: []Field[source.Node]{
			{Name: "type", Get: text("type")},
			{Name: "name", Get: func(n source.Node) string { return DeclaratorName(n) }},
		}},
		Descriptor[source.Node]{Kind: "preproc_include", Fields: []Field[source.Node]{
			{Name: "path", Get: text("path")},
		}},
		Descriptor[source.Node]{Kind: "preproc_def", Fields: []Field[source.Node]{
			{Name: "name", Get: text("name")},
			{Name: "value", Get: func(n source.Node) string { return strings.TrimSpace(n.FieldText("value")) }},
		}},
		Descriptor[source.Node]{Kind: "namespace_definition", Fields: []Field[source.Node]{
			{Name: "name", Get: text("name")},
		}},
		Descriptor[source.Node]{Kind: "template_declaration", Fields: []Field[source.Node]{
			{Name: "parameters", Get: text("parameters")},
		}},
	)
	r.Alias("identifier", "field_identifier", "type_identifier", "namespace_identifier")
	r.Alias("number_literal", "string_literal", "char_literal", "true", "false", "null", "nullptr")
	r.Alias("while_statement", "do_statement", "switch_statement")
	r.Alias("struct_specifier", "class_specifier", "union_specifier", "enum_specifier")
	r.Alias("preproc_def", "preproc_function_def")
	return r
}

func text(field string) func(source.Node) string {
	return func(n source.Node) string { return Excerpt(n.FieldText(field), maxText) }
}

func flags(n source.Node) string {
	var fs []string
	if n.IsNamed() {
		fs = append(fs, "named")
	}
	if n.IsError() {
		fs = append(fs, "error")
	}
	if n.IsMissing() {
		fs = append(fs, "missing")
	}
	if n.HasError() && !n.IsError() {
		fs = append(fs, "contains-error")
	}
	return strings.Join(fs, ", ")
}

func childKinds(n source.Node) []Property {
	var out []Property
	for i, c := range n.Children() {
		name := strconv.Itoa(i)
		if c.Field() != "" {
			name += " " + c.Field()
		}
		out = append(out, Property{Name: name, Value: c.Label()})
	}
	return out
}

func parameters(n source.Node) []Property {
	d, ok := n.ChildByField("declarator")
	for ok && d.Kind() != "function_declarator" {
		d, ok = d.ChildByField("declarator")
	}
	if !ok {
		return nil
	}
	list, ok := d.ChildByField("parameters")
	if !ok {
		return nil
	}
	var out []Property
	for _, p := range list.Children() {
		if p.Kind() != "parameter_declaration" && p.Kind() != "optional_parameter_declaration" {
			continue
		}
		out = append(out, Property{Name: DeclaratorName(p), Value: p.FieldText("type")})
	}
	return out
}

func memberCount(n source.Node) string {
	body, ok := n.ChildByField("body")
	if !ok {
		return ""
	}
	return strconv.Itoa(body.NamedChildCount())
}

// DeclaratorName follows the chain of declarator fields below n down to the
// declared identifier and returns its text.
func DeclaratorName(n source.Node) string {
	d, ok := n.ChildByField("declarator")
	if !ok {
		return ""
	}
	for {
		next, ok := d.ChildByField("declarator")
		if !ok {
			break
		}
		d = next
	}
	switch d.Kind() {
	case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
		"destructor_name", "operator_name":
		return d.RawText()
	}
	// Reference and some pointer declarators keep the name as a plain child.
	for _, c := range d.Children() {
		if c.Kind() == "identifier" || c.Kind() == "field_identifier" {
			return c.RawText()
		}
	}
	return ""
}

// Excerpt collapses whitespace in s and truncates it to maxLen runes.
func Excerpt(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
