// Package inspect describes syntax nodes as labeled property trees.
//
// Properties come from explicit descriptor tables rather than reflection: a
// [Registry] holds default sections shown for every node and one
// [Descriptor] per node kind listing that kind's fields and how to read
// them.
package inspect

import (
	"fmt"
	"io"
	"strings"
)

// Property is one labeled entry of an inspection, optionally with nested
// entries.
type Property struct {
	Name     string     `json:"name" bson:"name"`
	Value    string     `json:"value,omitempty" bson:"value,omitempty"`
	Children []Property `json:"children,omitempty" bson:"children,omitempty"`
}

// Field reads one value from a node. Fields whose Get returns "" and whose
// Items returns nothing are omitted.
type Field[N any] struct {
	Name  string
	Get   func(N) string
	Items func(N) []Property
}

// Section is a named group of fields.
type Section[N any] struct {
	Name   string
	Fields []Field[N]
	// Trailing sections are shown after the kind-specific fields.
	Trailing bool
}

// Descriptor lists the fields of one node kind.
type Descriptor[N any] struct {
	Kind   string
	Fields []Field[N]
}

// FieldsSection is the section name under which kind-specific fields appear.
const FieldsSection = "Fields"

// Registry maps node kinds to descriptors.
type Registry[N any] struct {
	kind     func(N) string
	sections []Section[N]
	kinds    map[string]Descriptor[N]
}

// NewRegistry returns a registry that classifies nodes with kind and shows
// sections for every node.
func NewRegistry[N any](kind func(N) string, sections ...Section[N]) *Registry[N] {
	return &Registry[N]{kind: kind, sections: sections, kinds: make(map[string]Descriptor[N])}
}

// Register adds descriptors, replacing any with the same kind.
func (r *Registry[N]) Register(ds ...Descriptor[N]) {
	for _, d := range ds {
		r.kinds[d.Kind] = d
	}
}

// Alias registers the descriptor of kind under additional kinds.
func (r *Registry[N]) Alias(kind string, aliases ...string) {
	d, ok := r.kinds[kind]
	if !ok {
		panic(fmt.Sprintf("inspect: alias of unregistered kind %q", kind))
	}
	for _, a := range aliases {
		r.kinds[a] = Descriptor[N]{Kind: a, Fields: d.Fields}
	}
}

// Lookup returns the descriptor for kind.
func (r *Registry[N]) Lookup(kind string) (Descriptor[N], bool) {
	d, ok := r.kinds[kind]
	return d, ok
}

// Kinds returns the number of registered kinds.
func (r *Registry[N]) Kinds() int { return len(r.kinds) }

// Inspect returns the sections describing n.
func (r *Registry[N]) Inspect(n N) []Property {
	var out []Property
	for _, s := range r.sections {
		if !s.Trailing {
			out = appendSection(out, s.Name, s.Fields, n)
		}
	}
	if d, ok := r.kinds[r.kind(n)]; ok {
		out = appendSection(out, FieldsSection, d.Fields, n)
	}
	for _, s := range r.sections {
		if s.Trailing {
			out = appendSection(out, s.Name, s.Fields, n)
		}
	}
	return out
}

func appendSection[N any](out []Property, name string, fields []Field[N], n N) []Property {
	sec := Property{Name: name}
	for _, f := range fields {
		p := Property{Name: f.Name}
		if f.Get != nil {
			p.Value = f.Get(n)
		}
		if f.Items != nil {
			p.Children = f.Items(n)
		}
		if p.Value == "" && len(p.Children) == 0 {
			continue
		}
		sec.Children = append(sec.Children, p)
	}
	if len(sec.Children) == 0 {
		return out
	}
	return append(out, sec)
}

// Find returns the first property named name at any depth.
func Find(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
		if c, ok := Find(p.Children, name); ok {
			return c, true
		}
	}
	return Property{}, false
}

// Fprint writes props as an indented outline.
func Fprint(w io.Writer, props []Property) error {
	return fprint(w, props, 0)
}

func fprint(w io.Writer, props []Property, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, p := range props {
		var err error
		if p.Value != "" {
			_, err = fmt.Fprintf(w, "%s%s: %s\n", indent, p.Name, p.Value)
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", indent, p.Name)
		}
		if err != nil {
			return err
		}
		if err := fprint(w, p.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}
