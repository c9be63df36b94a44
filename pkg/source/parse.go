package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaxFileSize is the largest input Parse accepts.
const MaxFileSize = 16 << 20

type parseConfig struct {
	anonymous bool
	path      string
}

// Option configures [Parse] and [ParseFile].
type Option func(*parseConfig)

// WithAnonymous exposes anonymous grammar tokens as nodes.
func WithAnonymous() Option {
	return func(c *parseConfig) { c.anonymous = true }
}

// WithPath records the file path the source was read from.
func WithPath(path string) Option {
	return func(c *parseConfig) { c.path = path }
}

// Tree is a parsed source file.
type Tree struct {
	lang      Language
	path      string
	src       []byte
	hash      uint64
	anonymous bool
	tree      *sitter.Tree
}

// Parse parses src as lang. Input that is empty or only whitespace returns
// [ErrNoContent].
func Parse(ctx context.Context, lang Language, src []byte, opts ...Option) (*Tree, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled: %w", err)
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, ErrNoContent
	}
	if len(src) > MaxFileSize {
		return nil, fmt.Errorf("source is %d bytes, limit is %d", len(src), MaxFileSize)
	}
	grammar, err := lang.grammar()
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return &Tree{
		lang:      lang,
		path:      cfg.path,
		src:       src,
		hash:      Fingerprint(src),
		anonymous: cfg.anonymous,
		tree:      st,
	}, nil
}

// ParseFile reads and parses the file at path. An empty lang is inferred
// from the file extension. A missing file returns [ErrNoContent].
func ParseFile(ctx context.Context, path string, lang Language, opts ...Option) (*Tree, error) {
	if lang == "" {
		var err error
		if lang, err = LanguageFor(path); err != nil {
			return nil, err
		}
	}
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoContent, path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Parse(ctx, lang, src, append(opts, WithPath(path))...)
	if errors.Is(err, ErrNoContent) {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoContent, path)
	}
	return t, err
}

// Root returns the translation unit node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), t: t}
}

// Close releases the parsed tree. Nodes must not be used afterwards.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Language returns the grammar the tree was parsed with.
func (t *Tree) Language() Language { return t.lang }

// Path returns the file path, or "" for in-memory sources.
func (t *Tree) Path() string { return t.path }

// Source returns the parsed bytes. Callers must not modify them.
func (t *Tree) Source() []byte { return t.src }

// Fingerprint returns the content hash of the parsed bytes.
func (t *Tree) Fingerprint() uint64 { return t.hash }

// HasError reports whether the tree contains error or missing nodes.
func (t *Tree) HasError() bool { return t.tree.RootNode().HasError() }

// Stats summarizes a parsed tree.
type Stats struct {
	Nodes  int
	Errors int
	Depth  int
	Lines  int
}

// Stats counts the exposed nodes of the tree.
func (t *Tree) Stats() Stats {
	s := Stats{Lines: bytes.Count(t.src, []byte("\n"))}
	if len(t.src) > 0 && t.src[len(t.src)-1] != '\n' {
		s.Lines++
	}
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		s.Nodes++
		s.Depth = max(s.Depth, depth)
		if n.IsError() || n.IsMissing() {
			s.Errors++
		}
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(t.Root(), 0)
	return s
}
