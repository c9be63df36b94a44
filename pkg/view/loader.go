package view

import (
	"context"

	"github.com/matzehuels/astview/pkg/source"
)

// Loader acquires a parsed source file. A Loader that cannot produce a
// source (missing file, empty input, unsupported language) puts the view in
// its no-content state.
type Loader interface {
	Load(ctx context.Context) (*source.Tree, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context) (*source.Tree, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*source.Tree, error) { return f(ctx) }

// FileLoader parses the file at path on every load. An empty lang is
// inferred from the file extension.
func FileLoader(path string, lang source.Language, opts ...source.Option) Loader {
	return LoaderFunc(func(ctx context.Context) (*source.Tree, error) {
		return source.ParseFile(ctx, path, lang, opts...)
	})
}

// BytesLoader parses a fixed in-memory buffer on every load.
func BytesLoader(lang source.Language, src []byte, opts ...source.Option) Loader {
	return LoaderFunc(func(ctx context.Context) (*source.Tree, error) {
		return source.Parse(ctx, lang, src, opts...)
	})
}
