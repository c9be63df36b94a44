// Package source acquires C and C++ syntax trees with tree-sitter.
//
// A [Tree] owns the parsed tree and the bytes it was parsed from. Its
// [Node] values satisfy the input contract of the tree package (Children,
// Label and RawText), so a parsed file can be mirrored directly:
//
//	t, err := source.ParseFile(ctx, "main.c", "")
//	if err != nil {
//		return err
//	}
//	defer t.Close()
//	root, err := tree.Build(t.Root(), source.Mirror)
//
// By default only named grammar nodes are exposed; punctuation and keyword
// tokens are skipped. [WithAnonymous] keeps them.
//
// Nodes stay valid until their [Tree] is closed. Empty input and missing
// files are reported as [ErrNoContent], which hosts render as an empty
// "no content" view rather than as a failure.
package source
