// Package view manages the lifecycle of an interactive AST view.
//
// A [View] is opened on a [Loader], which produces a parsed source file on
// demand. The view mirrors the syntax tree into a [tree.Node] model, lays it
// out with a [layout.Engine], and answers node activations:
//
//	v, err := view.Open(ctx, view.FileLoader("main.c", ""), view.Options{})
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//
//	if err := v.Activate("0.1"); err != nil { // expand the second top-level node
//	    return err
//	}
//	d := v.Diagram()
//
// # Activation modes
//
// Exactly one activation mode is in effect at a time. In [ModeToggle] an
// activated node is collapsed or expanded and the tree is laid out again. In
// [ModeSelect] the node's syntax node is handed to [Options.OnSelect] and the
// layout is left alone.
//
// # Refresh
//
// [View.Refresh] re-runs the loader and replaces the tree wholesale; the
// expansion state of the old tree is not carried over. When the loader cannot
// produce a source the view switches to an empty "no content" state. When the
// tree cannot be mirrored the previous tree stays in place and the error is
// returned.
//
// A View is not safe for concurrent use. [Manager] serializes access to
// views shared between goroutines and persists their state in a
// [viewstore.Store].
package view
