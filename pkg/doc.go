// Package pkg holds the astview libraries.
//
// # Overview
//
// astview turns C and C++ sources into collapsible node-and-edge diagrams of
// their syntax trees. The packages form a pipeline:
//
//	source file
//	     ↓
//	[source]   parse with tree-sitter into a syntax tree
//	     ↓
//	[tree]     mirror the syntax tree into positioned, collapsible nodes
//	     ↓
//	[layout]   size and place the visible nodes
//	     ↓
//	[diagram]  export boxes and edges
//	     ↓
//	[render]   SVG, DOT, Graphviz, text, JSON, PNG, PDF
//
// [view] keeps one tree open and reacts to activations: in toggle mode a
// click expands or collapses a node, in select mode it reports the node.
// [inspect] describes a node for display, and [pipeline] runs the one-shot
// parse, layout and render stages with caching.
//
// # Quick Start
//
// Render a file:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Path:        "main.c",
//	    ExpandDepth: 2,
//	    Formats:     []string{"svg", "txt"},
//	})
//	os.WriteFile("main.svg", res.Artifacts["svg"], 0644)
//
// Browse a tree:
//
//	v, err := view.Open(ctx, view.FileLoader("main.c", ""), view.Options{})
//	defer v.Close()
//	v.Activate("0.0")            // expand the first top-level declaration
//	d := v.Diagram()
//
// # Infrastructure
//
//   - [cache]: file and Redis caches for diagrams and rendered artifacts
//   - [viewstore]: memory, file and MongoDB storage of open views
//   - [config]: the TOML configuration file
//   - [errors]: error codes shared by the CLI and the HTTP API
//   - [observability]: hooks around parsing, layout, rendering and views
//
// [source]: github.com/matzehuels/astview/pkg/source
// [tree]: github.com/matzehuels/astview/pkg/tree
// [layout]: github.com/matzehuels/astview/pkg/layout
// [diagram]: github.com/matzehuels/astview/pkg/diagram
// [render]: github.com/matzehuels/astview/pkg/render
// [view]: github.com/matzehuels/astview/pkg/view
// [inspect]: github.com/matzehuels/astview/pkg/inspect
// [pipeline]: github.com/matzehuels/astview/pkg/pipeline
// [cache]: github.com/matzehuels/astview/pkg/cache
// [viewstore]: github.com/matzehuels/astview/pkg/viewstore
// [config]: github.com/matzehuels/astview/pkg/config
// [errors]: github.com/matzehuels/astview/pkg/errors
// [observability]: github.com/matzehuels/astview/pkg/observability
package pkg
