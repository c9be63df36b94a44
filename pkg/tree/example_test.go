package tree_test

import (
	"fmt"

	"github.com/matzehuels/astview/pkg/tree"
)

func ExampleAddChild() {
	root := tree.New("unit", "translation_unit")
	fn := tree.New("fn", "function_definition")
	tree.AddChild(root, fn)
	tree.AddChild(fn, tree.New("body", "compound_statement"))

	tree.Visit(root, func(n *tree.Node[string]) {
		fmt.Println(n.ID(), n.Label)
	})
	// Output:
	// 0 translation_unit
	// 0.0 function_definition
	// 0.0.0 compound_statement
}
