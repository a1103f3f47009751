package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goWalker extracts import paths from Go sources.
type goWalker struct{}

func (w *goWalker) Imports(root *tree_sitter.Node, source []byte) []RawImport {
	var out []RawImport

	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		if node.Kind() != "import_spec" {
			return
		}
		pathNode := node.ChildByFieldName("path")
		if pathNode == nil {
			// Fall back to finding a string literal child.
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child != nil && (child.Kind() == "interpreted_string_literal" || child.Kind() == "raw_string_literal") {
					pathNode = child
					break
				}
			}
		}
		if target, ok := stringLiteral(pathNode, source); ok {
			out = append(out, RawImport{Target: target, Mechanism: MechanismImport})
		}
	})
	return out
}
