package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsWalker extracts imports from TypeScript and JavaScript sources.
//
// Static forms (import ... from, export ... from, import x = require())
// are tagged MechanismImport. Call forms require("x") and import("x") with a
// single literal argument are tagged MechanismRequire.
type tsWalker struct{}

func (w *tsWalker) Imports(root *tree_sitter.Node, source []byte) []RawImport {
	var out []RawImport

	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "import_statement", "export_statement":
			if target, ok := w.statementSource(node, source); ok {
				out = append(out, RawImport{Target: target, Mechanism: MechanismImport})
			}

		case "import_require_clause":
			if target, ok := stringLiteral(node.ChildByFieldName("source"), source); ok {
				out = append(out, RawImport{Target: target, Mechanism: MechanismImport})
			}

		case "call_expression":
			if target, ok := w.callSource(node, source); ok {
				out = append(out, RawImport{Target: target, Mechanism: MechanismRequire})
			}
		}
	})
	return out
}

// statementSource returns the module specifier of an import or re-export.
// export statements without a "from" clause have no source and are skipped.
func (w *tsWalker) statementSource(node *tree_sitter.Node, source []byte) (string, bool) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil && node.Kind() == "import_statement" {
		// Fall back: look for a string child (side-effect imports).
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	return stringLiteral(sourceNode, source)
}

// callSource recognizes require("x") and import("x").
func (w *tsWalker) callSource(node *tree_sitter.Node, source []byte) (string, bool) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return "", false
	}
	switch fnNode.Kind() {
	case "import":
	case "identifier":
		if fnNode.Utf8Text(source) != "require" {
			return "", false
		}
	default:
		return "", false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return "", false
	}
	return stringLiteral(args.NamedChild(0), source)
}
