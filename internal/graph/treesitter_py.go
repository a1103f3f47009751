package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyWalker extracts imports from Python sources. importlib.import_module("x")
// and __import__("x") calls are tagged MechanismRequire.
type pyWalker struct{}

func (w *pyWalker) Imports(root *tree_sitter.Node, source []byte) []RawImport {
	var out []RawImport

	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "import_statement":
			for _, name := range w.importNames(node, source) {
				out = append(out, RawImport{Target: name, Mechanism: MechanismImport})
			}

		case "import_from_statement":
			for _, name := range w.fromImportNames(node, source) {
				out = append(out, RawImport{Target: name, Mechanism: MechanismImport})
			}

		case "call":
			if target, ok := w.callSource(node, source); ok {
				out = append(out, RawImport{Target: target, Mechanism: MechanismRequire})
			}
		}
	})
	return out
}

// importNames handles "import a.b, c as d".
func (w *pyWalker) importNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			names = append(names, child.Utf8Text(source))
		case "aliased_import":
			if n := child.ChildByFieldName("name"); n != nil {
				names = append(names, n.Utf8Text(source))
			}
		}
	}
	return names
}

// fromImportNames handles "from x import y". A bare relative module
// ("from . import models") yields one target per imported name, since each
// name is a sibling module.
func (w *pyWalker) fromImportNames(node *tree_sitter.Node, source []byte) []string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	module := moduleNode.Utf8Text(source)
	if module == "" {
		return nil
	}
	if strings.Trim(module, ".") != "" {
		return []string{module}
	}

	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			names = append(names, module+child.Utf8Text(source))
		case "aliased_import":
			if n := child.ChildByFieldName("name"); n != nil {
				names = append(names, module+n.Utf8Text(source))
			}
		}
	}
	if len(names) == 0 {
		names = append(names, module)
	}
	return names
}

func (w *pyWalker) callSource(node *tree_sitter.Node, source []byte) (string, bool) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return "", false
	}
	switch fnNode.Utf8Text(source) {
	case "__import__", "importlib.import_module", "import_module":
	default:
		return "", false
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return "", false
	}
	return stringLiteral(args.NamedChild(0), source)
}
