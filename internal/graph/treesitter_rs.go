package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsWalker extracts use paths and extern crates from Rust sources.
type rsWalker struct{}

func (w *rsWalker) Imports(root *tree_sitter.Node, source []byte) []RawImport {
	var out []RawImport

	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "use_declaration":
			argNode := node.ChildByFieldName("argument")
			if argNode == nil {
				return
			}
			if target := useTarget(argNode.Utf8Text(source)); target != "" {
				out = append(out, RawImport{Target: target, Mechanism: MechanismImport})
			}

		case "extern_crate_declaration":
			if n := node.ChildByFieldName("name"); n != nil {
				out = append(out, RawImport{Target: n.Utf8Text(source), Mechanism: MechanismImport})
			}
		}
	})
	return out
}

// useTarget strips use-lists, wildcards and aliases:
// "crate::model::{User, Repo}" -> "crate::model", "serde::*" -> "serde",
// "std::io as sio" -> "std::io".
func useTarget(text string) string {
	text = strings.TrimPrefix(strings.TrimSpace(text), "::")
	if idx := strings.Index(text, " as "); idx != -1 {
		text = text[:idx]
	}
	if idx := strings.Index(text, "::{"); idx != -1 {
		text = text[:idx]
	}
	text = strings.TrimSuffix(text, "::*")
	if strings.HasPrefix(text, "{") {
		return ""
	}
	return strings.TrimSpace(text)
}
