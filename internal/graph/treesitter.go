package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// importWalker collects raw imports from a parsed tree-sitter AST.
type importWalker interface {
	Imports(root *tree_sitter.Node, source []byte) []RawImport
}

// TreeSitterExtractor implements Extractor using tree-sitter grammars.
// A new tree-sitter parser is created per Extract call, so concurrent calls
// are safe; the grammar handles are read-only.
type TreeSitterExtractor struct {
	languages map[Language]*tree_sitter.Language
	walkers   map[Language]importWalker
}

// NewTreeSitterExtractor creates a TreeSitterExtractor with TypeScript, TSX,
// Go, Python, and Rust grammars registered.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	langs := map[Language]*tree_sitter.Language{
		LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
		LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
	}

	walkers := map[Language]importWalker{
		LangTypeScript: &tsWalker{},
		LangTSX:        &tsWalker{},
		LangGo:         &goWalker{},
		LangPython:     &pyWalker{},
		LangRust:       &rsWalker{},
	}

	return &TreeSitterExtractor{
		languages: langs,
		walkers:   walkers,
	}
}

// Extract parses source and returns its import targets in source order.
func (p *TreeSitterExtractor) Extract(_ context.Context, path string, source []byte, lang Language) ([]RawImport, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	walker, ok := p.walkers[lang]
	if !ok {
		return nil, fmt.Errorf("no import walker for language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	return walker.Imports(tree.RootNode(), source), nil
}

// SupportedLanguages returns the languages this extractor can handle.
func (p *TreeSitterExtractor) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	return langs
}

// walkTree visits every node depth-first in source order.
func walkTree(cursor *tree_sitter.TreeCursor, visit func(node *tree_sitter.Node)) {
	visit(cursor.Node())
	if cursor.GotoFirstChild() {
		walkTree(cursor, visit)
		for cursor.GotoNextSibling() {
			walkTree(cursor, visit)
		}
		cursor.GotoParent()
	}
}

// stringLiteral returns the unquoted text of a string node, and false when
// the node is not a plain literal (template strings with substitutions,
// identifiers, concatenations).
func stringLiteral(node *tree_sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string", "interpreted_string_literal", "raw_string_literal", "string_literal":
	case "template_string":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if c := node.NamedChild(i); c != nil && c.Kind() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}
	text := strings.Trim(node.Utf8Text(source), "\"'`")
	if text == "" {
		return "", false
	}
	return text, true
}

// CountLines counts lines in source. A trailing newline does not start a new
// line, so "a\nb\n" has two lines.
func CountLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
