package graph

import "context"

// Extractor pulls raw import targets out of a single source file.
// Implementations: TreeSitterExtractor (production), stub extractors in tests.
type Extractor interface {
	// Extract returns import targets in source order. Computed targets
	// (non-literal require/import arguments) are skipped, not reported.
	Extract(ctx context.Context, path string, source []byte, lang Language) ([]RawImport, error)

	// SupportedLanguages returns the languages this extractor can handle.
	SupportedLanguages() []Language
}
