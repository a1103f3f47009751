package graph

import (
	"path/filepath"
	"sort"
)

// --- Enums ---

// DependencyType classifies what an import target resolved to.
type DependencyType string

const (
	DependencyBuiltin    DependencyType = "builtin"
	DependencyProduction DependencyType = "production"
	DependencyDev        DependencyType = "dev"
	DependencyValidPath  DependencyType = "valid-path"
	DependencyInvalid    DependencyType = "invalid"
)

// Mechanism records how a dependency was declared in source.
type Mechanism string

const (
	MechanismImport  Mechanism = "import"
	MechanismRequire Mechanism = "require"
)

// Language identifies a programming language for extraction and resolution.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// extToLanguage maps file extensions to the grammar used to parse them.
// Plain JavaScript goes through the TSX grammar, which accepts JSX.
var extToLanguage = map[string]Language{
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".js":  LangTSX,
	".jsx": LangTSX,
	".mjs": LangTSX,
	".cjs": LangTSX,
	".go":  LangGo,
	".py":  LangPython,
	".rs":  LangRust,
}

// LanguageForPath returns the language for a file path and whether the
// extension is known.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[filepath.Ext(path)]
	return lang, ok
}

// --- Models ---

// RawImport is an import target as written in source, before resolution.
type RawImport struct {
	Target    string    `json:"target"`
	Mechanism Mechanism `json:"mechanism"`
}

// Dependency is a resolved import. For DependencyValidPath, Name is the
// absolute path of the target file and equals that file's graph key.
// For DependencyInvalid, Name is the unresolved target verbatim.
type Dependency struct {
	Name        string         `json:"name"`
	Type        DependencyType `json:"type"`
	ResolvedVia Mechanism      `json:"resolvedVia"`
}

// File is one source file in the project graph. Dependencies keep source
// order and are not deduplicated.
type File struct {
	Name         string       `json:"name"`
	Path         string       `json:"path"`
	Language     Language     `json:"language,omitempty"`
	Dependencies []Dependency `json:"dependencies"`
	LOC          int          `json:"loc"`
	Size         int64        `json:"size"`
}

// ProjectGraph maps absolute file paths to their File records.
type ProjectGraph map[string]*File

// Paths returns the graph keys in sorted order.
func (g ProjectGraph) Paths() []string {
	out := make([]string, 0, len(g))
	for p := range g {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// TotalSize returns the byte size of every file in the graph.
func (g ProjectGraph) TotalSize() int64 {
	var total int64
	for _, f := range g {
		total += f.Size
	}
	return total
}

// Importers returns, for every file, the sorted paths of files that reference
// it as a ValidPath dependency.
func (g ProjectGraph) Importers() map[string][]string {
	idx := make(map[string][]string)
	for _, path := range g.Paths() {
		seen := make(map[string]bool)
		for _, dep := range g[path].Dependencies {
			if dep.Type != DependencyValidPath || seen[dep.Name] {
				continue
			}
			seen[dep.Name] = true
			idx[dep.Name] = append(idx[dep.Name], path)
		}
	}
	return idx
}

// GraphStats summarizes a project graph.
type GraphStats struct {
	FileCount       int `json:"fileCount"`
	DependencyCount int `json:"dependencyCount"`
	ValidPathCount  int `json:"validPathCount"`
	ExternalCount   int `json:"externalCount"`
	InvalidCount    int `json:"invalidCount"`
}

// Stats counts files and dependencies by classification.
func (g ProjectGraph) Stats() GraphStats {
	var s GraphStats
	s.FileCount = len(g)
	for _, f := range g {
		for _, d := range f.Dependencies {
			s.DependencyCount++
			switch d.Type {
			case DependencyValidPath:
				s.ValidPathCount++
			case DependencyInvalid:
				s.InvalidCount++
			default:
				s.ExternalCount++
			}
		}
	}
	return s
}

// DependencyChain is an ordered sequence of file paths forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}
