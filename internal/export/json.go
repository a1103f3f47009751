package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/archcheck/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Root       string           `json:"root"`
	ExportedAt string           `json:"exportedAt"`
	Stats      graph.GraphStats `json:"stats"`
	Files      []FileExport     `json:"files"`
	Cycles     []string         `json:"cycles,omitempty"`
}

// FileExport describes one file. Paths are relative to the root.
type FileExport struct {
	Path         string             `json:"path"`
	Language     string             `json:"language,omitempty"`
	LOC          int                `json:"loc"`
	Size         int64              `json:"size"`
	Dependencies []DependencyExport `json:"dependencies,omitempty"`
}

// DependencyExport describes one resolved import.
type DependencyExport struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ResolvedVia string `json:"resolvedVia"`
}

// ExportGraph builds a GraphExport from a project graph. Files are sorted by
// path; dependencies keep source order.
func ExportGraph(root string, pg graph.ProjectGraph) (*GraphExport, error) {
	report, err := graph.FindCycles(pg)
	if err != nil {
		return nil, fmt.Errorf("detect cycles: %w", err)
	}

	export := &GraphExport{
		Root:       root,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      pg.Stats(),
		Files:      make([]FileExport, 0, len(pg)),
	}

	for _, path := range pg.Paths() {
		f := pg[path]
		fe := FileExport{
			Path:     relPath(root, path),
			Language: string(f.Language),
			LOC:      f.LOC,
			Size:     f.Size,
		}
		for _, d := range f.Dependencies {
			name := d.Name
			if d.Type == graph.DependencyValidPath {
				name = relPath(root, name)
			}
			fe.Dependencies = append(fe.Dependencies, DependencyExport{
				Name:        name,
				Type:        string(d.Type),
				ResolvedVia: string(d.ResolvedVia),
			})
		}
		export.Files = append(export.Files, fe)
	}

	for _, c := range report.Cycles {
		rel := make(graph.Cycle, len(c))
		for i, p := range c {
			rel[i] = relPath(root, p)
		}
		export.Cycles = append(export.Cycles, rel.String())
	}
	return export, nil
}

// WriteJSON writes export as indented JSON.
func WriteJSON(w io.Writer, export *GraphExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// relPath returns path relative to root with forward slashes, or path
// itself when it lies outside root.
func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(path)
	}
	return rel
}
