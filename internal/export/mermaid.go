package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/archcheck/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a project graph.
// Files are grouped into one subgraph per directory; ValidPath dependencies
// between graph members become arrows, and files on an import cycle get the
// "cycle" class.
func GenerateMermaid(root string, pg graph.ProjectGraph) (string, error) {
	report, err := graph.FindCycles(pg)
	if err != nil {
		return "", fmt.Errorf("detect cycles: %w", err)
	}

	paths := pg.Paths()

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string, len(paths))
	for i, p := range paths {
		nodeIDs[p] = fmt.Sprintf("N%d", i)
	}

	byDir := make(map[string][]string)
	for _, p := range paths {
		dir := path.Dir(relPath(root, p))
		byDir[dir] = append(byDir[dir], p)
	}
	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, dir := range dirs {
		sb.WriteString(fmt.Sprintf("  subgraph D%d[\"%s\"]\n", i, escapeLabel(dir)))
		for _, p := range byDir[dir] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[p], escapeLabel(pg[p].Name)))
		}
		sb.WriteString("  end\n")
	}

	for _, p := range paths {
		seen := make(map[string]bool)
		for _, d := range pg[p].Dependencies {
			if d.Type != graph.DependencyValidPath || seen[d.Name] {
				continue
			}
			tgt, ok := nodeIDs[d.Name]
			if !ok {
				continue
			}
			seen[d.Name] = true
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", nodeIDs[p], tgt))
		}
	}

	var cyclic []string
	for _, p := range paths {
		if report.Members[p] {
			cyclic = append(cyclic, nodeIDs[p])
		}
	}
	if len(cyclic) > 0 {
		sb.WriteString("  classDef cycle stroke:#d33,stroke-width:2px\n")
		sb.WriteString(fmt.Sprintf("  class %s cycle\n", strings.Join(cyclic, ",")))
	}

	return sb.String(), nil
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
