package graph

import (
	"errors"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"
)

// Cycle is a closed import path: the first file is repeated at the end.
type Cycle []string

// String renders the cycle as "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// CycleReport is the result of cycle detection over a project graph.
type CycleReport struct {
	// Cycles holds one representative cycle per strongly connected
	// component and one per self-import, sorted.
	Cycles []Cycle

	// Members is every file that lies on some cycle.
	Members map[string]bool
}

// FindCycles detects import cycles over ValidPath edges between graph members.
func FindCycles(pg ProjectGraph) (*CycleReport, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	adj := make(map[string][]string, len(pg))
	report := &CycleReport{Members: make(map[string]bool)}
	var cycles []Cycle

	paths := pg.Paths()
	for _, p := range paths {
		if err := g.AddVertex(p); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, p := range paths {
		seen := make(map[string]bool)
		for _, dep := range pg[p].Dependencies {
			if dep.Type != DependencyValidPath || seen[dep.Name] {
				continue
			}
			if _, ok := pg[dep.Name]; !ok {
				continue
			}
			seen[dep.Name] = true
			if dep.Name == p {
				cycles = append(cycles, Cycle{p, p})
				report.Members[p] = true
				continue
			}
			adj[p] = append(adj[p], dep.Name)
			if err := g.AddEdge(p, dep.Name); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
		sort.Strings(adj[p])
	}

	components, err := graphlib.StronglyConnectedComponents(g)
	if err != nil {
		return nil, err
	}
	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		sort.Strings(comp)
		for _, p := range comp {
			report.Members[p] = true
		}
		if c := cycleThrough(comp[0], comp, adj); c != nil {
			cycles = append(cycles, c)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].String() < cycles[j].String()
	})
	report.Cycles = cycles
	return report, nil
}

// cycleThrough finds the shortest path from start back to itself using only
// edges inside the component. Every file of a strongly connected component
// lies on some cycle, but the returned path need not visit them all.
func cycleThrough(start string, component []string, adj map[string][]string) Cycle {
	inComp := make(map[string]bool, len(component))
	for _, c := range component {
		inComp[c] = true
	}

	prev := map[string]string{}
	queue := []string{start}
	visited := map[string]bool{start: true}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if !inComp[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for cur := node; cur != start; cur = prev[cur] {
					path = append(path, cur)
				}
				// path is start, then the predecessors back to start; reverse
				// the tail to get forward order.
				for i, j := 1, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return append(Cycle(path), start)
			}
			if !visited[next] {
				visited[next] = true
				prev[next] = node
				queue = append(queue, next)
			}
		}
	}
	return nil
}
