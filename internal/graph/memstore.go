package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// storedEdge is one dependency of a stored file.
type storedEdge struct {
	from string
	dep  Dependency
}

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu    sync.RWMutex
	files map[string]File
	edges []storedEdge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files: make(map[string]File),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddFile stores a file keyed by its path. Its dependencies are not copied;
// they arrive through AddDependency.
func (m *MemStore) AddFile(_ context.Context, file File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file.Dependencies = nil
	m.files[file.Path] = file
	return nil
}

// AddDependency appends a dependency edge.
func (m *MemStore) AddDependency(_ context.Context, from string, dep Dependency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, storedEdge{from: from, dep: dep})
	return nil
}

// GetFile returns the file for the given path, or nil if not found.
func (m *MemStore) GetFile(_ context.Context, path string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	for _, e := range m.edges {
		if e.from == path {
			f.Dependencies = append(f.Dependencies, e.dep)
		}
	}
	return &f, nil
}

// GetDependencies performs a BFS over ValidPath edges from path in the given
// direction, up to maxDepth hops. It returns one DependencyChain per
// reachable file.
func (m *MemStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from the start to the current file.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{path: true}
	queue := []bfsEntry{{id: path, path: []string{path}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns files one ValidPath hop away from id, sorted.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	set := make(map[string]bool)
	for _, e := range m.edges {
		if e.dep.Type != DependencyValidPath {
			continue
		}
		switch direction {
		case DirectionUpstream:
			if e.from == id {
				set[e.dep.Name] = true
			}
		case DirectionDownstream:
			if e.dep.Name == id {
				set[e.from] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stats returns counts of files and dependencies by classification.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &GraphStats{FileCount: len(m.files), DependencyCount: len(m.edges)}
	for _, e := range m.edges {
		switch e.dep.Type {
		case DependencyValidPath:
			s.ValidPathCount++
		case DependencyInvalid:
			s.InvalidCount++
		default:
			s.ExternalCount++
		}
	}
	return s, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
