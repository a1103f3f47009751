package graph

import (
	"context"
	"fmt"
	"io"
)

// Store is the interface for a queryable project-graph index.
// Implementations: KuzuStore (persistent, cgo), MemStore (in-process).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddFile(ctx context.Context, file File) error
	AddDependency(ctx context.Context, from string, dep Dependency) error

	// Read operations. GetFile returns nil when the path is unknown; the
	// returned dependencies are grouped by kind, not in source order.
	GetFile(ctx context.Context, path string) (*File, error)

	// Graph traversal over ValidPath edges.
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this file import?
	DirectionDownstream Direction = "downstream" // which files import this one?
)

// Persist writes every file and dependency of pg into store. Files are
// written before dependencies so edges always find both endpoints.
func Persist(ctx context.Context, store Store, pg ProjectGraph) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	paths := pg.Paths()
	for _, p := range paths {
		if err := store.AddFile(ctx, *pg[p]); err != nil {
			return fmt.Errorf("add file %s: %w", p, err)
		}
	}
	for _, p := range paths {
		for _, dep := range pg[p].Dependencies {
			if dep.Type == DependencyValidPath {
				if _, ok := pg[dep.Name]; !ok {
					// Outside the include set; nothing to point at.
					continue
				}
			}
			if err := store.AddDependency(ctx, p, dep); err != nil {
				return fmt.Errorf("add dependency %s->%s: %w", p, dep.Name, err)
			}
		}
	}
	return nil
}
