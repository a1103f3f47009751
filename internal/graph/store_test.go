package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleGraph is a -> b -> c, a -> c, d -> b, with a few external deps.
func sampleGraph() ProjectGraph {
	return ProjectGraph{
		"/p/a.ts": {Name: "a.ts", Path: "/p/a.ts", Language: LangTypeScript, LOC: 10, Size: 100, Dependencies: []Dependency{
			{Name: "/p/b.ts", Type: DependencyValidPath, ResolvedVia: MechanismImport},
			{Name: "/p/c.ts", Type: DependencyValidPath, ResolvedVia: MechanismRequire},
			{Name: "express", Type: DependencyProduction, ResolvedVia: MechanismImport},
		}},
		"/p/b.ts": {Name: "b.ts", Path: "/p/b.ts", Language: LangTypeScript, LOC: 5, Size: 50, Dependencies: []Dependency{
			{Name: "/p/c.ts", Type: DependencyValidPath, ResolvedVia: MechanismImport},
			{Name: "./gone", Type: DependencyInvalid, ResolvedVia: MechanismImport},
		}},
		"/p/c.ts": {Name: "c.ts", Path: "/p/c.ts", Language: LangTypeScript, LOC: 1, Size: 10, Dependencies: []Dependency{
			{Name: "fs", Type: DependencyBuiltin, ResolvedVia: MechanismImport},
			{Name: "/elsewhere/x.ts", Type: DependencyValidPath, ResolvedVia: MechanismImport},
		}},
		"/p/d.ts": {Name: "d.ts", Path: "/p/d.ts", Language: LangTypeScript, LOC: 2, Size: 20, Dependencies: []Dependency{
			{Name: "/p/b.ts", Type: DependencyValidPath, ResolvedVia: MechanismImport},
		}},
	}
}

// runStoreSuite exercises a Store implementation against sampleGraph.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	setup := func(t *testing.T) Store {
		t.Helper()
		s := newStore(t)
		require.NoError(t, Persist(ctx, s, sampleGraph()))
		return s
	}

	t.Run("GetFile", func(t *testing.T) {
		s := setup(t)
		got, err := s.GetFile(ctx, "/p/a.ts")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "a.ts", got.Name)
		assert.Equal(t, LangTypeScript, got.Language)
		assert.Equal(t, 10, got.LOC)
		assert.Equal(t, int64(100), got.Size)
		assert.ElementsMatch(t, sampleGraph()["/p/a.ts"].Dependencies, got.Dependencies)
	})

	t.Run("GetFile not found", func(t *testing.T) {
		s := setup(t)
		got, err := s.GetFile(ctx, "/p/nope.ts")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("upstream", func(t *testing.T) {
		s := setup(t)
		chains, err := s.GetDependencies(ctx, "/p/a.ts", DirectionUpstream, 5)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"/p/a.ts", "/p/b.ts"}, Depth: 1},
			{Nodes: []string{"/p/a.ts", "/p/c.ts"}, Depth: 1},
		}, chains)
	})

	t.Run("downstream", func(t *testing.T) {
		s := setup(t)
		chains, err := s.GetDependencies(ctx, "/p/c.ts", DirectionDownstream, 5)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"/p/c.ts", "/p/a.ts"}, Depth: 1},
			{Nodes: []string{"/p/c.ts", "/p/b.ts"}, Depth: 1},
			{Nodes: []string{"/p/c.ts", "/p/b.ts", "/p/d.ts"}, Depth: 2},
		}, chains)
	})

	t.Run("depth limit", func(t *testing.T) {
		s := setup(t)
		chains, err := s.GetDependencies(ctx, "/p/d.ts", DirectionUpstream, 1)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"/p/d.ts", "/p/b.ts"}, Depth: 1},
		}, chains)

		none, err := s.GetDependencies(ctx, "/p/d.ts", DirectionUpstream, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Stats", func(t *testing.T) {
		s := setup(t)
		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		// The edge to /elsewhere/x.ts is outside the graph and not persisted.
		assert.Equal(t, &GraphStats{
			FileCount:       4,
			DependencyCount: 7,
			ValidPathCount:  4,
			ExternalCount:   2,
			InvalidCount:    1,
		}, stats)
	})
}

func TestMemStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s := NewMemStore()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
