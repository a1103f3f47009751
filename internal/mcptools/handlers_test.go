package mcptools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archcheck/internal/graph"
)

type closeTracker struct {
	*graph.MemStore
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestService_GetDependenciesBeforeBuild(t *testing.T) {
	svc := NewService()
	_, _, err := svc.GetDependencies(context.Background(), nil, GetDependenciesInput{Path: "a.ts"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoGraph))
}

func TestService_Close(t *testing.T) {
	store := &closeTracker{MemStore: graph.NewMemStore()}
	svc := NewService(WithStoreFactory(func() (graph.Store, error) { return store, nil }))

	require.NoError(t, svc.Close(), "closing without a graph is a no-op")

	svc.store, svc.root = store, "/p"
	require.NoError(t, svc.Close())
	assert.True(t, store.closed)
	assert.Nil(t, svc.store)
}

func TestRelTo(t *testing.T) {
	assert.Equal(t, "src/a.ts", relTo("/p", "/p/src/a.ts"))
	assert.Equal(t, "/q/a.ts", relTo("/p", "/q/a.ts"))
}

func TestProjectRoot(t *testing.T) {
	dir := t.TempDir()

	got, err := projectRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = projectRoot("")
	assert.EqualError(t, err, "root is required")
}
