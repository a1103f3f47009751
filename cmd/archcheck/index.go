package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/graph"
)

// indexDir is where "archcheck index" persists the graph, under the root.
const indexDir = ".archcheck/graph"

func indexPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(indexDir))
}

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the project graph and persist it for later queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pg, err := a.buildGraph(ctx)
			if err != nil {
				return err
			}
			path := indexPath(a.flags.Root)
			stats, err := writeIndex(ctx, path, pg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files, %d dependencies (%d unresolved) into %s\n",
				stats.FileCount, stats.DependencyCount, stats.InvalidCount, path)
			return nil
		},
	}
}

// writeIndex replaces the persistent index at path with pg.
func writeIndex(ctx context.Context, path string, pg graph.ProjectGraph) (*graph.GraphStats, error) {
	// Remove old graph to avoid stale data.
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	store, err := openIndex(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := graph.Persist(ctx, store, pg); err != nil {
		return nil, err
	}
	return store.Stats(ctx)
}
