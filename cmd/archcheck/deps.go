package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/graph"
)

func newDepsCmd(a *app) *cobra.Command {
	var (
		direction string
		depth     int
		useIndex  bool
	)
	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Print the files a file imports (upstream) or that import it (downstream)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := graph.Direction(strings.ToLower(direction))
			if dir != graph.DirectionUpstream && dir != graph.DirectionDownstream {
				return fmt.Errorf("unknown direction %q (want upstream or downstream)", direction)
			}

			root, err := graph.ResolveRoot(a.flags.Root)
			if err != nil {
				return err
			}
			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			path = filepath.Clean(path)

			var store graph.Store
			if useIndex {
				idx := indexPath(root)
				if _, err := os.Stat(idx); err != nil {
					return fmt.Errorf("no index found at %s\nRun 'archcheck index' first", idx)
				}
				store, err = openIndex(idx)
				if err != nil {
					return err
				}
			} else {
				pg, err := a.buildGraph(ctx)
				if err != nil {
					return err
				}
				store = graph.NewMemStore()
				if err := graph.Persist(ctx, store, pg); err != nil {
					return err
				}
			}
			defer store.Close()

			file, err := store.GetFile(ctx, path)
			if err != nil {
				return err
			}
			if file == nil {
				return fmt.Errorf("%s is not part of the graph", args[0])
			}
			chains, err := store.GetDependencies(ctx, path, dir, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, depth %d)\n", displayPath(root, path), dir, depth)
			for _, chain := range chains {
				nodes := make([]string, len(chain.Nodes))
				for i, n := range chain.Nodes {
					nodes[i] = displayPath(root, n)
				}
				fmt.Fprintf(out, "  %s\n", strings.Join(nodes, " -> "))
			}
			if len(chains) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&direction, "direction", string(graph.DirectionUpstream), "upstream or downstream")
	f.IntVar(&depth, "depth", 1, "maximum traversal depth")
	f.BoolVar(&useIndex, "index", false, "query the index written by 'archcheck index' instead of rebuilding")
	return cmd
}

// displayPath returns path relative to root with forward slashes.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
