package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/export"
	"github.com/dusk-indust/archcheck/internal/graph"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the project dependency graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg, err := a.buildGraph(cmd.Context())
			if err != nil {
				return err
			}
			root, err := graph.ResolveRoot(a.flags.Root)
			if err != nil {
				return err
			}
			data, err := export.ExportGraph(root, pg)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if output == "" {
				return export.WriteJSON(cmd.OutOrStdout(), data)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.WriteJSON(f, data); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
