package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/export"
	"github.com/dusk-indust/archcheck/internal/graph"
)

func newDiagramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram",
		Short: "Print the project dependency graph as a Mermaid diagram",
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
			mermaid, err := export.GenerateMermaid(root, pg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), mermaid)
			return nil
		},
	}
}
