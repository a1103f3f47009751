package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/mcptools"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the archcheck MCP tools on stdio, or over HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := archcheck.NewCache(0)
			if err != nil {
				return err
			}
			svc := mcptools.NewService(mcptools.WithCache(cache), mcptools.WithLogger(a.logger))
			defer svc.Close()

			if addr != "" {
				a.logger.Info("serving MCP over HTTP", "addr", addr)
				return mcptools.RunHTTP(cmd.Context(), svc, addr)
			}
			return mcptools.RunStdio(cmd.Context(), svc)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "listen address for streamable HTTP, e.g. :8080")
	return cmd
}
