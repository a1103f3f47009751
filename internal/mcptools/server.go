package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the archcheck tools registered.
func NewMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "archcheck",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Walk a project, resolve every import and index the file dependency graph. Returns graph statistics, unresolved imports and import cycles.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the last built graph upstream (what a file imports) or downstream (what imports it). Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_rules",
		Description: "Run every rule of an archcheck.yml rule file against the project and report which rules pass and why the others fail.",
	}, svc.CheckRules)

	return server
}

// RunStdio serves the MCP tools on stdio, blocking until stdin is closed or
// the context is cancelled.
func RunStdio(ctx context.Context, svc *Service) error {
	return NewMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP on addr.
func RunHTTP(ctx context.Context, svc *Service, addr string) error {
	server := NewMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
