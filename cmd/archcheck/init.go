package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/config"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// archcheckMCPEntry is the MCP server configuration for the archcheck binary.
var archcheckMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "archcheck",
  "args": ["serve-mcp"]
}`)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter archcheck.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), a.flags.Root, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	return cmd
}

// runInit writes the starter rule file and MCP configuration into the
// target project directory.
func runInit(out io.Writer, projectRoot string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	cfgPath := filepath.Join(abs, config.FileNames[0])
	if err := writeStarterConfig(out, abs, cfgPath, force); err != nil {
		return err
	}
	if err := mergeMCPConfig(out, filepath.Join(abs, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nSetup complete. Run 'archcheck check' to evaluate the rules.")
	return nil
}

func writeStarterConfig(out io.Writer, root, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(root, path))
			return nil
		}
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("marshaling starter config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created %s\n", dotRelative(root, path))
	return nil
}

// mergeMCPConfig creates or merges the archcheck entry into .mcp.json.
func mergeMCPConfig(out io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["archcheck"]; exists && !force {
		fmt.Fprintf(out, "  skipped .mcp.json archcheck entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["archcheck"] = archcheckMCPEntry

	encoded, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(out, "  %s .mcp.json with archcheck MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
