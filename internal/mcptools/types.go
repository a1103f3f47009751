package mcptools

import "github.com/dusk-indust/archcheck/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	Root            string   `json:"root" jsonschema:"absolute path to the project root"`
	Extensions      []string `json:"extensions,omitempty" jsonschema:"recognized file globs (default: TypeScript and JavaScript)"`
	Include         []string `json:"include,omitempty" jsonschema:"start paths or globs; <rootDir> expands to the root (default: <rootDir>)"`
	Ignore          []string `json:"ignore,omitempty" jsonschema:"globs pruned from the walk (default: node_modules and .git)"`
	PathAliasConfig string   `json:"pathAliasConfig,omitempty" jsonschema:"tsconfig or jsconfig declaring compilerOptions.paths"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Root    string              `json:"root"`
	Stats   graph.GraphStats    `json:"stats"`
	Invalid []InvalidDependency `json:"invalid,omitempty"`
	Cycles  []string            `json:"cycles,omitempty"`
}

// InvalidDependency is an import that resolved to nothing.
type InvalidDependency struct {
	File   string `json:"file"`
	Target string `json:"target"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	Path      string `json:"path" jsonschema:"file path, absolute or relative to the built root"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it imports) or downstream (what imports it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// CheckRulesInput is the input for the check_rules MCP tool.
type CheckRulesInput struct {
	Root       string `json:"root" jsonschema:"absolute path to the project root"`
	ConfigPath string `json:"configPath,omitempty" jsonschema:"rule file to run (default: archcheck.yml in root)"`
}

// CheckRulesOutput is the result of the check_rules MCP tool.
type CheckRulesOutput struct {
	Results []RuleOutcome `json:"results"`
	Failed  int           `json:"failed"`
}

// RuleOutcome is the result of one rule.
type RuleOutcome struct {
	Name    string `json:"name"`
	Rule    string `json:"rule"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}
