package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/archcheck/internal/config"
	"github.com/dusk-indust/archcheck/internal/graph"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

// defaultMaxDepth bounds get_dependencies when the caller gives no depth.
const defaultMaxDepth = 5

// errNoGraph is returned by queries issued before any build_graph call.
var errNoGraph = errors.New("no graph built yet; call build_graph first")

// StoreFactory opens an empty graph store for one build.
type StoreFactory func() (graph.Store, error)

// Service holds the most recently built project graph and answers MCP tool
// calls against it. It is safe for concurrent use.
type Service struct {
	newStore StoreFactory
	cache    *archcheck.Cache
	logger   *slog.Logger

	mu    sync.RWMutex
	root  string
	store graph.Store
}

// Option configures a Service.
type Option func(*Service)

// WithStoreFactory sets where built graphs are indexed. Defaults to an
// in-memory store.
func WithStoreFactory(f StoreFactory) Option {
	return func(s *Service) { s.newStore = f }
}

// WithCache shares a parse cache across builds.
func WithCache(c *archcheck.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger used for tool diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service with no graph loaded.
func NewService(opts ...Option) *Service {
	s := &Service{
		newStore: func() (graph.Store, error) { return graph.NewMemStore(), nil },
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close releases the current graph store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// BuildGraph walks a project, builds its dependency graph and indexes it
// for later get_dependencies calls.
func (s *Service) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	root, err := projectRoot(input.Root)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	opts := archcheck.Options{
		Extensions:      input.Extensions,
		Include:         input.Include,
		Ignore:          input.Ignore,
		PathAliasConfig: input.PathAliasConfig,
		Logger:          s.logger,
		Cache:           s.cache,
	}
	pg, err := archcheck.BuildGraph(ctx, root, opts)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("build graph: %w", err)
	}

	store, err := s.newStore()
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("open store: %w", err)
	}
	if err := graph.Persist(ctx, store, pg); err != nil {
		store.Close()
		return nil, BuildGraphOutput{}, fmt.Errorf("index graph: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		store.Close()
		return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
	}
	cycles, err := graph.FindCycles(pg)
	if err != nil {
		store.Close()
		return nil, BuildGraphOutput{}, fmt.Errorf("detect cycles: %w", err)
	}

	s.mu.Lock()
	old := s.store
	s.root, s.store = root, store
	s.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("closing previous graph store", "error", err)
		}
	}

	out := BuildGraphOutput{Root: root, Stats: *stats}
	for _, p := range pg.Paths() {
		for _, d := range pg[p].Dependencies {
			if d.Type == graph.DependencyInvalid {
				out.Invalid = append(out.Invalid, InvalidDependency{File: relTo(root, p), Target: d.Name})
			}
		}
	}
	for _, c := range cycles.Cycles {
		rel := make(graph.Cycle, len(c))
		for i, p := range c {
			rel[i] = relTo(root, p)
		}
		out.Cycles = append(out.Cycles, rel.String())
	}
	s.logger.Debug("graph indexed", "root", root, "files", stats.FileCount, "invalid", stats.InvalidCount)
	return nil, out, nil
}

// GetDependencies traverses the last built graph from a file.
func (s *Service) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Path == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("path is required")
	}

	var direction graph.Direction
	switch strings.ToLower(input.Direction) {
	case "", string(graph.DirectionDownstream):
		direction = graph.DirectionDownstream
	case string(graph.DirectionUpstream):
		direction = graph.DirectionUpstream
	default:
		return nil, GetDependenciesOutput{}, fmt.Errorf("unknown direction %q (want upstream or downstream)", input.Direction)
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, GetDependenciesOutput{}, errNoGraph
	}

	path := input.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, filepath.FromSlash(path))
	}
	file, err := s.store.GetFile(ctx, path)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get file: %w", err)
	}
	if file == nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("%s is not part of the graph", input.Path)
	}

	chains, err := s.store.GetDependencies(ctx, path, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	for i := range chains {
		for j, n := range chains[i].Nodes {
			chains[i].Nodes[j] = relTo(s.root, n)
		}
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// CheckRules runs every rule of a rule file against a freshly built graph.
// Rule failures are reported per rule; the call itself only fails when the
// rule file or the graph cannot be loaded.
func (s *Service) CheckRules(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckRulesInput,
) (*mcp.CallToolResult, CheckRulesOutput, error) {
	root, err := projectRoot(input.Root)
	if err != nil {
		return nil, CheckRulesOutput{}, err
	}

	var cfg *config.ProjectConfig
	if input.ConfigPath != "" {
		cfg, err = config.LoadFile(input.ConfigPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, CheckRulesOutput{}, err
	}
	if len(cfg.Rules) == 0 {
		return nil, CheckRulesOutput{}, fmt.Errorf("no rules found for %s", root)
	}

	report, err := config.Run(ctx, root, cfg, archcheck.Options{Logger: s.logger, Cache: s.cache})
	if err != nil {
		return nil, CheckRulesOutput{}, err
	}

	out := CheckRulesOutput{Results: make([]RuleOutcome, 0, len(report.Results)), Failed: report.Failed()}
	for _, r := range report.Results {
		out.Results = append(out.Results, RuleOutcome{
			Name:    r.Name,
			Rule:    r.Rule,
			Passed:  r.Passed,
			Message: r.Message,
		})
	}
	return nil, out, nil
}

func projectRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root is required")
	}
	abs, err := graph.ResolveRoot(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root is not a directory: %s", root)
	}
	return abs, nil
}

// relTo returns path relative to root with forward slashes, or path itself
// when it lies outside root.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}
