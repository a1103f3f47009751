package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dusk-indust/archcheck/internal/glob"
	"golang.org/x/sync/errgroup"
)

// RootDirToken is replaced by the project root in include patterns.
const RootDirToken = "<rootDir>"

// BuildOptions selects which files make up a project graph.
type BuildOptions struct {
	// RootDir is the project root; manifests are read from here.
	RootDir string

	// Include lists start paths or patterns, e.g. "<rootDir>/src" or
	// "<rootDir>/src/**/*.ts". Empty means the whole root.
	Include []string

	// Ignore prunes matching directories and files during the walk.
	Ignore []string

	// Extensions are the recognized file patterns ("**/*.ts"); their
	// literal suffixes are probed when resolving script imports.
	Extensions []string

	// PathAliasConfig optionally points at a tsconfig/jsconfig file.
	PathAliasConfig string
}

// Builder walks a project tree and produces its ProjectGraph.
type Builder struct {
	extractor   Extractor
	cache       *ParseCache
	logger      *slog.Logger
	concurrency int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithCache reuses extracted imports across builds.
func WithCache(c *ParseCache) BuilderOption {
	return func(b *Builder) { b.cache = c }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithConcurrency bounds the number of files parsed in parallel.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) { b.concurrency = n }
}

// NewBuilder creates a Builder that extracts imports with extractor.
func NewBuilder(extractor Extractor, opts ...BuilderOption) *Builder {
	b := &Builder{
		extractor:   extractor,
		logger:      slog.Default(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(b)
	}
	if b.concurrency <= 0 {
		b.concurrency = 1
	}
	return b
}

// Build walks every include path, skipping ignored subtrees, and parses and
// resolves each file found. Files are parsed in parallel; the graph itself
// is assembled by a single writer once all workers finish.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (ProjectGraph, error) {
	root, err := ResolveRoot(opts.RootDir)
	if err != nil {
		return nil, err
	}

	ignore, err := glob.NewMatcher(opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}

	manifest, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}

	var aliases *PathAliases
	if opts.PathAliasConfig != "" {
		cfgPath := expandRoot(opts.PathAliasConfig, root)
		aliases, err = LoadPathAliases(cfgPath)
		if err != nil {
			return nil, err
		}
	}

	resolver := NewResolver(root, manifest, aliases, glob.Extensions(opts.Extensions))

	paths, err := b.walk(root, opts.Include, ignore)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("project walked", "root", root, "files", len(paths))

	results := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := b.parseFile(gctx, path, resolver)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pg := make(ProjectGraph, len(results))
	for _, f := range results {
		pg[f.Path] = f
	}
	b.logger.Debug("project graph built", "root", root, "files", len(pg), "cached", b.cache.Len())
	return pg, nil
}

// ResolveRoot returns dir as an absolute path with symlinks evaluated, the
// form every graph key starts with. WalkDir does not descend into a
// symlinked start directory. A dir that cannot be resolved is only made
// absolute and left for the walk to report.
func ResolveRoot(dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return root, nil
}

// walk returns the absolute paths of every non-ignored regular file under
// the include set, without duplicates.
func (b *Builder) walk(root string, include []string, ignore *glob.Matcher) ([]string, error) {
	if len(include) == 0 {
		include = []string{RootDirToken}
	}

	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range include {
		expanded := expandRoot(pattern, root)

		start := expanded
		var filter []string
		if glob.HasMeta(glob.Normalize(expanded)) {
			start = filepath.FromSlash(glob.StaticPrefix(expanded))
			filter = []string{glob.Normalize(expanded)}
		}
		if resolved, err := filepath.EvalSymlinks(start); err == nil && resolved != start {
			if filter != nil {
				rest := strings.TrimPrefix(glob.Normalize(expanded), glob.Normalize(start))
				filter = []string{glob.Normalize(resolved) + rest}
			}
			start = resolved
		}

		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			slashed := glob.Normalize(path)
			if d.IsDir() {
				if ignore.Match(slashed) || ignore.Match(slashed+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if ignore.Match(slashed) {
				return nil
			}
			if filter != nil && !glob.Match(slashed, filter) {
				return nil
			}
			if !isRegularEntry(path, d) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", start, err)
		}
	}
	return paths, nil
}

// parseFile reads, extracts and resolves one file.
func (b *Builder) parseFile(ctx context.Context, path string, resolver *Resolver) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	key := cacheKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}
	entry, hit := b.cache.get(key)
	lang, known := LanguageForPath(path)

	if !hit {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		entry.loc = CountLines(source)
		if known {
			entry.imports, err = b.extractor.Extract(ctx, path, source, lang)
			if err != nil {
				return nil, fmt.Errorf("extract imports from %s: %w", path, err)
			}
		}
		b.cache.put(key, entry)
	}

	dir := filepath.Dir(path)
	deps := make([]Dependency, 0, len(entry.imports))
	for _, imp := range entry.imports {
		deps = append(deps, resolver.Resolve(dir, imp.Target, lang, imp.Mechanism))
	}

	return &File{
		Name:         filepath.Base(path),
		Path:         path,
		Language:     lang,
		Dependencies: deps,
		LOC:          entry.loc,
		Size:         info.Size(),
	}, nil
}

// expandRoot substitutes the root placeholder and makes the result absolute.
func expandRoot(pattern, root string) string {
	p := strings.ReplaceAll(pattern, RootDirToken, glob.Normalize(root))
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return filepath.Clean(p)
}

func isRegularEntry(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink != 0 {
		return isRegularFile(path)
	}
	return false
}
