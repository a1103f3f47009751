package graph

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultScriptExtensions are probed for TypeScript/JavaScript imports when
// no extensions are configured.
var DefaultScriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver classifies raw import targets into Dependency values. It is built
// once per graph build from the manifest read at the project root and is
// safe for concurrent use: it only reads its own fields and stats the disk.
//
// Classification order, first match wins: builtin module, production
// dependency, dev dependency, on-disk path, invalid.
type Resolver struct {
	rootDir    string
	manifest   *Manifest
	aliases    *PathAliases
	extensions []string
}

// NewResolver creates a Resolver. manifest and aliases may be nil.
// extensions are probed for script imports, e.g. ".ts".
func NewResolver(rootDir string, manifest *Manifest, aliases *PathAliases, extensions []string) *Resolver {
	if manifest == nil {
		manifest = EmptyManifest()
	}
	if len(extensions) == 0 {
		extensions = DefaultScriptExtensions
	}
	return &Resolver{
		rootDir:    rootDir,
		manifest:   manifest,
		aliases:    aliases,
		extensions: extensions,
	}
}

// Resolve classifies target as imported from a file in sourceDir. It never
// fails: targets that cannot be found become DependencyInvalid with the
// original target as the name.
func (r *Resolver) Resolve(sourceDir, target string, lang Language, via Mechanism) Dependency {
	var typ DependencyType
	var name string

	switch lang {
	case LangGo:
		typ, name = r.resolveGo(target)
	case LangPython:
		typ, name = r.resolvePython(sourceDir, target)
	case LangRust:
		typ, name = r.resolveRust(sourceDir, target)
	default:
		typ, name = r.resolveScript(sourceDir, target)
	}

	if typ == DependencyInvalid || name == "" {
		return Dependency{Name: target, Type: DependencyInvalid, ResolvedVia: via}
	}
	return Dependency{Name: name, Type: typ, ResolvedVia: via}
}

// --- TypeScript / JavaScript ---

func (r *Resolver) resolveScript(sourceDir, target string) (DependencyType, string) {
	if isNodeBuiltin(target) {
		return DependencyBuiltin, target
	}
	pkg := npmPackageName(target)
	if r.manifest.Node.Production[target] || r.manifest.Node.Production[pkg] {
		return DependencyProduction, target
	}
	if r.manifest.Node.Dev[target] || r.manifest.Node.Dev[pkg] {
		return DependencyDev, target
	}

	for _, base := range r.scriptBases(sourceDir, target) {
		if resolved, ok := r.probe(base, r.extensions, true); ok {
			return DependencyValidPath, resolved
		}
	}
	return DependencyInvalid, target
}

// scriptBases returns candidate absolute base paths for a script import.
func (r *Resolver) scriptBases(sourceDir, target string) []string {
	switch {
	case isRelative(target):
		return []string{filepath.Join(sourceDir, target)}
	case filepath.IsAbs(target):
		return []string{filepath.Clean(target)}
	}
	if expanded := r.aliases.Expand(target); len(expanded) > 0 {
		return expanded
	}
	if base := r.aliases.BaseDir(); base != "" {
		return []string{filepath.Join(base, target)}
	}
	return []string{filepath.Join(r.rootDir, target)}
}

// npmPackageName returns the package part of a bare specifier:
// "lodash/fp" -> "lodash", "@scope/pkg/sub" -> "@scope/pkg".
func npmPackageName(target string) string {
	parts := strings.SplitN(target, "/", 3)
	if strings.HasPrefix(target, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func isRelative(target string) bool {
	return target == "." || target == ".." ||
		strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../")
}

// --- Go ---

func (r *Resolver) resolveGo(target string) (DependencyType, string) {
	mod := r.manifest.Go
	if isGoStdlib(target, mod.Path) {
		return DependencyBuiltin, target
	}
	for _, req := range mod.Requires {
		if target == req || strings.HasPrefix(target, req+"/") {
			return DependencyProduction, target
		}
	}
	if mod.Tools[target] {
		return DependencyDev, target
	}
	if mod.Path == "" || !(target == mod.Path || strings.HasPrefix(target, mod.Path+"/")) {
		return DependencyInvalid, target
	}

	relDir := strings.TrimPrefix(strings.TrimPrefix(target, mod.Path), "/")
	dir := filepath.Join(r.rootDir, filepath.FromSlash(relDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DependencyInvalid, target
	}

	// Sort for determinism, pick first non-test .go file.
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.Type().IsRegular() && strings.HasSuffix(n, ".go") && !strings.HasSuffix(n, "_test.go") {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return DependencyInvalid, target
	}
	sort.Strings(names)
	return DependencyValidPath, filepath.Join(dir, names[0])
}

// --- Python ---

func (r *Resolver) resolvePython(sourceDir, target string) (DependencyType, string) {
	if !strings.HasPrefix(target, ".") {
		top := firstSegment(target, ".")
		if pythonBuiltins[top] {
			return DependencyBuiltin, target
		}
		if r.manifest.Python.Production[pythonName(top)] {
			return DependencyProduction, target
		}
		if r.manifest.Python.Dev[pythonName(top)] {
			return DependencyDev, target
		}
		relPath := filepath.FromSlash(strings.ReplaceAll(target, ".", "/"))
		for _, root := range []string{r.rootDir, filepath.Join(r.rootDir, "src")} {
			if resolved, ok := r.probe(filepath.Join(root, relPath), []string{".py"}, false); ok {
				return DependencyValidPath, resolved
			}
			if resolved, ok := r.probe(filepath.Join(root, relPath, "__init__"), []string{".py"}, false); ok {
				return DependencyValidPath, resolved
			}
		}
		return DependencyInvalid, target
	}

	// Count leading dots for parent directory traversal.
	dots := len(target) - len(strings.TrimLeft(target, "."))
	modulePart := target[dots:]

	// One dot = current package, two dots = parent, etc.
	baseDir := sourceDir
	for i := 1; i < dots; i++ {
		baseDir = filepath.Dir(baseDir)
	}

	if modulePart == "" {
		// Bare relative import resolves to the package's __init__.py.
		if resolved, ok := r.probe(filepath.Join(baseDir, "__init__"), []string{".py"}, false); ok {
			return DependencyValidPath, resolved
		}
		return DependencyInvalid, target
	}

	base := filepath.Join(baseDir, filepath.FromSlash(strings.ReplaceAll(modulePart, ".", "/")))
	if resolved, ok := r.probe(base, []string{".py"}, false); ok {
		return DependencyValidPath, resolved
	}
	if resolved, ok := r.probe(filepath.Join(base, "__init__"), []string{".py"}, false); ok {
		return DependencyValidPath, resolved
	}
	return DependencyInvalid, target
}

// --- Rust ---

func (r *Resolver) resolveRust(sourceDir, target string) (DependencyType, string) {
	head := firstSegment(target, "::")
	if rustBuiltins[head] {
		return DependencyBuiltin, target
	}
	if r.manifest.Rust.Production[crateName(head)] {
		return DependencyProduction, target
	}
	if r.manifest.Rust.Dev[crateName(head)] {
		return DependencyDev, target
	}

	var bases []string
	segments := strings.Split(target, "::")
	switch head {
	case "crate":
		for _, root := range []string{findCrateRoot(sourceDir), filepath.Join(r.rootDir, "src")} {
			if root != "" {
				bases = append(bases, root)
			}
		}
		segments = segments[1:]
	case "self":
		bases = []string{sourceDir}
		segments = segments[1:]
	case "super":
		dir := sourceDir
		for len(segments) > 0 && segments[0] == "super" {
			dir = filepath.Dir(dir)
			segments = segments[1:]
		}
		bases = []string{dir}
	default:
		bases = []string{sourceDir}
	}

	// Trailing segments may name items rather than modules
	// ("crate::model::User"), so trim until a module file matches.
	for n := len(segments); n > 0; n-- {
		rel := filepath.Join(segments[:n]...)
		for _, base := range bases {
			if resolved, ok := r.probe(filepath.Join(base, rel), []string{".rs"}, false); ok {
				return DependencyValidPath, resolved
			}
			if resolved, ok := r.probe(filepath.Join(base, rel, "mod"), []string{".rs"}, false); ok {
				return DependencyValidPath, resolved
			}
		}
	}
	return DependencyInvalid, target
}

// findCrateRoot walks up from dir to the nearest "src" directory, the
// conventional Rust crate source root.
func findCrateRoot(dir string) string {
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		if filepath.Base(dir) == "src" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// --- Shared helpers ---

// probe checks basePath+ext for each extension, then basePath/index+ext when
// withIndex is set, then basePath itself. The first regular file wins.
func (r *Resolver) probe(basePath string, extensions []string, withIndex bool) (string, bool) {
	for _, ext := range extensions {
		if candidate := basePath + ext; isRegularFile(candidate) {
			return candidate, true
		}
	}
	if withIndex {
		for _, ext := range extensions {
			if candidate := filepath.Join(basePath, "index"+ext); isRegularFile(candidate) {
				return candidate, true
			}
		}
	}
	if filepath.Ext(basePath) != "" && isRegularFile(basePath) {
		return basePath, true
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
