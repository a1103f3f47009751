package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under root. Keys are slash-separated relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	m, err := ReadManifest(root)
	require.NoError(t, err)
	return NewResolver(root, m, nil, nil)
}

// --- TypeScript / JavaScript ---

func TestResolveScript_Classification(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{
			"dependencies": {"express": "^4", "@scope/pkg": "1.0.0", "lodash": "*"},
			"devDependencies": {"jest": "^29"}
		}`,
		"src/index.ts":         "",
		"src/service.ts":       "",
		"src/types.tsx":        "",
		"src/domain/index.ts":  "",
		"src/legacy.js":        "",
		"src/sub/handler.ts":   "",
		"src/assets/logo.json": "{}",
	})
	r := newTestResolver(t, root)
	src := filepath.Join(root, "src")

	tests := []struct {
		name     string
		dir      string
		target   string
		wantType DependencyType
		wantName string
	}{
		{"node builtin", src, "fs", DependencyBuiltin, "fs"},
		{"node builtin subpath", src, "fs/promises", DependencyBuiltin, "fs/promises"},
		{"node prefixed builtin", src, "node:path", DependencyBuiltin, "node:path"},
		{"production", src, "express", DependencyProduction, "express"},
		{"production scoped", src, "@scope/pkg", DependencyProduction, "@scope/pkg"},
		{"production subpath", src, "lodash/fp", DependencyProduction, "lodash/fp"},
		{"production scoped subpath", src, "@scope/pkg/x", DependencyProduction, "@scope/pkg/x"},
		{"dev", src, "jest", DependencyDev, "jest"},
		{"relative probe .ts", src, "./service", DependencyValidPath, filepath.Join(src, "service.ts")},
		{"relative probe .tsx", src, "./types", DependencyValidPath, filepath.Join(src, "types.tsx")},
		{"relative probe .js", src, "./legacy", DependencyValidPath, filepath.Join(src, "legacy.js")},
		{"index file", src, "./domain", DependencyValidPath, filepath.Join(src, "domain", "index.ts")},
		{"parent", filepath.Join(src, "sub"), "../service", DependencyValidPath, filepath.Join(src, "service.ts")},
		{"explicit extension", src, "./assets/logo.json", DependencyValidPath, filepath.Join(src, "assets", "logo.json")},
		{"root relative", src, "src/service", DependencyValidPath, filepath.Join(src, "service.ts")},
		{"missing relative", src, "./nonexistent", DependencyInvalid, "./nonexistent"},
		{"unknown package", src, "left-pad", DependencyInvalid, "left-pad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.dir, tt.target, LangTypeScript, MechanismImport)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, MechanismImport, got.ResolvedVia)
		})
	}
}

func TestResolveScript_KeepsMechanism(t *testing.T) {
	r := NewResolver(t.TempDir(), nil, nil, nil)
	got := r.Resolve("/x", "fs", LangTSX, MechanismRequire)
	assert.Equal(t, Dependency{Name: "fs", Type: DependencyBuiltin, ResolvedVia: MechanismRequire}, got)
}

func TestResolveScript_ConfiguredExtensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts": "",
		"b.js": "",
	})
	r := NewResolver(root, nil, nil, []string{".ts"})

	assert.Equal(t, DependencyValidPath, r.Resolve(root, "./a", LangTypeScript, MechanismImport).Type)
	// .js is not probed when only .ts is configured.
	assert.Equal(t, DependencyInvalid, r.Resolve(root, "./b", LangTypeScript, MechanismImport).Type)
	// An explicit extension still resolves.
	assert.Equal(t, DependencyValidPath, r.Resolve(root, "./b.js", LangTypeScript, MechanismImport).Type)
}

func TestResolveScript_PathAliases(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"tsconfig.json": `{
			// JSONC comments are allowed
			"compilerOptions": {
				"baseUrl": ".",
				"paths": {
					"@domain/*": ["src/domain/*"],
					"@domain/special": ["src/special/index.ts"],
					"@config": ["src/config.ts"], /* trailing comma below */
				},
			},
		}`,
		"src/domain/user.ts":   "",
		"src/special/index.ts": "",
		"src/config.ts":        "",
		"lib/util.ts":          "",
	})
	aliases, err := LoadPathAliases(filepath.Join(root, "tsconfig.json"))
	require.NoError(t, err)
	r := NewResolver(root, nil, aliases, nil)

	tests := []struct {
		target string
		want   string
	}{
		{"@domain/user", filepath.Join(root, "src", "domain", "user.ts")},
		{"@domain/special", filepath.Join(root, "src", "special", "index.ts")},
		{"@config", filepath.Join(root, "src", "config.ts")},
		{"lib/util", filepath.Join(root, "lib", "util.ts")},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got := r.Resolve(root, tt.target, LangTypeScript, MechanismImport)
			assert.Equal(t, DependencyValidPath, got.Type)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	got := r.Resolve(root, "@domain/missing", LangTypeScript, MechanismImport)
	assert.Equal(t, DependencyInvalid, got.Type)
	assert.Equal(t, "@domain/missing", got.Name)
}

func TestLoadPathAliases_Errors(t *testing.T) {
	_, err := LoadPathAliases(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	root := t.TempDir()
	writeTree(t, root, map[string]string{"tsconfig.json": "{not json"})
	_, err = LoadPathAliases(filepath.Join(root, "tsconfig.json"))
	assert.Error(t, err)
}

func TestNpmPackageName(t *testing.T) {
	assert.Equal(t, "lodash", npmPackageName("lodash"))
	assert.Equal(t, "lodash", npmPackageName("lodash/fp"))
	assert.Equal(t, "@scope/pkg", npmPackageName("@scope/pkg"))
	assert.Equal(t, "@scope/pkg", npmPackageName("@scope/pkg/deep/x"))
}

// --- Go ---

func TestResolveGo(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/project\n\ngo 1.24\n\n" +
			"require github.com/stretchr/testify v1.11.1\n\n" +
			"tool golang.org/x/tools/cmd/stringer\n",
		"main.go":                     "package main\n",
		"internal/store/store.go":     "package store\n",
		"internal/store/cache.go":     "package store\n",
		"internal/store/bolt_test.go": "package store\n",
		"internal/empty/README.md":    "",
	})
	r := newTestResolver(t, root)

	tests := []struct {
		name     string
		target   string
		wantType DependencyType
		wantName string
	}{
		{"stdlib", "fmt", DependencyBuiltin, "fmt"},
		{"stdlib nested", "net/http", DependencyBuiltin, "net/http"},
		{"required module", "github.com/stretchr/testify", DependencyProduction, "github.com/stretchr/testify"},
		{"required subpackage", "github.com/stretchr/testify/assert", DependencyProduction, "github.com/stretchr/testify/assert"},
		{"tool", "golang.org/x/tools/cmd/stringer", DependencyDev, "golang.org/x/tools/cmd/stringer"},
		{"local package picks first sorted non-test file", "example.com/project/internal/store", DependencyValidPath, filepath.Join(root, "internal", "store", "cache.go")},
		{"local package without go files", "example.com/project/internal/empty", DependencyInvalid, "example.com/project/internal/empty"},
		{"local package missing", "example.com/project/internal/nope", DependencyInvalid, "example.com/project/internal/nope"},
		{"undeclared module", "github.com/unknown/mod", DependencyInvalid, "github.com/unknown/mod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(root, tt.target, LangGo, MechanismImport)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

// --- Python ---

func TestResolvePython(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"requirements.txt":        "requests>=2.0\n# comment\nDjango-Rest==3.1\n",
		"requirements-dev.txt":    "pytest\n",
		"app/__init__.py":         "",
		"app/models.py":           "",
		"app/utils/__init__.py":   "",
		"app/utils/helpers.py":    "",
		"app/api/views.py":        "",
		"src/shared/constants.py": "",
	})
	r := newTestResolver(t, root)
	apiDir := filepath.Join(root, "app", "api")

	tests := []struct {
		name     string
		dir      string
		target   string
		wantType DependencyType
		wantName string
	}{
		{"stdlib", apiDir, "os.path", DependencyBuiltin, "os.path"},
		{"production", apiDir, "requests", DependencyProduction, "requests"},
		{"production normalized name", apiDir, "django_rest", DependencyProduction, "django_rest"},
		{"dev", apiDir, "pytest", DependencyDev, "pytest"},
		{"absolute module", apiDir, "app.models", DependencyValidPath, filepath.Join(root, "app", "models.py")},
		{"absolute package", apiDir, "app.utils", DependencyValidPath, filepath.Join(root, "app", "utils", "__init__.py")},
		{"src layout", apiDir, "shared.constants", DependencyValidPath, filepath.Join(root, "src", "shared", "constants.py")},
		{"parent relative", apiDir, "..models", DependencyValidPath, filepath.Join(root, "app", "models.py")},
		{"parent relative package", apiDir, "..utils.helpers", DependencyValidPath, filepath.Join(root, "app", "utils", "helpers.py")},
		{"bare parent", apiDir, "..", DependencyValidPath, filepath.Join(root, "app", "__init__.py")},
		{"current relative missing", apiDir, ".missing", DependencyInvalid, ".missing"},
		{"unknown", apiDir, "flask", DependencyInvalid, "flask"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.dir, tt.target, LangPython, MechanismImport)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

// --- Rust ---

func TestResolveRust(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Cargo.toml": "[package]\nname = \"app\"\n\n[dependencies]\nserde = \"1\"\ntokio-util = \"0.7\"\n\n[dev-dependencies]\nmockall = \"0.12\"\n",
		"src/main.rs":           "",
		"src/model.rs":          "",
		"src/handlers/mod.rs":   "",
		"src/handlers/user.rs":  "",
		"src/handlers/admin.rs": "",
	})
	r := newTestResolver(t, root)
	src := filepath.Join(root, "src")
	handlers := filepath.Join(src, "handlers")

	tests := []struct {
		name     string
		dir      string
		target   string
		wantType DependencyType
		wantName string
	}{
		{"std", src, "std::collections::HashMap", DependencyBuiltin, "std::collections::HashMap"},
		{"crate dependency", src, "serde::Serialize", DependencyProduction, "serde::Serialize"},
		{"hyphenated crate", src, "tokio_util::codec", DependencyProduction, "tokio_util::codec"},
		{"dev crate", src, "mockall::automock", DependencyDev, "mockall::automock"},
		{"crate module", handlers, "crate::model", DependencyValidPath, filepath.Join(src, "model.rs")},
		{"crate item trims to module", handlers, "crate::model::User", DependencyValidPath, filepath.Join(src, "model.rs")},
		{"crate mod dir", src, "crate::handlers", DependencyValidPath, filepath.Join(handlers, "mod.rs")},
		{"self", handlers, "self::user", DependencyValidPath, filepath.Join(handlers, "user.rs")},
		{"super", filepath.Join(handlers), "super::model", DependencyValidPath, filepath.Join(src, "model.rs")},
		{"missing", src, "crate::nope", DependencyInvalid, "crate::nope"},
		{"unknown crate", src, "rand::Rng", DependencyInvalid, "rand::Rng"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.dir, tt.target, LangRust, MechanismImport)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}
