//go:build e2e

package e2e

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archcheck/internal/config"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

const layeredRules = `include: ["<rootDir>/src"]
rules:
  - name: domain is independent
    inDirectory: ["**/domain/**"]
    polarity: shouldNot
    predicate: dependsOn
    patterns: ["**/infra/**"]
  - name: no cycles
    inDirectory: ["**/src/**"]
    exclude: ["**/broken/**"]
    polarity: shouldNot
    predicate: haveCycles
`

// copyTree copies the fixture at src into a fresh temp dir.
func copyTree(t *testing.T, src string) string {
	t.Helper()
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
	return dst
}

// TestPipeline_E2E_EditBreaksRule runs a rule file, edits the project so
// that it introduces a cycle back into the domain, and runs it again with
// the same parse cache.
func TestPipeline_E2E_EditBreaksRule(t *testing.T) {
	root := copyTree(t, fixtureRoot(t))
	require.NoError(t, os.WriteFile(filepath.Join(root, "archcheck.yml"), []byte(layeredRules), 0o644))

	cfg, err := config.Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)

	cache, err := archcheck.NewCache(0)
	require.NoError(t, err)
	opts := archcheck.Options{Cache: cache}
	ctx := context.Background()

	report, err := config.Run(ctx, root, cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed(), "fixture starts clean: %+v", report.Results)
	assert.Len(t, report.Graph, 5)

	userPath := filepath.Join(root, "src", "domain", "user.ts")
	user, err := os.ReadFile(userPath)
	require.NoError(t, err)
	edited := append([]byte("import { save } from \"../infra/db\";\n"), user...)
	require.NoError(t, os.WriteFile(userPath, edited, 0o644))

	report, err = config.Run(ctx, root, cfg, opts)
	require.NoError(t, err)
	require.Equal(t, 2, report.Failed())

	assert.ErrorIs(t, report.Results[0].Err, archcheck.ErrViolation)
	assert.Contains(t, report.Results[0].Message, userPath)
	assert.ErrorIs(t, report.Results[1].Err, archcheck.ErrViolation)
	assert.Contains(t, report.Results[1].Message, "db.ts -> ")
}

// TestPipeline_E2E_UnresolvedImport checks that file-quality errors win over
// rule evaluation when the selection contains a broken import.
func TestPipeline_E2E_UnresolvedImport(t *testing.T) {
	root := fixtureRoot(t)

	err := archcheck.NewSelector(root, archcheck.Options{}).
		InDirectory("**/src/**").
		ShouldNot().
		HaveCycles().
		Check(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, archcheck.ErrFileQuality)
	assert.Contains(t, err.Error(), "./formatter could not be resolved")
}
