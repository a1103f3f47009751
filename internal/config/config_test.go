package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

func TestLoad_Absent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_YAMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archcheck.yaml"), []byte(`
include: ["<rootDir>/src"]
ignore: []
rules:
  - name: domain stays pure
    inDirectory: ["**/domain/**"]
    exclude: ["**/*.spec.ts"]
    polarity: shouldNot
    predicate: dependsOn
    patterns: ["**/infra/**"]
  - inFile: ["**/index.ts"]
    polarity: should
    predicate: haveLocLessThan
    threshold: 50
`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"<rootDir>/src"}, cfg.Include)
	assert.NotNil(t, cfg.Ignore)
	assert.Empty(t, cfg.Ignore)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, RuleConfig{
		Name:        "domain stays pure",
		InDirectory: []string{"**/domain/**"},
		Exclude:     []string{"**/*.spec.ts"},
		Polarity:    "shouldNot",
		Predicate:   "dependsOn",
		Patterns:    []string{"**/infra/**"},
	}, cfg.Rules[0])
	assert.Equal(t, 50, cfg.Rules[1].Threshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archcheck.yml"), []byte("rules: [\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryRule(t *testing.T) {
	cfg := &ProjectConfig{Rules: []RuleConfig{
		{Name: "no selector", Polarity: "should", Predicate: "haveCycles"},
		{Name: "bad polarity", InDirectory: []string{"**"}, Polarity: "must", Predicate: "haveCycles"},
		{InDirectory: []string{"**"}, Polarity: "should", Predicate: "haveColor"},
	}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no selector: no inDirectory or inFile selector")
	assert.Contains(t, err.Error(), "bad polarity: unknown polarity")
	assert.Contains(t, err.Error(), `rule #3: unknown predicate "haveColor"`)
}

func TestOptions(t *testing.T) {
	cfg := &ProjectConfig{Extensions: []string{"**/*.go"}, PathAliasConfig: "tsconfig.json"}
	opts := cfg.Options(archcheck.Options{Include: []string{"<rootDir>/cmd"}})
	assert.Equal(t, []string{"**/*.go"}, opts.Extensions)
	assert.Equal(t, []string{"<rootDir>/cmd"}, opts.Include)
	assert.Nil(t, opts.Ignore)
	assert.Equal(t, "tsconfig.json", opts.PathAliasConfig)
}

func TestRun_LayeredFixture(t *testing.T) {
	root, err := filepath.Abs("../../testdata/fixtures/layered_ts")
	require.NoError(t, err)

	cfg := &ProjectConfig{Rules: []RuleConfig{
		{Name: "domain imported by infra", InDirectory: []string{"**/domain/**"}, Polarity: "should", Predicate: "beImportedOrRequiredBy", Patterns: []string{"**/infra/**"}},
		{Name: "domain small", InDirectory: []string{"**/domain/**"}, Polarity: "shouldNot", Predicate: "haveLocGreaterOrEqualThan", Threshold: 15},
		{Name: "broken resolves", InDirectory: []string{"**/broken/**"}, Polarity: "shouldNot", Predicate: "haveCycles"},
	}}

	report, err := Run(context.Background(), root, cfg, archcheck.Options{})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.NotEmpty(t, report.Graph)

	assert.True(t, report.Results[0].Passed)
	assert.False(t, report.Results[1].Passed)
	assert.ErrorIs(t, report.Results[1].Err, archcheck.ErrViolation)
	assert.Contains(t, report.Results[1].Message, "user.ts")
	assert.False(t, report.Results[2].Passed)
	assert.ErrorIs(t, report.Results[2].Err, archcheck.ErrFileQuality)
	assert.Equal(t, 2, report.Failed())
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := &ProjectConfig{Rules: []RuleConfig{{Name: "x", Polarity: "should", Predicate: "haveCycles"}}}
	_, err := Run(context.Background(), t.TempDir(), cfg, archcheck.Options{})
	assert.Error(t, err)
}

func TestDefault_RoundTrips(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archcheck.yml"), data, 0o644))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}
