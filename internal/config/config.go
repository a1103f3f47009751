package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/archcheck/internal/rules"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

// FileNames are the rule file names Load looks for, in order.
var FileNames = []string{"archcheck.yml", "archcheck.yaml"}

// ProjectConfig holds project-level settings and rules loaded from
// archcheck.yml.
type ProjectConfig struct {
	Extensions      []string     `yaml:"extensions,omitempty"`
	Include         []string     `yaml:"include,omitempty"`
	Ignore          []string     `yaml:"ignore,omitempty"`
	PathAliasConfig string       `yaml:"pathAliasConfig,omitempty"`
	Rules           []RuleConfig `yaml:"rules,omitempty"`
}

// RuleConfig is one declarative rule. A rule selects files with
// inDirectory and/or inFile globs, minus exclude, then asserts predicate
// with polarity. Which of patterns, threshold and fraction is read
// depends on the predicate.
type RuleConfig struct {
	Name        string   `yaml:"name"`
	InDirectory []string `yaml:"inDirectory,omitempty"`
	InFile      []string `yaml:"inFile,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Polarity    string   `yaml:"polarity"`
	Predicate   string   `yaml:"predicate"`
	Patterns    []string `yaml:"patterns,omitempty"`
	Threshold   int      `yaml:"threshold,omitempty"`
	Fraction    float64  `yaml:"fraction,omitempty"`
}

// Load attempts to read archcheck.yml or archcheck.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads the rule file at path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports every rule with an unknown predicate or polarity, or
// without a selector. Argument values are checked when the rule runs.
func (c *ProjectConfig) Validate() error {
	var errs []error
	for i, r := range c.Rules {
		label := r.label(i)
		if len(r.InDirectory) == 0 && len(r.InFile) == 0 {
			errs = append(errs, fmt.Errorf("%s: no inDirectory or inFile selector", label))
		}
		if _, err := rules.ParsePolarity(r.Polarity); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
		if _, err := rules.ParseKind(r.Predicate); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	return errors.Join(errs...)
}

// Options returns the graph options declared by the config, on top of base.
func (c *ProjectConfig) Options(base archcheck.Options) archcheck.Options {
	if len(c.Extensions) > 0 {
		base.Extensions = c.Extensions
	}
	if len(c.Include) > 0 {
		base.Include = c.Include
	}
	if c.Ignore != nil {
		base.Ignore = c.Ignore
	}
	if c.PathAliasConfig != "" {
		base.PathAliasConfig = c.PathAliasConfig
	}
	return base
}

// NamedRule is a compiled rule with its config name.
type NamedRule struct {
	Name string
	Rule archcheck.Rule
}

// Compile turns every rule into an archcheck.Rule rooted at root.
func (c *ProjectConfig) Compile(root string, opts archcheck.Options) ([]NamedRule, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	base := archcheck.NewSelector(root, c.Options(opts))

	out := make([]NamedRule, 0, len(c.Rules))
	for i, r := range c.Rules {
		sel := base
		for _, dir := range r.InDirectory {
			sel = sel.InDirectory(dir, r.Exclude...)
		}
		for _, file := range r.InFile {
			sel = sel.InFile(file, r.Exclude...)
		}
		cond := sel.Should()
		if r.Polarity == string(rules.ShouldNot) {
			cond = sel.ShouldNot()
		}
		rule, err := cond.Predicate(r.Predicate, r.Patterns, r.Threshold, r.Fraction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.label(i), err)
		}
		out = append(out, NamedRule{Name: r.label(i), Rule: rule})
	}
	return out, nil
}

func (r RuleConfig) label(i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule #%d", i+1)
}

// Default returns the starter config written by "archcheck init".
func Default() *ProjectConfig {
	return &ProjectConfig{
		Extensions: archcheck.DefaultExtensions,
		Include:    []string{"<rootDir>/src"},
		Ignore:     []string{"**/node_modules/**", "**/.git/**", "**/dist/**", "**/vendor/**"},
		Rules: []RuleConfig{
			{
				Name:        "domain is independent of infrastructure",
				InDirectory: []string{"**/domain/**"},
				Polarity:    string(rules.ShouldNot),
				Predicate:   string(rules.DependsOn),
				Patterns:    []string{"**/infra/**"},
			},
			{
				Name:        "no import cycles",
				InDirectory: []string{"**"},
				Polarity:    string(rules.ShouldNot),
				Predicate:   string(rules.HaveCycles),
			},
			{
				Name:        "files stay small",
				InDirectory: []string{"**"},
				Polarity:    string(rules.Should),
				Predicate:   string(rules.HaveLocLessOrEqualThan),
				Threshold:   500,
			},
		},
	}
}

// Marshal renders the config as YAML.
func (c *ProjectConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
