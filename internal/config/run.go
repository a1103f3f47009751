package config

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

// RuleResult is the outcome of one rule of a config.
type RuleResult struct {
	Name   string `json:"name"`
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	// Message is the full error text of a failed rule.
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Report is the outcome of running every rule of a config once.
type Report struct {
	Results []RuleResult    `json:"results"`
	Graph   archcheck.Graph `json:"-"`
}

// Failed returns the number of failed rules.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Run builds the project graph at root once and checks every rule against
// it. A rule failure is recorded in its RuleResult; the returned error is
// reserved for config and graph build failures.
func Run(ctx context.Context, root string, cfg *ProjectConfig, opts archcheck.Options) (*Report, error) {
	compiled, err := cfg.Compile(root, opts)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pg, err := archcheck.BuildGraph(ctx, root, cfg.Options(opts))
	if err != nil {
		return nil, err
	}

	report := &Report{Graph: pg, Results: make([]RuleResult, 0, len(compiled))}
	for _, nr := range compiled {
		res := RuleResult{Name: nr.Name, Rule: nr.Rule.String(), Passed: true}
		if err := nr.Rule.CheckGraph(pg); err != nil {
			res.Passed = false
			res.Message = err.Error()
			res.Err = err
			logger.Info("rule failed", "rule", nr.Name, "violation", errors.Is(err, archcheck.ErrViolation))
		} else {
			logger.Info("rule passed", "rule", nr.Name)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}
