package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/config"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run every rule of the rule file and exit non-zero on any failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Rules) == 0 {
				return fmt.Errorf("no rules found; run 'archcheck init' to create archcheck.yml")
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), a.flags.Root, cfg, a.options(cfg))
		},
	}
}

// runCheck runs cfg once and prints one line per rule, followed by the full
// message of each failure.
func runCheck(ctx context.Context, out io.Writer, root string, cfg *config.ProjectConfig, opts archcheck.Options) error {
	report, err := config.Run(ctx, root, cfg, opts)
	if err != nil {
		return err
	}
	printReport(out, report)
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d rules failed: %w", n, len(report.Results), errRulesFailed)
	}
	return nil
}

func printReport(out io.Writer, report *config.Report) {
	for _, r := range report.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%s  %s\n", status, r.Name)
	}
	for _, r := range report.Results {
		if !r.Passed {
			fmt.Fprintf(out, "\n[%s]\n%s\n", r.Name, r.Message)
		}
	}
	fmt.Fprintf(out, "\n%d passed, %d failed\n", len(report.Results)-report.Failed(), report.Failed())
}
