package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/watch"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the rule file whenever project files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			cache, err := archcheck.NewCache(0)
			if err != nil {
				return err
			}

			// Reload the rule file on every run so edits to it apply.
			rerun := func(ctx context.Context) {
				cfg, err := a.loadConfig()
				if err != nil {
					a.logger.Error("load rule file", "error", err)
					return
				}
				opts := a.options(cfg)
				opts.Cache = cache
				if err := runCheck(ctx, out, a.flags.Root, cfg, opts); err != nil && !errors.Is(err, errRulesFailed) {
					a.logger.Error("check failed", "error", err)
				}
			}

			ignore := a.options(cfg).Ignore
			if ignore == nil {
				ignore = archcheck.DefaultIgnore
			}
			w, err := watch.New(a.flags.Root, ignore, watch.WithDebounce(debounce), watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			rerun(ctx)
			a.logger.Info("watching for changes", "root", a.flags.Root)
			return w.Run(ctx, func(ctx context.Context, changed []string) {
				a.logger.Info("files changed", "count", len(changed), "first", changed[0])
				rerun(ctx)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")
	return cmd
}
