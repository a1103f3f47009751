package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archcheck/internal/config"
	"github.com/dusk-indust/archcheck/pkg/archcheck"
)

// version is set by goreleaser at build time.
var version = "dev"

// errRulesFailed signals a completed run with failing rules; the message
// has already been printed.
var errRulesFailed = errors.New("rules failed")

// cliFlags are the flags shared by every command.
type cliFlags struct {
	Root       string
	ConfigPath string
	Verbose    bool
}

// app carries what commands share once flags are parsed.
type app struct {
	flags  cliFlags
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRulesFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "archcheck",
		Short:         "Check architecture rules against a project's file dependency graph",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if a.flags.Verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.Root, "root", ".", "path to the target project")
	pf.StringVar(&a.flags.ConfigPath, "config", "", "rule file (default: archcheck.yml in the root)")
	pf.BoolVar(&a.flags.Verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newCheckCmd(a),
		newExportCmd(a),
		newDiagramCmd(a),
		newDepsCmd(a),
		newIndexCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newInitCmd(a),
	)
	return root
}

// loadConfig reads the rule file named by --config, or the one in the root.
func (a *app) loadConfig() (*config.ProjectConfig, error) {
	if a.flags.ConfigPath != "" {
		return config.LoadFile(a.flags.ConfigPath)
	}
	return config.Load(a.flags.Root)
}

// options returns the graph options declared by the rule file.
func (a *app) options(cfg *config.ProjectConfig) archcheck.Options {
	return cfg.Options(archcheck.Options{Logger: a.logger})
}

// buildGraph builds the project graph with the rule file's options.
func (a *app) buildGraph(ctx context.Context) (archcheck.Graph, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return archcheck.BuildGraph(ctx, a.flags.Root, a.options(cfg))
}
