package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/internal/cache"
	"github.com/pdrpinto/sokoban/internal/config"
	"github.com/pdrpinto/sokoban/internal/logging"
	"github.com/spf13/cobra"
)

// app carries what every subcommand shares once the root pre-run has loaded
// the configuration.
type app struct {
	configPath string
	logLevel   string
	noCache    bool

	cfg    config.Config
	logger *logging.Logger
	store  *cache.Store
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sokoban",
		Short: "Weighted Sokoban solver",
		Long: `sokoban finds minimum-cost solutions to weighted Sokoban warehouses.
Moving costs 1; pushing a box costs 1 plus the box's weight.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&a.noCache, "no-cache", false, "bypass the solution cache")

	root.AddCommand(
		a.newSolveCmd(),
		a.newTabooCmd(),
		a.newCheckCmd(),
		a.newBatchCmd(),
		a.newSummaryCmd(),
		a.newServeCmd(),
		a.newPlayCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logCfg, err := cfg.Logging("sokoban")
	if err != nil {
		return err
	}
	logCfg.Output = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger.Slog()))
	return nil
}

// teardown releases the cache and the log file. It runs after a successful
// command and again from main, so it must tolerate being called twice.
func (a *app) teardown(*cobra.Command, []string) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logger != nil {
		errs = append(errs, a.logger.Close())
	}
	return errors.Join(errs...)
}

// solver returns the cache store when caching is enabled, opening it on first
// use, and nil otherwise.
func (a *app) solver() (*cache.Store, error) {
	if a.noCache || !a.cfg.Cache.Enabled {
		return nil, nil
	}
	if a.store != nil {
		return a.store, nil
	}
	store, err := cache.Open(cache.Config{
		Dir:    expandHome(a.cfg.Cache.Dir),
		Logger: a.logger.Slog().With("component", "badger"),
	})
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// solve goes through the cache when one is configured.
func (a *app) solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error) {
	store, err := a.solver()
	if err != nil {
		return sokoban.Solution{}, false, err
	}
	if store == nil {
		solution, err := sokoban.Solve(ctx, w, opts...)
		return solution, false, err
	}
	return store.Solve(ctx, w, opts...)
}

func (a *app) solveOptions(workers, maxExpansions int) []sokoban.SolveOption {
	if workers < 0 {
		workers = a.cfg.Search.Workers
	}
	if maxExpansions < 0 {
		maxExpansions = a.cfg.Search.MaxExpansions
	}
	return []sokoban.SolveOption{
		sokoban.WithWorkers(workers),
		sokoban.WithMaxExpansions(maxExpansions),
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
