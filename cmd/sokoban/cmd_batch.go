package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/pdrpinto/sokoban/internal/batch"
	"github.com/pdrpinto/sokoban/internal/logging"
	"github.com/spf13/cobra"
)

func (a *app) newBatchCmd() *cobra.Command {
	var (
		timeout   time.Duration
		parallel  int
		reportDir string
	)
	cmd := &cobra.Command{
		Use:   "batch <directory | suite.hcl>",
		Short: "Solve many warehouses and write a TestN.txt report",
		Long: `Solves every *.txt warehouse in a directory, or every suite in an HCL
manifest, under a per-warehouse timeout. Each run is written to the report
directory as TestN.txt. Suites may pin expected outcomes; the command fails
when any result contradicts its expectation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suites, err := loadSuites(args[0])
			if err != nil {
				return err
			}
			if reportDir == "" {
				reportDir = a.cfg.Batch.ReportDir
			}
			store, err := a.solver()
			if err != nil {
				return err
			}

			mismatches := 0
			for _, s := range suites {
				runner := &batch.Runner{
					Timeout:  firstDuration(timeout, s.Timeout, a.cfg.Batch.Timeout),
					Parallel: firstInt(parallel, s.Parallel, a.cfg.Batch.Parallel),
					Options:  a.solveOptions(-1, -1),
				}
				if store != nil {
					runner.Solver = store
				}

				ctx := logging.WithLogger(cmd.Context(), logging.FromContext(cmd.Context()).With("suite", s.Name))
				run, err := runner.Run(ctx, s.Cases)
				if err != nil {
					return err
				}
				path, err := batch.WriteReport(reportDir, run)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d warehouses, report %s\n", s.Name, len(run.Results), path)
				mismatches += run.Mismatches()
			}
			if mismatches > 0 {
				return fmt.Errorf("%d results did not match their expectation", mismatches)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-warehouse time limit (default from suite or config)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "warehouses solved at once (default from suite or config)")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "report directory (default from config)")
	return cmd
}

func loadSuites(arg string) ([]batch.Suite, error) {
	if filepath.Ext(arg) == ".hcl" {
		return batch.LoadSuites(arg)
	}
	cases, err := batch.DiscoverCases(arg)
	if err != nil {
		return nil, err
	}
	// zero limits defer to the flags and the configuration
	return []batch.Suite{{Name: filepath.Base(arg), Cases: cases}}, nil
}

func firstDuration(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func (a *app) newSummaryCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "summary <TestN.txt>",
		Short: "Summarise a batch report into SummaryN.txt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = filepath.Join(a.cfg.Batch.ReportDir, "summaries")
			}
			path, summary, err := batch.WriteSummary(outDir, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range summary.Lines() {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "summary directory (default <report_dir>/summaries)")
	return cmd
}
