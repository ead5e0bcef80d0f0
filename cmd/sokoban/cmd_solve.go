package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdrpinto/sokoban"
	"github.com/spf13/cobra"
)

func (a *app) newSolveCmd() *cobra.Command {
	var (
		workers       int
		maxExpansions int
		timeout       time.Duration
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "solve <warehouse-file>",
		Short: "Find a minimum-cost solution",
		Long: `Prints the action sequence of a minimum-cost solution, comma separated,
or "Impossible" when no sequence pushes every box onto a target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sokoban.Load(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			solution, cached, err := a.solve(ctx, w, a.solveOptions(workers, maxExpansions)...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					sokoban.Solution
					Cached bool `json:"cached"`
				}{solution, cached})
			}
			fmt.Fprintln(out, solution)
			if solution.Solved {
				fmt.Fprintf(out, "Cost: %d\n", solution.Cost)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", -1, "successor goroutines (default from config)")
	cmd.Flags().IntVar(&maxExpansions, "max-expansions", -1, "expansion limit, 0 for none (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the solution as JSON")
	return cmd
}

func (a *app) newTabooCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taboo <warehouse-file>",
		Short: "Show the cells a box must never be pushed onto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sokoban.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sokoban.TabooCells(w))
			return nil
		},
	}
}

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <warehouse-file> <action>...",
		Short: "Replay an action sequence",
		Long: `Applies the actions in order and prints the resulting warehouse, or
"Impossible" if an action walks into a wall or pushes a box into a wall or
another box. Actions may be separated by spaces or commas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sokoban.Load(args[0])
			if err != nil {
				return err
			}
			actions, err := sokoban.ParseActions(splitTokens(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sokoban.CheckActions(w, actions))
			return nil
		},
	}
}

func splitTokens(args []string) []string {
	var tokens []string
	for _, arg := range args {
		for _, f := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
