package main

import (
	"errors"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/internal/viewer"
	"github.com/spf13/cobra"
)

func (a *app) newPlayCmd() *cobra.Command {
	var (
		actionList string
		interval   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "play <warehouse-file>",
		Short: "Replay a solution in the terminal",
		Long: `Solves the warehouse, or takes the sequence given with --actions, and
steps through it interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := sokoban.Load(args[0])
			if err != nil {
				return err
			}

			var actions []sokoban.Action
			if actionList != "" {
				if actions, err = sokoban.ParseActions(splitTokens([]string{actionList})); err != nil {
					return err
				}
			} else {
				solution, _, err := a.solve(cmd.Context(), w, a.solveOptions(-1, -1)...)
				if err != nil {
					return err
				}
				if !solution.Solved {
					return errors.New("warehouse is impossible, nothing to play")
				}
				actions = solution.Actions
			}

			if fd := os.Stdin.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errors.New("play needs an interactive terminal")
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			player, err := viewer.NewPlayer(screen, w, actions)
			if err != nil {
				return err
			}
			player.SetInterval(interval)
			return player.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&actionList, "actions", "", "comma separated actions to replay instead of solving")
	cmd.Flags().DurationVar(&interval, "interval", 300*time.Millisecond, "delay between frames while playing")
	return cmd
}
