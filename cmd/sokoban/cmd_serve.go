package main

import (
	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/sokoban/internal/server"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Starts the JSON API under /v1/sokoban (solve, taboo, check, explore,
health) and Prometheus metrics at /metrics. Stops cleanly on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			opts := server.Options{
				SolveTimeout:  a.cfg.Batch.Timeout,
				MaxExpansions: a.cfg.Search.MaxExpansions,
			}
			store, err := a.solver()
			if err != nil {
				return err
			}
			if store != nil {
				opts.Solver = store
			}

			gin.SetMode(gin.ReleaseMode)
			router := server.NewRouter(server.NewHandlers(opts), a.logger.Slog(), a.cfg.Server.MaxBodyBytes)
			return server.Serve(cmd.Context(), addr, router)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
