package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yashubustudio/symptomcheck/internal/server"
)

func newServeCmd(env *environment) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagnosis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = env.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := server.New(env.service, env.i18n, env.logger)
			env.logger.Infow("listening", "addr", addr, "language", env.cfg.Language)
			if err := server.Run(ctx, app, addr); err != nil {
				return err
			}
			env.logger.Infow("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
