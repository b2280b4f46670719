package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sleepq/cascade"
	"github.com/YuminosukeSato/sleepq/internal/config"
	"github.com/YuminosukeSato/sleepq/internal/server"
	"github.com/YuminosukeSato/sleepq/pkg/log"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Start an HTTP server exposing:
  POST /v1/predict   JSON feature input, returns the prediction outcome
  GET  /healthz      liveness probe
  GET  /metrics      Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.GetLogger()
			c, err := cascade.NewFromProfile(a.cfg.Profile(), a.cfg.ArtifactPaths(), cascade.WithLogger(logger))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("Cascade ready", "profile", string(a.cfg.Profile()), "tiers", len(c.Sources()))
			return server.New(c, server.WithLogger(logger)).Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = a.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	return cmd
}
