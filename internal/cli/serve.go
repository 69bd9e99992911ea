package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/internal/httpapi"
	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.config.GetString(cfgKeyListen)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withBackend(func(b *kitbox.Backend) error {
				cfg := b.Config()
				a.logger.Info().
					Str("backend", cfg.Backend).
					Str("data_dir", cfg.DataDir).
					Msg("inventory attached")

				srv := httpapi.NewServer(b, httpapi.Options{
					CORSOrigins: a.corsOrigins(),
					Version:     kitbox.Version,
					Logger:      a.logger,
				})
				return srv.Run(ctx, listen)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default from config, :5000)")
	return cmd
}
