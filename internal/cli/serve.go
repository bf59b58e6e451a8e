package cli

import (
	"github.com/spf13/cobra"

	"github.com/craftstat/craftstat/internal/server"
)

// serveCommand creates the serve command running the HTTP proxy.
func (c *CLI) serveCommand() *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP proxy exposing lookups as a JSON API",
		Long: `Serve starts an HTTP server that exposes status lookups over JSON:

  GET /healthz
  GET /v1/status/{edition}/{address}
  GET /v1/icon/{edition}/{address}

All requests share one cache and one upstream client, so many consumers
stay within the status API's rate limit together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := c.newClient(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			addr := c.cfg.BindAddr
			if bind != "" {
				addr = bind
			}

			return server.New(addr, client, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides config)")

	return cmd
}
