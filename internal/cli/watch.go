package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/craftstat/craftstat/internal/tui"
)

// watchCommand creates the watch command for live polling.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		bedrock  bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <host[:port]>",
		Short: "Poll a server and render a live terminal dashboard",
		Long: `Watch polls the given server at a fixed cadence and renders the
latest status as a live terminal view. Polling goes through the lookup
cache, so intervals at or below the cache TTL cost no extra upstream
requests.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			q, err := parseQuery(args[0], bedrock)
			if err != nil {
				return err
			}
			if err := q.Validate(); err != nil {
				return err
			}

			client, cleanup, err := c.newClient(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if interval <= 0 {
				interval = c.cfg.TTL
			}

			model := tui.NewModel(ctx, client, q, interval)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&bedrock, "bedrock", false, "query the Bedrock edition API")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll cadence (defaults to the cache TTL)")

	return cmd
}
