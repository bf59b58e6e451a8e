package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/craftstat/craftstat/pkg/mcsrvstat"
)

// fetchCommand creates the fetch command for one-shot status lookups.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		bedrock  bool
		jsonOut  bool
		noCache  bool
		refresh  bool
		saveIcon string
	)

	cmd := &cobra.Command{
		Use:   "fetch <host[:port]>",
		Short: "Look up a server's status once and print it",
		Long: `Fetch queries the status API for one server and prints the result.

The address is a hostname or IP, optionally with a port. Without a port
the edition default applies (25565 for Java, 19132 for Bedrock).

Results are cached briefly on disk; --refresh forces a fresh upstream
request and --no-cache skips the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			q, err := parseQuery(args[0], bedrock)
			if err != nil {
				return err
			}

			client, cleanup, err := c.newClient(ctx, noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			if refresh {
				if err := client.Invalidate(ctx, q); err != nil {
					return err
				}
			}

			var sp *spinner
			if !jsonOut {
				sp = startSpinner("looking up " + q.Address())
			}
			st, err := client.GetStatus(ctx, q)
			if sp != nil {
				sp.stop()
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(st)
			}
			printStatus(q, st)

			if saveIcon != "" {
				if err := writeIcon(cmd, client, q, saveIcon); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&bedrock, "bedrock", false, "query the Bedrock edition API")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the lookup cache entirely")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop any cached result before looking up")
	cmd.Flags().StringVar(&saveIcon, "save-icon", "", "write the server icon PNG to this path")

	return cmd
}

// statusJSON is the --json envelope. Timing fields are excluded from the
// status type's own encoding, so they ride alongside it here.
type statusJSON struct {
	*mcsrvstat.ServerStatus
	LatencyMS   int64     `json:"latency_ms"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

func printJSON(st *mcsrvstat.ServerStatus) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(statusJSON{
		ServerStatus: st,
		LatencyMS:    st.Latency.Milliseconds(),
		RetrievedAt:  st.RetrievedAt,
	})
}

func printStatus(q mcsrvstat.Query, st *mcsrvstat.ServerStatus) {
	if st.Online {
		fmt.Println(styleOnline.Render("● online") + "  " + styleValue.Render(q.Address()))
	} else {
		fmt.Println(styleOffline.Render("○ offline") + "  " + styleValue.Render(q.Address()))
		return
	}

	if st.IP != "" {
		addr := st.IP
		if st.Port != 0 {
			addr = fmt.Sprintf("%s:%d", st.IP, st.Port)
		}
		printKeyValue("ip", addr)
	}
	if st.Version != nil {
		printKeyValue("version", *st.Version)
	}
	if st.Software != nil {
		printKeyValue("software", *st.Software)
	}
	if st.Players != nil {
		players := fmt.Sprintf("%d / %d", st.Players.Online, st.Players.Max)
		if len(st.Players.List) > 0 {
			names := make([]string, 0, len(st.Players.List))
			for _, p := range st.Players.List {
				names = append(names, p.Name)
			}
			players += styleDim.Render("  (" + strings.Join(names, ", ") + ")")
		}
		printKeyValue("players", players)
	}
	if st.Motd != nil && len(st.Motd.Clean) > 0 {
		printKeyValue("motd", strings.Join(st.Motd.Clean, " / "))
	}
	if st.Gamemode != nil {
		printKeyValue("gamemode", *st.Gamemode)
	}
	if len(st.Plugins) > 0 {
		printKeyValue("plugins", fmt.Sprintf("%d installed", len(st.Plugins)))
	}
	if len(st.Mods) > 0 {
		printKeyValue("mods", fmt.Sprintf("%d installed", len(st.Mods)))
	}
	if st.EULABlocked != nil && *st.EULABlocked {
		printWarning("server is blocked by Mojang (EULA)")
	}

	printDetail("latency %s · retrieved %s",
		st.Latency.Round(time.Millisecond),
		st.RetrievedAt.Format("15:04:05"))
}

func writeIcon(cmd *cobra.Command, client *mcsrvstat.Client, q mcsrvstat.Query, path string) error {
	data, err := client.GetIcon(cmd.Context(), q)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}
	printSuccess("Saved server icon")
	printFile(path)
	return nil
}
