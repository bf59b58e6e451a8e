// Package cli implements the craftstat command-line interface.
//
// This package provides commands for looking up Minecraft server status
// through the api.mcsrvstat.us pipeline, watching a server live, running
// the JSON proxy, and managing the local lookup cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - fetch: Look up a server's status once and print it
//   - watch: Poll a server and render a live terminal dashboard
//   - serve: Run the HTTP proxy exposing lookups as a JSON API
//   - cache: Manage the on-disk lookup cache
package cli

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/craftstat/craftstat/internal/config"
	"github.com/craftstat/craftstat/pkg/buildinfo"
	"github.com/craftstat/craftstat/pkg/cache"
	"github.com/craftstat/craftstat/pkg/errors"
	"github.com/craftstat/craftstat/pkg/mcsrvstat"
)

// appName is the application name used for directories and display.
const appName = "craftstat"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Craftstat looks up Minecraft server status",
		Long:         `Craftstat queries the api.mcsrvstat.us status API for Java and Bedrock Minecraft servers, with short-lived caching and request de-duplication to stay friendly to the API's rate limiter.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (default ~/.config/craftstat/config.toml)")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient builds a status client from the loaded config. The returned
// cleanup func closes the cache backend and must run after the client is
// done.
func (c *CLI) newClient(ctx context.Context, noCache bool) (*mcsrvstat.Client, func(), error) {
	backend, err := c.newBackend(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}

	client := mcsrvstat.New(
		mcsrvstat.WithCache(backend),
		mcsrvstat.WithTTL(c.cfg.TTL),
		mcsrvstat.WithTimeout(c.cfg.Timeout),
		mcsrvstat.WithRetries(c.cfg.Retries),
		mcsrvstat.WithBaseURL(c.cfg.BaseURL),
		mcsrvstat.WithUserAgent(c.cfg.UserAgent),
		mcsrvstat.WithLogger(c.Logger),
	)

	cleanup := func() {
		_ = client.Close()
		_ = backend.Close()
	}
	return client, cleanup, nil
}

func (c *CLI) newBackend(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, c.cfg.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/craftstat/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Argument Parsing
// =============================================================================

// parseQuery turns a command-line address argument into a Query. The
// address is host or host:port; the edition flag picks the API family.
func parseQuery(address string, bedrock bool) (mcsrvstat.Query, error) {
	host, port := address, 0
	if strings.Contains(address, ":") {
		h, p, err := net.SplitHostPort(address)
		if err != nil {
			return mcsrvstat.Query{}, errors.New(errors.ErrCodeInvalidQuery,
				"invalid address %q", address)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return mcsrvstat.Query{}, errors.New(errors.ErrCodeInvalidQuery,
				"invalid port %q", p)
		}
		host, port = h, n
	}

	edition := mcsrvstat.EditionJava
	if bedrock {
		edition = mcsrvstat.EditionBedrock
	}
	return mcsrvstat.Query{Host: host, Port: port, Edition: edition}, nil
}
