// Package cli implements the transitnet command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/arslanmit/istanbul-transportation-network/pkg/buildinfo"
	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/config"
	"github.com/arslanmit/istanbul-transportation-network/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "transitnet"

	// defaultConfigFile is looked up in the working directory when
	// --config is not given.
	defaultConfigFile = "transitnet.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "transitnet",
		Short:        "Transitnet analyzes public transport networks",
		Long:         `Transitnet builds a directed graph from stop and line tables, computes frequency-derived weights and betweenness centrality, and renders annotated maps highlighting the busiest corridors.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./transitnet.toml)")

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the effective configuration. An explicit --config path
// must exist; the default path is optional.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, false)
	}
	return config.Load(defaultConfigFile, true)
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.CacheBackendRedis {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/transitnet/).
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

// pipelineOptions maps configuration onto pipeline options. Flag values
// override these afterwards.
func pipelineOptions(cfg config.Config) pipeline.Options {
	cutoff := cfg.Analysis.Cutoff
	if cutoff == 0 {
		// The config uses 0 to disable the hop bound.
		cutoff = -1
	}
	threshold := cfg.Analysis.EdgeThreshold
	return pipeline.Options{
		Cutoff:        cutoff,
		EdgeThreshold: &threshold,
		TopK:          cfg.Analysis.TopK,
		Zoom:          cfg.Render.Zoom,
		Width:         cfg.Render.Width,
		Height:        cfg.Render.Height,
		TileURL:       cfg.Tiles.URLTemplate,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatMap}
	}
	return strings.Split(s, ",")
}
