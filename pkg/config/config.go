// Package config loads the optional transitnet.toml configuration file.
//
// Every value has a default, so the tool runs without any config file;
// CLI flags override config values, which override defaults. The
// betweenness cutoff and display threshold started life as empirically
// chosen constants, which is exactly why they live here instead of in
// the code.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

// Cache backend names accepted in the [cache] section.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the full transitnet.toml structure.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Render   Render   `toml:"render"`
	Tiles    Tiles    `toml:"tiles"`
	Cache    CacheCfg `toml:"cache"`
}

// Analysis holds centrality parameters.
type Analysis struct {
	// Cutoff bounds edge-betweenness paths to this many hops.
	// 0 disables the bound.
	Cutoff int `toml:"cutoff"`

	// EdgeThreshold is the log-betweenness below which edges are dropped
	// from corridor maps.
	EdgeThreshold float64 `toml:"edge_threshold"`

	// TopK is the length of the printed stop ranking.
	TopK int `toml:"top_k"`
}

// Render holds map output parameters.
type Render struct {
	Zoom   int `toml:"zoom"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Tiles holds basemap tile provider settings.
type Tiles struct {
	// URLTemplate is a slippy-map URL with {z}, {x}, {y} placeholders.
	URLTemplate string `toml:"url_template"`
}

// CacheCfg selects the cache backend.
type CacheCfg struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Analysis: Analysis{
			Cutoff:        10,
			EdgeThreshold: 3.0,
			TopK:          20,
		},
		Render: Render{
			Zoom:   11,
			Width:  1600,
			Height: 1200,
		},
		Tiles: Tiles{
			URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		},
		Cache: CacheCfg{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error when optional is true; any present file must parse
// and validate.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if optional {
			return cfg, nil
		}
		return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges. Zero values that Load would have filled
// from defaults are rejected here so a half-written config fails loudly.
func (c *Config) Validate() error {
	if c.Analysis.Cutoff < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "analysis.cutoff must be >= 0, got %d", c.Analysis.Cutoff)
	}
	if c.Analysis.TopK < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "analysis.top_k must be >= 0, got %d", c.Analysis.TopK)
	}
	if c.Render.Zoom < 1 || c.Render.Zoom > 19 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.zoom must be in [1, 19], got %d", c.Render.Zoom)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render dimensions must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Tiles.URLTemplate == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "tiles.url_template must not be empty")
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr required for the redis backend")
	}
	return nil
}
