// Package cache provides byte-level caching for pipeline stages and map tiles.
//
// Three backends implement the [Cache] interface:
//   - FileCache: content-addressed files under the XDG cache dir (CLI default)
//   - RedisCache: shared backend for long-lived installations
//   - NullCache: no-op, used when caching is disabled
//
// Keys are produced by a [Keyer] so that the same inputs and parameters
// always map to the same entry, regardless of backend.
package cache

import (
	"context"
	"time"
)

// TTLs for the different entry classes. Network and analysis entries are
// derived purely from input files and parameters, so they can live long;
// tiles follow common tile-usage policies and expire sooner.
const (
	TTLNetwork  = 30 * 24 * time.Hour
	TTLAnalysis = 30 * 24 * time.Hour
	TTLTile     = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with per-entry TTL.
// A TTL of 0 means the entry never expires.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NetworkKeyOpts captures the parameters that affect graph construction.
type NetworkKeyOpts struct {
	Directed bool
}

// AnalysisKeyOpts captures the parameters that affect centrality results.
// Filter distinguishes a run filtered at threshold zero from an
// unfiltered one.
type AnalysisKeyOpts struct {
	Cutoff        float64
	EdgeThreshold float64
	Filter        bool
	TopK          int
}

// ArtifactKeyOpts captures the parameters that affect rendered output.
type ArtifactKeyOpts struct {
	Kind      string // "map", "schematic", "geojson"
	Format    string
	Zoom      int
	Width     int
	Height    int
	Threshold float64
}

// Keyer generates cache keys for the different entry classes.
type Keyer interface {
	// NetworkKey keys a built network by the content hashes of both
	// input tables plus construction options.
	NetworkKey(stopsHash, linesHash string, opts NetworkKeyOpts) string

	// AnalysisKey keys centrality results by the network hash and
	// analysis parameters.
	AnalysisKey(networkHash string, opts AnalysisKeyOpts) string

	// TileKey keys a basemap tile by provider URL template and tile
	// coordinates.
	TileKey(urlTemplate string, zoom, x, y int) string

	// ArtifactKey keys a rendered artifact by the analysis hash and
	// render options.
	ArtifactKey(analysisHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// NetworkKey generates a key for a built network.
func (k *DefaultKeyer) NetworkKey(stopsHash, linesHash string, opts NetworkKeyOpts) string {
	return hashKey("network", stopsHash, linesHash, opts)
}

// AnalysisKey generates a key for centrality results.
func (k *DefaultKeyer) AnalysisKey(networkHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", networkHash, opts)
}

// TileKey generates a key for a basemap tile.
func (k *DefaultKeyer) TileKey(urlTemplate string, zoom, x, y int) string {
	return hashKey("tile", urlTemplate, zoom, x, y)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(analysisHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", analysisHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
