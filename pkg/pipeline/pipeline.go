// Package pipeline runs the complete load → analyze → render sequence.
//
// This package implements the pipeline shared by every CLI command, so
// loading, centrality analysis, and rendering behave identically no
// matter which entry point triggered them.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the stop and line tables and expand lines into edges
//  2. Analyze: build the network, derive weights, compute betweenness
//  3. Render: produce artifacts (map PNG, schematic, GeoJSON, JSON)
//
// Each stage can run independently or as part of the complete pipeline.
// Analysis and render results are cached by content hash, so re-running
// with unchanged inputs is instant.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    StopsPath: "stops.csv",
//	    LinesPath: "lines.csv",
//	    Formats:   []string{"map"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["map"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
	"github.com/arslanmit/istanbul-transportation-network/pkg/render"
)

// Defaults applied by ValidateAndSetDefaults. The cutoff and threshold
// values match the shipped configuration defaults.
const (
	// DefaultCutoff bounds edge-betweenness paths to this many hops.
	DefaultCutoff = 10

	// DefaultEdgeThreshold is the log-betweenness below which edges drop
	// out of filtered renderings.
	DefaultEdgeThreshold = 3.0

	// DefaultTopK is the length of the stop ranking.
	DefaultTopK = 20

	// DefaultZoom is the basemap zoom level for map artifacts.
	DefaultZoom = 11

	// DefaultWidth and DefaultHeight are the map artifact dimensions.
	DefaultWidth  = 1600
	DefaultHeight = 1200
)

// Artifact format names accepted in Options.Formats.
const (
	FormatMap       = "map"
	FormatSchematic = "schematic"
	FormatGeoJSON   = "geojson"
	FormatJSON      = "json"
	FormatDOT       = "dot"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatMap:       true,
	FormatSchematic: true,
	FormatGeoJSON:   true,
	FormatJSON:      true,
	FormatDOT:       true,
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	StopsPath string `json:"stops_path"`
	LinesPath string `json:"lines_path"`
	Refresh   bool   `json:"refresh,omitempty"`

	// Analysis options. Cutoff 0 takes the default; a negative cutoff
	// removes the hop bound entirely. A nil EdgeThreshold takes the
	// default; an explicit zero filters at zero.
	Cutoff        int      `json:"cutoff,omitempty"`
	EdgeThreshold *float64 `json:"edge_threshold,omitempty"`
	Filter        bool     `json:"filter,omitempty"`
	TopK          int      `json:"top_k,omitempty"`

	// Render options. An empty TileURL renders maps without a basemap.
	Formats []string `json:"formats,omitempty"`
	Zoom    int      `json:"zoom,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	TileURL string   `json:"tile_url,omitempty"`
	Metric  string   `json:"metric,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs and artifact metadata.
	RunID string

	// Network is the analyzed transit network.
	Network *netgraph.Network

	// NetworkHash is the content hash of the analyzed network.
	NetworkHash string

	// Degenerate reports that all edge frequencies were equal and
	// weights fell back to uniform.
	Degenerate bool

	// SkippedLoops counts self-loop traversals dropped during build.
	SkippedLoops int

	// Ranking is the top-k stop list by betweenness.
	Ranking []netgraph.RankedStop

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StopCount   int
	EdgeCount   int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // analyzed network came from cache
	RenderHit   bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format %q (must be one of: map, schematic, geojson, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Calling it more than once is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetAnalysisDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.StopsPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "stops path is required")
	}
	if o.LinesPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "lines path is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetAnalysisDefaults applies analysis defaults.
func (o *Options) SetAnalysisDefaults() {
	if o.Cutoff == 0 {
		o.Cutoff = DefaultCutoff
	}
	if o.EdgeThreshold == nil {
		v := DefaultEdgeThreshold
		o.EdgeThreshold = &v
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and validates formats.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatMap}
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	if o.Zoom < 1 || o.Zoom > 19 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom must be in [1, 19], got %d", o.Zoom)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Metric == "" {
		o.Metric = string(render.MetricBetweenness)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// maxHops translates the option value for the betweenness routine, where
// zero disables the bound.
func (o *Options) maxHops() int {
	if o.Cutoff < 0 {
		return 0
	}
	return o.Cutoff
}

// edgeThreshold returns the effective filter threshold.
func (o *Options) edgeThreshold() float64 {
	if o.EdgeThreshold == nil {
		return DefaultEdgeThreshold
	}
	return *o.EdgeThreshold
}

// AnalysisKeyOpts returns cache key options for the analysis stage.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	threshold := 0.0
	if o.Filter {
		threshold = o.edgeThreshold()
	}
	return cache.AnalysisKeyOpts{
		Cutoff:        float64(o.maxHops()),
		EdgeThreshold: threshold,
		Filter:        o.Filter,
		TopK:          o.TopK,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:      format,
		Format:    o.Metric,
		Zoom:      o.Zoom,
		Width:     o.Width,
		Height:    o.Height,
		Threshold: o.edgeThreshold(),
	}
}
