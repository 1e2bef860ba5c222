package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/graphio"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
	"github.com/arslanmit/istanbul-transportation-network/pkg/render"
	"github.com/arslanmit/istanbul-transportation-network/pkg/tiles"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the DefaultKeyer; a nil cache disables
// caching via NullCache.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Analysis is the output of the analyze stage.
type Analysis struct {
	// Network carries weights and betweenness values after analysis.
	Network *netgraph.Network

	// SkippedLoops counts self-loop traversals dropped during build.
	// Zero when the analysis came from cache.
	SkippedLoops int

	// CacheHit reports whether the analyzed network came from cache.
	CacheHit bool
}

// Execute runs the complete load → analyze → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.New().String(),
		Artifacts: make(map[string][]byte),
	}

	loadStart := time.Now()
	loaded, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded input tables",
		"stops", len(loaded.Stops),
		"traversals", len(loaded.Records),
		"duration", result.Stats.LoadTime)

	analyzeStart := time.Now()
	analysis, err := r.Analyze(ctx, loaded, opts)
	if err != nil {
		return nil, err
	}
	g := analysis.Network
	result.Network = g
	result.Degenerate = g.UniformWeights()
	result.SkippedLoops = analysis.SkippedLoops
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.StopCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.AnalysisHit = analysis.CacheHit
	result.Ranking = g.TopStops(opts.TopK)

	if data, err := graphio.MarshalNetwork(g); err == nil {
		result.NetworkHash = cache.Hash(data)
	}

	r.Logger.Info("analyzed network",
		"stops", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cutoff", opts.maxHops(),
		"duration", result.Stats.AnalyzeTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Analyze builds the network from loaded tables and computes weights and
// betweenness, with caching keyed on the input content hashes and
// analysis parameters.
func (r *Runner) Analyze(ctx context.Context, loaded *LoadResult, opts Options) (*Analysis, error) {
	opts.SetAnalysisDefaults()
	r.applyLogger(&opts)

	networkKey := r.Keyer.NetworkKey(loaded.StopsHash, loaded.LinesHash, cache.NetworkKeyOpts{Directed: true})
	analysisKey := r.Keyer.AnalysisKey(networkKey, opts.AnalysisKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, analysisKey); err == nil && hit {
			if g, err := graphio.UnmarshalNetwork(data); err == nil {
				return &Analysis{Network: g, CacheHit: true}, nil
			}
			// A stale or corrupt entry falls through to recompute.
		}
	}

	g, skipped, err := netgraph.Build(loaded.Stops, loaded.Records)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		r.Logger.Warn("skipped self-loop traversals", "count", skipped)
	}

	degenerate, err := g.ComputeWeights()
	if err != nil {
		return nil, err
	}
	if degenerate {
		r.Logger.Warn("all edge frequencies equal, using uniform weights",
			"code", errors.ErrCodeDegenerateWeights)
	}

	g.ComputeNodeBetweenness()
	g.ComputeEdgeBetweenness(opts.maxHops())

	if opts.Filter {
		removed := g.FilterEdges(opts.edgeThreshold())
		r.Logger.Debug("filtered low-centrality edges",
			"threshold", opts.edgeThreshold(),
			"removed", removed)
	}

	if data, err := graphio.MarshalNetwork(g); err == nil {
		_ = r.Cache.Set(ctx, analysisKey, data, cache.TTLAnalysis)
	}

	return &Analysis{Network: g, SkippedLoops: skipped}, nil
}

// RenderWithCacheInfo produces all requested artifacts with caching and
// reports whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *netgraph.Network, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	data, err := graphio.MarshalNetwork(g)
	if err != nil {
		return nil, false, err
	}
	analysisHash := cache.Hash(data)

	artifacts := make(map[string][]byte)
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(analysisHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	artifacts = make(map[string][]byte)
	for _, format := range opts.Formats {
		out, err := r.renderArtifact(ctx, g, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = out
		key := r.Keyer.ArtifactKey(analysisHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, out, cache.TTLArtifact)
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *netgraph.Network, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

func (r *Runner) renderArtifact(ctx context.Context, g *netgraph.Network, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatMap:
		var basemap *tiles.Basemap
		if opts.TileURL != "" {
			center := g.Center()
			client := tiles.NewClient(opts.TileURL, r.Cache, r.Logger)
			bm, err := client.Basemap(ctx, center[0], center[1], opts.Zoom, opts.Width, opts.Height)
			if err != nil {
				return nil, err
			}
			basemap = bm
		}
		return render.Map(g, basemap, render.MapOptions{
			Width:  opts.Width,
			Height: opts.Height,
			Metric: render.Metric(opts.Metric),
			TopK:   opts.TopK,
		})

	case FormatSchematic:
		dot := render.ToDOT(g, render.DOTOptions{})
		return render.SVG(ctx, dot)

	case FormatDOT:
		return []byte(render.ToDOT(g, render.DOTOptions{Detailed: true})), nil

	case FormatGeoJSON:
		var buf bytes.Buffer
		if err := graphio.WriteGeoJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatJSON:
		return graphio.MarshalNetwork(g)

	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported artifact format %q", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
