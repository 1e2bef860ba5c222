package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arslanmit/istanbul-transportation-network/pkg/pipeline"
)

// artifactExt maps artifact formats to file extensions.
var artifactExt = map[string]string{
	pipeline.FormatMap:       "png",
	pipeline.FormatSchematic: "svg",
	pipeline.FormatGeoJSON:   "geojson",
	pipeline.FormatJSON:      "json",
	pipeline.FormatDOT:       "dot",
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		stopsPath  string
		linesPath  string
		output     string
		formatsStr string
		metric     string
		zoom       int
		width      int
		height     int
		cutoff     int
		threshold  float64
		filter     bool
		topK       int
		noBasemap  bool
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the analyzed network as map, schematic, or data files",
		Long: `Render the analyzed network as map, schematic, or data files.

Formats:
  map        annotated PNG over an OpenStreetMap basemap
  schematic  Graphviz node-link SVG
  geojson    stops and edges with metric properties
  json       the full analyzed network
  dot        Graphviz DOT source

The map draws edges colored and sized by the chosen --metric, stop
markers sized by betweenness, and labels for the top-ranked stops. Use
--no-basemap to skip tile fetching and draw on a plain background.

Artifacts are cached by network content and render parameters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			opts := pipelineOptions(cfg)
			opts.StopsPath = stopsPath
			opts.LinesPath = linesPath
			opts.Refresh = refresh
			opts.Filter = filter
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if cmd.Flags().Changed("metric") {
				opts.Metric = metric
			}
			if cmd.Flags().Changed("zoom") {
				opts.Zoom = zoom
			}
			if cmd.Flags().Changed("width") {
				opts.Width = width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = height
			}
			if cmd.Flags().Changed("cutoff") {
				opts.Cutoff = cutoff
			}
			if cmd.Flags().Changed("threshold") {
				opts.EdgeThreshold = &threshold
			}
			if cmd.Flags().Changed("top") {
				opts.TopK = topK
			}
			if noBasemap {
				opts.TileURL = ""
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Rendering network...")
			spinner.Start()

			result, err := runner.Execute(ctx, opts)
			if err != nil {
				spinner.StopWithError("Rendering failed")
				return err
			}
			spinner.Stop()

			printSuccess("Rendering complete")
			printStats(result.Stats.StopCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)

			return writeArtifacts(result.Artifacts, opts.Formats, output)
		},
	}

	cmd.Flags().StringVarP(&stopsPath, "stops", "s", "", "stop table CSV (required)")
	cmd.Flags().StringVarP(&linesPath, "lines", "l", "", "line table CSV (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): map (default), schematic, geojson, json, dot (comma-separated)")
	cmd.Flags().StringVar(&metric, "metric", "betweenness", "edge metric for the map: betweenness, weight")
	cmd.Flags().IntVar(&zoom, "zoom", pipeline.DefaultZoom, "basemap zoom level")
	cmd.Flags().IntVar(&width, "width", pipeline.DefaultWidth, "map width in pixels")
	cmd.Flags().IntVar(&height, "height", pipeline.DefaultHeight, "map height in pixels")
	cmd.Flags().IntVar(&cutoff, "cutoff", pipeline.DefaultCutoff, "betweenness path cutoff in hops (-1 for unbounded)")
	cmd.Flags().Float64Var(&threshold, "threshold", pipeline.DefaultEdgeThreshold, "log-betweenness filter threshold")
	cmd.Flags().BoolVar(&filter, "filter", false, "drop edges below the threshold before rendering")
	cmd.Flags().IntVar(&topK, "top", pipeline.DefaultTopK, "number of labeled stops")
	cmd.Flags().BoolVar(&noBasemap, "no-basemap", false, "draw on a plain background instead of fetching tiles")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	_ = cmd.MarkFlagRequired("stops")
	_ = cmd.MarkFlagRequired("lines")

	return cmd
}

// writeArtifacts writes each rendered artifact to disk. With a single
// format the output path is used verbatim (or derived as network.<ext>);
// with several formats the output acts as a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	base := basePath(output)

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		var path string
		if len(formats) == 1 && output != "" {
			path = output
		} else {
			path = fmt.Sprintf("%s.%s", base, artifactExt[format])
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path, stripping a known artifact
// extension when present.
func basePath(output string) string {
	if output == "" {
		return "network"
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, known := range artifactExt {
		if ext == known {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}
