package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
	"github.com/arslanmit/istanbul-transportation-network/pkg/tiles"
)

// Metric selects which edge value drives color and width on the map.
type Metric string

const (
	// MetricWeight colors edges by their normalized log frequency weight.
	MetricWeight Metric = "weight"
	// MetricBetweenness colors edges by log edge betweenness.
	MetricBetweenness Metric = "betweenness"
)

// MapOptions configures annotated map rendering.
type MapOptions struct {
	// Width and Height are the output size in pixels. Zero values fall
	// back to 1600x1200.
	Width  int
	Height int

	// Metric drives edge color and width. Defaults to MetricBetweenness.
	Metric Metric

	// TopK is how many stops get name labels, ranked by betweenness.
	// 0 disables labels.
	TopK int
}

// Edge color ramp endpoints, low to high metric value.
var (
	rampLow  = color.NRGBA{R: 68, G: 119, B: 170, A: 200}
	rampHigh = color.NRGBA{R: 204, G: 51, B: 68, A: 230}
)

// Map draws the network as a PNG. When basemap is non-nil, stops project
// onto it through its web-mercator origin; otherwise the network bounds
// are fit to the canvas with padding, which keeps rendering usable
// offline.
func Map(g *netgraph.Network, basemap *tiles.Basemap, opts MapOptions) ([]byte, error) {
	if g.NodeCount() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "cannot render an empty network")
	}
	if opts.Width <= 0 {
		opts.Width = 1600
	}
	if opts.Height <= 0 {
		opts.Height = 1200
	}
	if opts.Metric == "" {
		opts.Metric = MetricBetweenness
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	if basemap != nil {
		dc.DrawImage(basemap.Image, 0, 0)
	} else {
		dc.SetRGB(1, 1, 1)
		dc.Clear()
	}

	project := projector(g, basemap, opts.Width, opts.Height)

	lo, hi := metricRange(g, opts.Metric)
	for _, e := range g.Edges() {
		from, to := g.Node(e.From), g.Node(e.To)
		x1, y1 := project(from.Lon, from.Lat)
		x2, y2 := project(to.Lon, to.Lat)

		t := normalize(metricValue(e, opts.Metric), lo, hi)
		dc.SetColor(lerpColor(rampLow, rampHigh, t))
		dc.SetLineWidth(1.5 + 3.5*t)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	maxB := 0.0
	for _, n := range g.Nodes() {
		if n.Betweenness > maxB {
			maxB = n.Betweenness
		}
	}
	for _, n := range g.Nodes() {
		x, y := project(n.Lon, n.Lat)
		r := 3.0
		if maxB > 0 {
			r += 7 * (n.Betweenness / maxB)
		}
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.DrawCircle(x, y, r+1.2)
		dc.Fill()
		dc.SetColor(rampHigh)
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}

	if opts.TopK > 0 {
		drawLabels(dc, g, project, opts.TopK)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode map PNG")
	}
	return buf.Bytes(), nil
}

// drawLabels annotates the top-k stops by betweenness. Without a usable
// system font the map ships unlabeled rather than failing.
func drawLabels(dc *gg.Context, g *netgraph.Network, project func(lon, lat float64) (float64, float64), k int) {
	path := labelFontPath()
	if path == "" {
		return
	}
	if err := dc.LoadFontFace(path, 13); err != nil {
		return
	}

	for _, s := range g.TopStops(k) {
		x, y := project(s.Lon, s.Lat)
		label := fmt.Sprintf("%d. %s", s.Rank, s.Name)

		w, h := dc.MeasureString(label)
		dc.SetRGBA(1, 1, 1, 0.85)
		dc.DrawRoundedRectangle(x+8, y-h/2-3, w+8, h+6, 3)
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(label, x+12, y, 0, 0.35)
	}
}

// projector returns the lon/lat to canvas mapping for this render. With
// a basemap the projection is fixed by the basemap origin; without one
// the network bounds fill the canvas with a 6% margin.
func projector(g *netgraph.Network, basemap *tiles.Basemap, width, height int) func(lon, lat float64) (float64, float64) {
	if basemap != nil {
		return basemap.Project
	}

	bound := g.Bound()
	spanLon := bound.Max[0] - bound.Min[0]
	spanLat := bound.Max[1] - bound.Min[1]
	if spanLon == 0 {
		spanLon = 1e-6
	}
	if spanLat == 0 {
		spanLat = 1e-6
	}

	marginX := float64(width) * 0.06
	marginY := float64(height) * 0.06
	innerW := float64(width) - 2*marginX
	innerH := float64(height) - 2*marginY

	return func(lon, lat float64) (float64, float64) {
		x := marginX + (lon-bound.Min[0])/spanLon*innerW
		y := marginY + (bound.Max[1]-lat)/spanLat*innerH
		return x, y
	}
}

func metricValue(e *netgraph.Edge, m Metric) float64 {
	if m == MetricWeight {
		return e.Weight
	}
	return e.LogBetweenness
}

func metricRange(g *netgraph.Network, m Metric) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, e := range g.Edges() {
		v := metricValue(e, m)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func normalize(v, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + t*(float64(y)-float64(x)))
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}
