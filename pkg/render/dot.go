package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
)

// DOTOptions configures schematic diagram generation.
type DOTOptions struct {
	// Detailed includes betweenness values in node labels.
	// When false, only the stop name is shown.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT format for schematic
// visualization. The resulting DOT string can be rendered with [SVG] or
// [PNG], or processed by external Graphviz tools.
//
// Edge pen width follows log edge betweenness, so corridors read thicker
// than feeder segments after analysis.
func ToDOT(g *netgraph.Network, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph transit {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, fixedsize=false];\n")
	buf.WriteString("  edge [color=\"#4477aa\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtStopLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	lo, hi := metricRange(g, MetricBetweenness)
	for _, e := range g.Edges() {
		width := 0.5 + 2.5*normalize(e.LogBetweenness, lo, hi)
		fmt.Fprintf(&buf, "  %q -> %q [penwidth=%.2f];\n", e.From, e.To, width)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtStopLabel(n *netgraph.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if detailed {
		label = fmt.Sprintf("%s\nb=%.4f", label, n.Betweenness)
	}
	return label
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG, normalizeViewBox)
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG, nil)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render schematic")
	}

	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root SVG tag so the viewBox starts at the
// origin and explicit pixel dimensions are present, which keeps browsers
// and converters consistent about the drawing size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
