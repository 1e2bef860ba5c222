// Package render draws analyzed transit networks.
//
// # Overview
//
// Two visual styles are supported:
//
//   - Map: stops and edges drawn over a web-mercator basemap, with edge
//     color and width driven by an analysis metric. Produced with 2D
//     canvas drawing, output as PNG.
//   - Schematic: a node-link diagram laid out by Graphviz, useful when
//     geographic positions would overlap too much to read.
//
// # Usage
//
// Render an annotated map:
//
//	png, err := render.Map(g, basemap, render.MapOptions{TopK: 20})
//
// Render a schematic:
//
//	dot := render.ToDOT(g, render.DOTOptions{})
//	svg, err := render.SVG(ctx, dot)
//
// Both styles read the metric fields populated by the analysis phase;
// rendering an unanalyzed network draws uniform edges.
package render
