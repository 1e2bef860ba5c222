package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
)

func buildNetwork(t *testing.T) *netgraph.Network {
	t.Helper()
	g := netgraph.New()
	stops := []netgraph.Node{
		{ID: "S1", Name: "Taksim", Lat: 41.0370, Lon: 28.9850},
		{ID: "S2", Name: "Kabatas", Lat: 41.0339, Lon: 28.9930},
		{ID: "S3", Name: "Eminonu", Lat: 41.0175, Lon: 28.9708},
	}
	for _, s := range stops {
		if err := g.AddStop(s); err != nil {
			t.Fatal(err)
		}
	}
	for _, tr := range [][3]string{{"S1", "S2", "F1"}, {"S2", "S3", "T1"}} {
		if err := g.AddTraversal(tr[0], tr[1], tr[2]); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := g.ComputeWeights(); err != nil {
		t.Fatal(err)
	}
	g.ComputeNodeBetweenness()
	g.ComputeEdgeBetweenness(0)
	return g
}

func TestToDOTStructure(t *testing.T) {
	g := buildNetwork(t)
	dot := ToDOT(g, DOTOptions{})

	if !strings.HasPrefix(dot, "digraph transit {") {
		t.Error("DOT should open a digraph")
	}
	for _, want := range []string{
		`"S1" [label="Taksim"]`,
		`"S1" -> "S2"`,
		`"S2" -> "S3"`,
		"penwidth=",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	g := buildNetwork(t)
	dot := ToDOT(g, DOTOptions{Detailed: true})
	if !strings.Contains(dot, "b=") {
		t.Errorf("detailed DOT should carry betweenness in labels:\n%s", dot)
	}
}

func TestMapWithoutBasemap(t *testing.T) {
	g := buildNetwork(t)
	data, err := Map(g, nil, MapOptions{Width: 400, Height: 300, TopK: 3})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestMapEmptyNetwork(t *testing.T) {
	_, err := Map(netgraph.New(), nil, MapOptions{})
	if !errors.Is(err, errors.ErrCodeEmptyGraph) {
		t.Errorf("got %v, want EMPTY_GRAPH", err)
	}
}

func TestMapMetricDefaults(t *testing.T) {
	g := buildNetwork(t)
	for _, m := range []Metric{MetricWeight, MetricBetweenness} {
		if _, err := Map(g, nil, MapOptions{Width: 200, Height: 150, Metric: m}); err != nil {
			t.Errorf("Map(%s): %v", m, err)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 120.25 240.00">`)
	out := normalizeViewBox(in)
	want := `viewBox="0 0 120.25 240.00" width="120" height="240"`
	if !strings.Contains(string(out), want) {
		t.Errorf("normalized SVG = %s, want it to contain %q", out, want)
	}
}
