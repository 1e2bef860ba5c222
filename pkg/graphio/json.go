// Package graphio serializes the transit network for caching, the
// load/analyze/render command boundary, and GeoJSON export.
//
// The JSON format is designed for round-trip fidelity: export followed by
// re-import produces an identical network, including computed weights and
// betweenness values, so each pipeline stage can run in a separate
// process invocation.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
)

type network struct {
	Uniform bool   `json:"uniform_weights,omitempty"`
	Nodes   []node `json:"nodes"`
	Edges   []edge `json:"edges"`
}

type node struct {
	ID             string  `json:"cdk_id"`
	Name           string  `json:"name,omitempty"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Betweenness    float64 `json:"betweenness,omitempty"`
	LogBetweenness float64 `json:"log_betweenness,omitempty"`
}

type edge struct {
	From           string   `json:"from"`
	To             string   `json:"to"`
	Lines          []string `json:"lines,omitempty"`
	Freq           int      `json:"freq"`
	Weight         float64  `json:"weight,omitempty"`
	Betweenness    float64  `json:"betweenness,omitempty"`
	LogBetweenness float64  `json:"log_betweenness,omitempty"`
}

// WriteJSON encodes a network as indented JSON and writes it to w.
// Nodes and edges appear in deterministic (ID-sorted) order so identical
// networks always serialize to identical bytes.
func WriteJSON(g *netgraph.Network, w io.Writer) error {
	out := network{
		Uniform: g.UniformWeights(),
		Nodes:   make([]node, 0, g.NodeCount()),
		Edges:   make([]edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{
			ID:             n.ID,
			Name:           n.Name,
			Lat:            n.Lat,
			Lon:            n.Lon,
			Betweenness:    n.Betweenness,
			LogBetweenness: n.LogBetweenness,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{
			From:           e.From,
			To:             e.To,
			Lines:          e.Lines,
			Freq:           e.Freq,
			Weight:         e.Weight,
			Betweenness:    e.Betweenness,
			LogBetweenness: e.LogBetweenness,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON network from r.
//
// Each node must have a "cdk_id"; each edge must reference known node ids
// with "from"/"to" and carries its aggregated frequency. Computed values
// (weight, betweenness) are restored verbatim. Errors are wrapped with
// the node or edge that caused them.
func ReadJSON(r io.Reader) (*netgraph.Network, error) {
	var data network
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := netgraph.New()
	for _, n := range data.Nodes {
		err := g.AddStop(netgraph.Node{
			ID:             n.ID,
			Name:           n.Name,
			Lat:            n.Lat,
			Lon:            n.Lon,
			Betweenness:    n.Betweenness,
			LogBetweenness: n.LogBetweenness,
		})
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	for _, e := range data.Edges {
		if e.Freq < 1 {
			return nil, fmt.Errorf("edge %s->%s: frequency %d below 1", e.From, e.To, e.Freq)
		}
		for i := 0; i < e.Freq; i++ {
			line := ""
			if i < len(e.Lines) {
				line = e.Lines[i]
			}
			if err := g.AddTraversal(e.From, e.To, line); err != nil {
				return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
			}
		}
		ge := g.Edge(e.From, e.To)
		ge.Lines = e.Lines
		ge.Weight = e.Weight
		ge.Betweenness = e.Betweenness
		ge.LogBetweenness = e.LogBetweenness
	}

	g.SetUniformWeights(data.Uniform)
	return g, nil
}

// MarshalNetwork serializes a network to bytes, for cache storage and
// content hashing.
func MarshalNetwork(g *netgraph.Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalNetwork deserializes a network from bytes.
func UnmarshalNetwork(data []byte) (*netgraph.Network, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ExportJSON writes a network to a JSON file at path.
func ExportJSON(g *netgraph.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ImportJSON reads a network from a JSON file at path.
func ImportJSON(path string) (*netgraph.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
