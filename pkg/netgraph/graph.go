// Package netgraph implements the directed transit network graph and its
// centrality analysis.
//
// The graph is a directed multigraph over stop identifiers: every line
// traversal of a consecutive stop pair is recorded, and parallel
// traversals are aggregated into a per-pair frequency. Frequencies are
// turned into normalized log weights, which drive weighted shortest-path
// betweenness centrality for both nodes and edges.
package netgraph

import (
	"errors"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidNodeID is returned by [Network.AddStop] when the stop ID
	// is empty. All stops must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("stop ID must not be empty")

	// ErrDuplicateNodeID is returned by [Network.AddStop] when a stop with
	// the same ID already exists. Stop IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate stop ID")

	// ErrUnknownSourceNode is returned by [Network.AddTraversal] when the
	// From stop does not exist in the network.
	ErrUnknownSourceNode = errors.New("unknown source stop")

	// ErrUnknownTargetNode is returned by [Network.AddTraversal] when the
	// To stop does not exist in the network.
	ErrUnknownTargetNode = errors.New("unknown target stop")

	// ErrSelfLoop is returned by [Network.AddTraversal] when a line lists
	// the same stop twice in a row. Self-loops carry no traffic
	// information and would break the shortest-path weighting.
	ErrSelfLoop = errors.New("self-loop traversal")

	// ErrEmptyGraph is returned by [Network.ComputeWeights] when the
	// network contains no edges, e.g. when every line had fewer than two
	// stops.
	ErrEmptyGraph = errors.New("network has no edges")
)

// Node is a transit stop in the network with its display attributes and,
// after analysis, its betweenness centrality.
type Node struct {
	ID   string  // Unique stop identifier
	Name string  // Display name
	Lat  float64 // Latitude in degrees
	Lon  float64 // Longitude in degrees

	// Betweenness is the node betweenness centrality, normalized to
	// [0, 1] with the directed-graph factor (n-1)(n-2). Zero until
	// [Network.ComputeNodeBetweenness] runs.
	Betweenness float64

	// LogBetweenness is ln(Betweenness) clamped at ln(epsilon) for
	// display contrast. Zero-centrality nodes get the clamp value.
	LogBetweenness float64
}

// Point returns the stop position as an orb point (lon, lat order).
func (n *Node) Point() orb.Point { return orb.Point{n.Lon, n.Lat} }

// Edge is an aggregated directed stop pair. Parallel line traversals of
// the same (from, to) pair collapse into one Edge with Freq > 1.
type Edge struct {
	From  string   // Source stop ID
	To    string   // Target stop ID
	Lines []string // Line IDs traversing this pair, in insertion order
	Freq  int      // Number of traversals across all lines

	// Weight is the normalized log frequency in [0, 1]: the most
	// traversed pair maps to 1.0, the least to 0.0. Set by
	// [Network.ComputeWeights].
	Weight float64

	// Betweenness is the raw edge betweenness: the number of
	// weighted-shortest-path pairs routed through this edge, as
	// estimated under the analysis cutoff.
	Betweenness float64

	// LogBetweenness is ln(Betweenness) clamped at ln(epsilon).
	LogBetweenness float64
}

// distance returns the shortest-path cost of traversing the edge. The
// normalized weight is used directly as the metric, clamped to a small
// epsilon so zero-weight edges never make parallel corridors free.
func (e *Edge) distance() float64 {
	return math.Max(e.Weight, distEpsilon)
}

const distEpsilon = 1e-6

// Network is a directed multigraph over stop identifiers with aggregated
// edge frequencies. The zero value is not usable - use New.
// Network is not safe for concurrent use without external synchronization.
type Network struct {
	nodes map[string]*Node
	edges map[[2]string]*Edge
	out   map[string][]*Edge // from stop ID -> outgoing aggregated edges

	traversals int  // total line traversals recorded
	uniform    bool // set when weight normalization degenerated
}

// New creates an empty network.
func New() *Network {
	return &Network{
		nodes: make(map[string]*Node),
		edges: make(map[[2]string]*Edge),
		out:   make(map[string][]*Edge),
	}
}

// AddStop adds a stop to the network. Returns ErrInvalidNodeID for an
// empty ID and ErrDuplicateNodeID if the stop already exists.
func (g *Network) AddStop(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	g.nodes[n.ID] = &node
	return nil
}

// AddTraversal records one line traversal of the (from, to) stop pair.
// Both endpoints must already exist; this enforces the referential
// integrity invariant that every edge endpoint is a known stop.
// Repeated traversals of the same pair aggregate into a single edge with
// an incremented frequency.
func (g *Network) AddTraversal(from, to, line string) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	if from == to {
		return ErrSelfLoop
	}

	key := [2]string{from, to}
	e, ok := g.edges[key]
	if !ok {
		e = &Edge{From: from, To: to}
		g.edges[key] = e
		g.out[from] = append(g.out[from], e)
	}
	e.Freq++
	e.Lines = append(e.Lines, line)
	g.traversals++
	return nil
}

// Node returns the stop with the given ID, or nil if absent.
func (g *Network) Node(id string) *Node { return g.nodes[id] }

// Edge returns the aggregated edge for the (from, to) pair, or nil.
func (g *Network) Edge(from, to string) *Edge {
	return g.edges[[2]string{from, to}]
}

// Nodes returns all stops sorted by ID for deterministic iteration.
func (g *Network) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int {
		return compareStrings(a.ID, b.ID)
	})
	return nodes
}

// Edges returns all aggregated edges sorted by (From, To).
func (g *Network) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(a, b *Edge) int {
		if c := compareStrings(a.From, b.From); c != 0 {
			return c
		}
		return compareStrings(a.To, b.To)
	})
	return edges
}

// NodeCount returns the number of stops.
func (g *Network) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of aggregated edges.
func (g *Network) EdgeCount() int { return len(g.edges) }

// Traversals returns the total number of line traversals recorded,
// i.e. the sum of all edge frequencies.
func (g *Network) Traversals() int { return g.traversals }

// UniformWeights reports whether weight normalization degenerated because
// every edge had the same frequency. See [Network.ComputeWeights].
func (g *Network) UniformWeights() bool { return g.uniform }

// SetUniformWeights restores the degenerate-normalization flag. It exists
// for serialization round-trips; analysis code should rely on
// [Network.ComputeWeights] to set it.
func (g *Network) SetUniformWeights(v bool) { g.uniform = v }

// Center returns the mean coordinate of all stops, used to center the
// basemap. Returns the zero point for an empty network.
func (g *Network) Center() orb.Point {
	if len(g.nodes) == 0 {
		return orb.Point{}
	}
	var lon, lat float64
	for _, n := range g.nodes {
		lon += n.Lon
		lat += n.Lat
	}
	c := float64(len(g.nodes))
	return orb.Point{lon / c, lat / c}
}

// Bound returns the bounding box of all stops.
func (g *Network) Bound() orb.Bound {
	bound := orb.Bound{Min: orb.Point{180, 90}, Max: orb.Point{-180, -90}}
	for _, n := range g.nodes {
		bound = bound.Extend(n.Point())
	}
	return bound
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
