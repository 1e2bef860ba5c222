package netgraph

import "slices"

// FilterEdges removes every aggregated edge whose log-betweenness falls
// below threshold, leaving only high-traffic corridors. Returns the
// number of edges removed. Filtering is idempotent: applying the same
// threshold twice removes nothing the second time.
func (g *Network) FilterEdges(threshold float64) int {
	removed := 0
	for key, e := range g.edges {
		if e.LogBetweenness < threshold {
			delete(g.edges, key)
			removed++
		}
	}
	if removed > 0 {
		g.rebuildAdjacency()
	}
	return removed
}

// rebuildAdjacency reconstructs the outgoing-edge index after deletions.
func (g *Network) rebuildAdjacency() {
	g.out = make(map[string][]*Edge, len(g.nodes))
	g.traversals = 0
	for _, e := range g.edges {
		g.out[e.From] = append(g.out[e.From], e)
		g.traversals += e.Freq
	}
}

// RankedStop is one entry of the betweenness ranking.
type RankedStop struct {
	Rank           int     `json:"rank"`
	ID             string  `json:"cdk_id"`
	Name           string  `json:"name"`
	Betweenness    float64 `json:"betweenness"`
	LogBetweenness float64 `json:"log_betweenness"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
}

// TopStops returns the k highest-betweenness stops in descending order.
// Ties break by stop ID so the ranking is a total order stable across
// runs. k <= 0 or k larger than the node count returns all stops.
func (g *Network) TopStops(k int) []RankedStop {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		switch {
		case a.Betweenness > b.Betweenness:
			return -1
		case a.Betweenness < b.Betweenness:
			return 1
		default:
			return compareStrings(a.ID, b.ID)
		}
	})

	if k <= 0 || k > len(nodes) {
		k = len(nodes)
	}

	ranked := make([]RankedStop, k)
	for i, n := range nodes[:k] {
		ranked[i] = RankedStop{
			Rank:           i + 1,
			ID:             n.ID,
			Name:           n.Name,
			Betweenness:    n.Betweenness,
			LogBetweenness: n.LogBetweenness,
			Lat:            n.Lat,
			Lon:            n.Lon,
		}
	}
	return ranked
}
