package netgraph

import (
	"container/heap"
	"math"
)

// floatEps is the tolerance for comparing accumulated path distances.
// Normalized log weights sum over at most a few hundred hops, so 1e-9
// separates genuinely distinct path lengths from float noise.
const floatEps = 1e-9

// logClampEps bounds the log transform of centrality values. Edges and
// nodes that no shortest path crosses would map to -Inf; they get
// ln(logClampEps) instead so plots and filters stay finite.
const logClampEps = 1e-9

// logClamped returns ln(v) with v clamped to logClampEps.
func logClamped(v float64) float64 {
	return math.Log(math.Max(v, logClampEps))
}

// ComputeNodeBetweenness computes weighted betweenness centrality for
// every stop using Brandes' algorithm with Dijkstra traversal (edge
// weights as distances, unbounded path length). Scores are normalized to
// [0, 1] with the directed-graph factor (n-1)(n-2) and stored on the
// nodes together with their clamped log transform.
func (g *Network) ComputeNodeBetweenness() {
	cb := make(map[string]float64, len(g.nodes))
	for id := range g.nodes {
		cb[id] = 0
	}

	n := len(g.nodes)
	if n >= 3 {
		for s := range g.nodes {
			order, sigma, preds := g.shortestPaths(s, 0)
			g.accumulateNodes(s, order, sigma, preds, cb)
		}
		normFactor := float64((n - 1) * (n - 2))
		for id := range cb {
			cb[id] /= normFactor
		}
	}

	for id, node := range g.nodes {
		node.Betweenness = cb[id]
		node.LogBetweenness = logClamped(cb[id])
	}
}

// ComputeEdgeBetweenness computes weighted edge betweenness with paths
// bounded to maxHops edges (0 means unbounded). The bound makes the
// computation tractable on city-scale networks at the cost of ignoring
// contributions from very long itineraries; raw pair counts (not
// normalized) are stored on the edges so display thresholds operate on
// absolute traffic estimates.
func (g *Network) ComputeEdgeBetweenness(maxHops int) {
	ce := make(map[[2]string]float64, len(g.edges))

	for s := range g.nodes {
		order, sigma, preds := g.shortestPaths(s, maxHops)
		g.accumulateEdges(order, sigma, preds, ce)
	}

	for key, e := range g.edges {
		e.Betweenness = ce[key]
		e.LogBetweenness = logClamped(ce[key])
	}
}

// shortestPaths runs the Dijkstra phase of Brandes' algorithm from source
// s. It returns the settle order (for reverse accumulation), per-node
// shortest-path counts (sigma), and shortest-path predecessor edges.
// When maxHops > 0, paths longer than maxHops edges are not explored.
func (g *Network) shortestPaths(s string, maxHops int) ([]string, map[string]float64, map[string][]*Edge) {
	n := len(g.nodes)
	order := make([]string, 0, n)
	sigma := map[string]float64{s: 1}
	preds := make(map[string][]*Edge, n)
	dist := map[string]float64{s: 0}
	hops := map[string]int{s: 0}
	settled := make(map[string]bool, n)

	pq := &distQueue{{id: s, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*distItem)
		v := item.id
		if settled[v] {
			continue
		}
		settled[v] = true
		order = append(order, v)

		if maxHops > 0 && hops[v] >= maxHops {
			continue
		}

		for _, e := range g.out[v] {
			w := e.To
			if settled[w] {
				continue
			}
			d := dist[v] + e.distance()

			cur, seen := dist[w]
			switch {
			case !seen || d < cur-floatEps:
				dist[w] = d
				hops[w] = hops[v] + 1
				sigma[w] = sigma[v]
				preds[w] = []*Edge{e}
				heap.Push(pq, &distItem{id: w, dist: d})
			case math.Abs(d-cur) <= floatEps:
				// Equal-length alternative shortest path.
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], e)
			}
		}
	}

	return order, sigma, preds
}

// accumulateNodes performs the back-propagation phase of Brandes'
// algorithm, adding pair-dependency values for intermediate nodes.
func (g *Network) accumulateNodes(s string, order []string, sigma map[string]float64, preds map[string][]*Edge, cb map[string]float64) {
	delta := make(map[string]float64, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		for _, e := range preds[w] {
			delta[e.From] += sigma[e.From] / sigma[w] * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}

// accumulateEdges performs the back-propagation phase for edge
// betweenness, crediting each predecessor edge with its share of the
// shortest paths into w.
func (g *Network) accumulateEdges(order []string, sigma map[string]float64, preds map[string][]*Edge, ce map[[2]string]float64) {
	delta := make(map[string]float64, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		for _, e := range preds[w] {
			c := sigma[e.From] / sigma[w] * (1 + delta[w])
			ce[[2]string{e.From, e.To}] += c
			delta[e.From] += c
		}
	}
}

// distItem is a priority queue entry for Dijkstra traversal.
type distItem struct {
	id   string
	dist float64
}

// distQueue is a min-heap of distItems ordered by distance.
type distQueue []*distItem

func (q distQueue) Len() int           { return len(q) }
func (q distQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)        { *q = append(*q, x.(*distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
