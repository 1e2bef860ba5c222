package netgraph

import "math"

// ComputeWeights derives the normalized log weight for every aggregated
// edge:
//
//	weight = (ln f - min ln f) / (max ln f - min ln f)
//
// so the most traversed pair maps to 1.0 and the least to 0.0.
//
// When every edge has the same frequency the denominator is zero; rather
// than propagating NaN, all weights fall back to a uniform 1.0 and the
// degenerate return is true so callers can warn. Betweenness then reduces
// to the unweighted case, which is the honest result when frequencies
// carry no signal.
//
// Returns ErrEmptyGraph when the network has no edges.
func (g *Network) ComputeWeights() (degenerate bool, err error) {
	if len(g.edges) == 0 {
		return false, ErrEmptyGraph
	}

	minLog := math.Inf(1)
	maxLog := math.Inf(-1)
	for _, e := range g.edges {
		lf := math.Log(float64(e.Freq))
		minLog = math.Min(minLog, lf)
		maxLog = math.Max(maxLog, lf)
	}

	if maxLog == minLog {
		for _, e := range g.edges {
			e.Weight = 1.0
		}
		g.uniform = true
		return true, nil
	}

	span := maxLog - minLog
	for _, e := range g.edges {
		e.Weight = (math.Log(float64(e.Freq)) - minLog) / span
	}
	g.uniform = false
	return false, nil
}
