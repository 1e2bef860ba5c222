package netgraph

import "testing"

func TestFilterEdgesThreshold(t *testing.T) {
	g := buildPath(t, "A", "B", "C", "D")
	g.ComputeEdgeBetweenness(0)

	// Counts on the path are 3, 4, 3, so ln(4) ~ 1.39 clears a 1.2
	// threshold and ln(3) ~ 1.10 does not: only the middle edge survives.
	removed := g.FilterEdges(1.2)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if g.Edge("B", "C") == nil {
		t.Error("highest-betweenness edge (B,C) should survive")
	}
}

func TestFilterEdgesIdempotent(t *testing.T) {
	g := buildPath(t, "A", "B", "C", "D")
	g.ComputeEdgeBetweenness(0)

	g.FilterEdges(1.2)
	before := g.EdgeCount()

	if removed := g.FilterEdges(1.2); removed != 0 {
		t.Errorf("second filter removed %d edges, want 0", removed)
	}
	if g.EdgeCount() != before {
		t.Errorf("EdgeCount changed on repeated filter: %d -> %d", before, g.EdgeCount())
	}
}

func TestFilterEdgesRebuildsAdjacency(t *testing.T) {
	g := buildPath(t, "A", "B", "C", "D")
	g.ComputeEdgeBetweenness(0)
	g.FilterEdges(1.2)

	// Recomputing on the filtered graph must only see surviving edges.
	g.ComputeEdgeBetweenness(0)
	if g.Traversals() != 1 {
		t.Errorf("Traversals = %d after filter, want 1", g.Traversals())
	}
}

func TestTopStopsOrdering(t *testing.T) {
	g := buildPath(t, "A", "B", "C", "D")
	g.ComputeNodeBetweenness()

	ranked := g.TopStops(0)
	if len(ranked) != 4 {
		t.Fatalf("TopStops(0) returned %d entries, want all 4", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Betweenness > ranked[i-1].Betweenness {
			t.Errorf("ranking not descending at %d: %v > %v", i, ranked[i].Betweenness, ranked[i-1].Betweenness)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, ranked[i].Rank, i+1)
		}
	}

	// On a path the interior stops dominate, ties break by ID.
	if ranked[0].ID != "B" && ranked[0].ID != "C" {
		t.Errorf("top stop = %q, want an interior stop", ranked[0].ID)
	}
}

func TestTopStopsLimit(t *testing.T) {
	g := buildPath(t, "A", "B", "C", "D")
	g.ComputeNodeBetweenness()

	if got := len(g.TopStops(2)); got != 2 {
		t.Errorf("TopStops(2) returned %d entries", got)
	}
	if got := len(g.TopStops(100)); got != 4 {
		t.Errorf("TopStops(100) returned %d entries, want all 4", got)
	}
}

func TestTopStopsTieBreakByID(t *testing.T) {
	g := New()
	for _, id := range []string{"b", "a"} {
		if err := g.AddStop(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	ranked := g.TopStops(0)
	if ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Errorf("tied stops should order by ID: got %q, %q", ranked[0].ID, ranked[1].ID)
	}
}
