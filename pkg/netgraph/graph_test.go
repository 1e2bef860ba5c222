package netgraph

import (
	"errors"
	"testing"

	apperrors "github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/transit"
)

func TestAddStopErrors(t *testing.T) {
	g := New()

	if err := g.AddStop(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v, want ErrInvalidNodeID", err)
	}

	if err := g.AddStop(Node{ID: "A"}); err != nil {
		t.Fatalf("AddStop: %v", err)
	}
	if err := g.AddStop(Node{ID: "A"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate ID: got %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddTraversalReferentialIntegrity(t *testing.T) {
	g := New()
	if err := g.AddStop(Node{ID: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddStop(Node{ID: "B"}); err != nil {
		t.Fatal(err)
	}

	if err := g.AddTraversal("X", "B", "L1"); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: got %v", err)
	}
	if err := g.AddTraversal("A", "X", "L1"); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: got %v", err)
	}
	if err := g.AddTraversal("A", "A", "L1"); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("self loop: got %v", err)
	}
	if err := g.AddTraversal("A", "B", "L1"); err != nil {
		t.Errorf("valid traversal: %v", err)
	}
}

func TestTraversalAggregation(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		if err := g.AddStop(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	// Two lines traverse A->B, one traverses B->C.
	for _, tr := range []struct{ from, to, line string }{
		{"A", "B", "L1"},
		{"A", "B", "L2"},
		{"B", "C", "L1"},
	} {
		if err := g.AddTraversal(tr.from, tr.to, tr.line); err != nil {
			t.Fatal(err)
		}
	}

	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount = %d, want 2 aggregated edges", g.EdgeCount())
	}
	if g.Traversals() != 3 {
		t.Errorf("Traversals = %d, want 3", g.Traversals())
	}

	ab := g.Edge("A", "B")
	if ab == nil || ab.Freq != 2 {
		t.Fatalf("edge (A,B) = %+v, want Freq 2", ab)
	}
	if len(ab.Lines) != 2 {
		t.Errorf("edge (A,B) lines = %v, want 2 entries", ab.Lines)
	}
	if bc := g.Edge("B", "C"); bc == nil || bc.Freq != 1 {
		t.Fatalf("edge (B,C) = %+v, want Freq 1", bc)
	}
}

func TestBuildSingleLine(t *testing.T) {
	// Stops {A,B,C} and a single line A;B;C yield a 3-node, 2-edge
	// directed graph with frequency 1 on each edge.
	stops := []transit.Stop{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	records := transit.BuildEdges([]transit.Line{{ID: "L", Stops: []string{"A", "B", "C"}}})

	g, skipped, err := Build(stops, records)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("got %d nodes / %d edges, want 3 / 2", g.NodeCount(), g.EdgeCount())
	}
	for _, pair := range [][2]string{{"A", "B"}, {"B", "C"}} {
		if e := g.Edge(pair[0], pair[1]); e == nil || e.Freq != 1 {
			t.Errorf("edge %v = %+v, want Freq 1", pair, e)
		}
	}
}

func TestBuildUnknownStopFails(t *testing.T) {
	stops := []transit.Stop{{ID: "A"}}
	records := []transit.EdgeRecord{{From: "A", To: "GHOST", Line: "L"}}

	_, _, err := Build(stops, records)
	if !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("got %v, want ErrUnknownTargetNode", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeStopNotFound) {
		t.Errorf("got %v, want STOP_NOT_FOUND", err)
	}
}

func TestBuildSkipsSelfLoops(t *testing.T) {
	stops := []transit.Stop{{ID: "A"}, {ID: "B"}}
	records := []transit.EdgeRecord{
		{From: "A", To: "A", Line: "L"},
		{From: "A", To: "B", Line: "L"},
	}

	g, skipped, err := Build(stops, records)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestCenterAndBound(t *testing.T) {
	g := New()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddStop(Node{ID: "A", Lat: 41.0, Lon: 28.0}))
	must(g.AddStop(Node{ID: "B", Lat: 41.2, Lon: 29.0}))

	c := g.Center()
	if c.Lon() != 28.5 || c.Lat() != 41.1 {
		t.Errorf("Center = %v, want (28.5, 41.1)", c)
	}

	b := g.Bound()
	if b.Min.Lon() != 28.0 || b.Max.Lon() != 29.0 {
		t.Errorf("Bound = %v", b)
	}
}

func TestNodesEdgesDeterministicOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"C", "A", "B"} {
		if err := g.AddStop(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	nodes := g.Nodes()
	if nodes[0].ID != "A" || nodes[1].ID != "B" || nodes[2].ID != "C" {
		t.Errorf("Nodes not sorted by ID: %v", []string{nodes[0].ID, nodes[1].ID, nodes[2].ID})
	}
}
