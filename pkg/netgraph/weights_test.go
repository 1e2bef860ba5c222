package netgraph

import (
	"errors"
	"testing"
)

// buildWeighted creates a network where (A,B) is traversed freq times
// more than (B,C).
func buildWeighted(t *testing.T, abFreq, bcFreq int) *Network {
	t.Helper()
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		if err := g.AddStop(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < abFreq; i++ {
		if err := g.AddTraversal("A", "B", "L"); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < bcFreq; i++ {
		if err := g.AddTraversal("B", "C", "L"); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestComputeWeightsNormalization(t *testing.T) {
	// Two lines over A->B plus one over B->C: weight(A,B)=1.0, weight(B,C)=0.0.
	g := buildWeighted(t, 2, 1)

	degenerate, err := g.ComputeWeights()
	if err != nil {
		t.Fatalf("ComputeWeights: %v", err)
	}
	if degenerate {
		t.Error("distinct frequencies should not be degenerate")
	}

	if w := g.Edge("A", "B").Weight; w != 1.0 {
		t.Errorf("weight(A,B) = %v, want 1.0", w)
	}
	if w := g.Edge("B", "C").Weight; w != 0.0 {
		t.Errorf("weight(B,C) = %v, want 0.0", w)
	}
}

func TestComputeWeightsRange(t *testing.T) {
	g := New()
	ids := []string{"A", "B", "C", "D"}
	for _, id := range ids {
		if err := g.AddStop(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	freqs := map[[2]string]int{
		{"A", "B"}: 1,
		{"B", "C"}: 5,
		{"C", "D"}: 12,
	}
	for pair, f := range freqs {
		for i := 0; i < f; i++ {
			if err := g.AddTraversal(pair[0], pair[1], "L"); err != nil {
				t.Fatal(err)
			}
		}
	}

	if _, err := g.ComputeWeights(); err != nil {
		t.Fatalf("ComputeWeights: %v", err)
	}

	for _, e := range g.Edges() {
		if e.Weight < 0 || e.Weight > 1 {
			t.Errorf("weight(%s,%s) = %v, outside [0,1]", e.From, e.To, e.Weight)
		}
	}
	if w := g.Edge("C", "D").Weight; w != 1.0 {
		t.Errorf("max frequency edge weight = %v, want 1.0", w)
	}
	if w := g.Edge("A", "B").Weight; w != 0.0 {
		t.Errorf("min frequency edge weight = %v, want 0.0", w)
	}
	mid := g.Edge("B", "C").Weight
	if mid <= 0 || mid >= 1 {
		t.Errorf("middle frequency edge weight = %v, want strictly inside (0,1)", mid)
	}
}

func TestComputeWeightsDegenerate(t *testing.T) {
	// All frequencies equal: normalization denominator is zero. The
	// fallback is uniform weight 1.0, flagged, never NaN.
	g := buildWeighted(t, 3, 3)

	degenerate, err := g.ComputeWeights()
	if err != nil {
		t.Fatalf("ComputeWeights: %v", err)
	}
	if !degenerate {
		t.Error("equal frequencies should be reported as degenerate")
	}
	if !g.UniformWeights() {
		t.Error("UniformWeights should report true")
	}

	for _, e := range g.Edges() {
		if e.Weight != 1.0 {
			t.Errorf("weight(%s,%s) = %v, want uniform 1.0", e.From, e.To, e.Weight)
		}
	}
}

func TestComputeWeightsEmptyGraph(t *testing.T) {
	g := New()
	if err := g.AddStop(Node{ID: "A"}); err != nil {
		t.Fatal(err)
	}

	if _, err := g.ComputeWeights(); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("got %v, want ErrEmptyGraph", err)
	}
}
