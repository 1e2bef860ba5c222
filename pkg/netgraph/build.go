package netgraph

import (
	"fmt"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/transit"
)

// Build assembles a network from a deduplicated stop table and the edge
// records produced by [transit.BuildEdges]. Edge records referencing
// unknown stops fail the build; a network with stops but no edges is
// returned as-is (weight computation reports ErrEmptyGraph later).
//
// Self-loop records (a line listing the same stop twice in a row, which
// some exports contain) are skipped rather than failing the build, and
// the number skipped is returned.
func Build(stops []transit.Stop, records []transit.EdgeRecord) (*Network, int, error) {
	g := New()

	for _, s := range stops {
		err := g.AddStop(Node{ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon})
		if err != nil {
			return nil, 0, fmt.Errorf("add stop %s: %w", s.ID, err)
		}
	}

	skipped := 0
	for _, rec := range records {
		err := g.AddTraversal(rec.From, rec.To, rec.Line)
		if err == ErrSelfLoop {
			skipped++
			continue
		}
		if err == ErrUnknownSourceNode || err == ErrUnknownTargetNode {
			return nil, 0, errors.Wrap(errors.ErrCodeStopNotFound, err,
				"edge %s->%s (line %s)", rec.From, rec.To, rec.Line)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("add edge %s->%s (line %s): %w", rec.From, rec.To, rec.Line, err)
		}
	}

	return g, skipped, nil
}
