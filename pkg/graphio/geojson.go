package graphio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
)

// WriteGeoJSON encodes the network as a single GeoJSON FeatureCollection:
// one Point feature per stop and one LineString feature per aggregated
// edge, each carrying its computed metrics as properties. The output
// drops straight into geojson.io or any GIS tool for inspection.
func WriteGeoJSON(g *netgraph.Network, w io.Writer) error {
	fc := geojson.NewFeatureCollection()

	for _, n := range g.Nodes() {
		f := geojson.NewFeature(n.Point())
		f.Properties["cdk_id"] = n.ID
		f.Properties["name"] = n.Name
		f.Properties["betweenness"] = n.Betweenness
		fc.Append(f)
	}

	for _, e := range g.Edges() {
		from, to := g.Node(e.From), g.Node(e.To)
		if from == nil || to == nil {
			return fmt.Errorf("edge %s->%s references unknown stop", e.From, e.To)
		}
		f := geojson.NewFeature(orb.LineString{from.Point(), to.Point()})
		f.Properties["from"] = e.From
		f.Properties["to"] = e.To
		f.Properties["freq"] = e.Freq
		f.Properties["weight"] = e.Weight
		f.Properties["betweenness"] = e.Betweenness
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}

	// Re-indent for readability; the collection is small.
	var buf []byte
	if buf, err = indentJSON(data); err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func indentJSON(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
