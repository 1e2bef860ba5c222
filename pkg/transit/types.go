// Package transit loads the stop and line tables and expands line stop
// sequences into the edge records the network graph is built from.
//
// The two input tables are plain CSV:
//
//	stops.csv: cdk_id,name,lat,lon
//	lines.csv: cdk_id,stop_list   (stop_list is ";"-delimited, ordered)
//
// Stops are deduplicated by id on load. A line visiting N stops produces
// exactly N-1 consecutive-pair edges; lines with fewer than two stops
// produce none.
package transit

// Stop is a physical transit stop with display name and coordinates.
type Stop struct {
	ID   string  `json:"cdk_id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Line is an ordered route visiting a sequence of stops.
type Line struct {
	ID    string   `json:"cdk_id"`
	Stops []string `json:"stops"`
}

// EdgeRecord is one traversal of a consecutive stop pair by a line.
// Multiple lines over the same pair produce multiple records; the graph
// layer aggregates them into per-pair frequencies.
type EdgeRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
	Line string `json:"line"`
}

// StopListDelimiter separates stop ids in the lines table stop_list column.
const StopListDelimiter = ";"
