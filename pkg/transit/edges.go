package transit

// BuildEdges expands each line's ordered stop sequence into consecutive
// stop-pair edge records labeled with the line id. A line with N stops
// contributes exactly N-1 records; lines with fewer than two stops
// contribute none. Record order follows the input line order.
func BuildEdges(lines []Line) []EdgeRecord {
	var edges []EdgeRecord
	for _, line := range lines {
		for i := 0; i+1 < len(line.Stops); i++ {
			edges = append(edges, EdgeRecord{
				From: line.Stops[i],
				To:   line.Stops[i+1],
				Line: line.ID,
			})
		}
	}
	return edges
}
