package transit

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

// Column names expected in the input tables.
const (
	colID       = "cdk_id"
	colName     = "name"
	colLat      = "lat"
	colLon      = "lon"
	colStopList = "stop_list"
)

// LoadStops reads the stop table from path, deduplicating rows by stop id.
// The first occurrence of an id wins. Returns FILE_NOT_FOUND if the file
// is missing, SCHEMA_ERROR if a required column is absent, and
// INVALID_INPUT if a coordinate fails to parse.
func LoadStops(path string) ([]Stop, error) {
	f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStops(f, path)
}

// ReadStops parses the stop table from r. The name parameter is used in
// error messages only.
func ReadStops(r io.Reader, name string) ([]Stop, error) {
	rows, cols, err := readTable(r, name, colID, colName, colLat, colLon)
	if err != nil {
		return nil, err
	}

	stops := make([]Stop, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row[cols[colID]])
		if id == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s row %d: empty stop id", name, i+2)
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[cols[colLat]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s row %d: bad latitude for stop %s", name, i+2, id)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[cols[colLon]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s row %d: bad longitude for stop %s", name, i+2, id)
		}

		stops = append(stops, Stop{
			ID:   id,
			Name: strings.TrimSpace(row[cols[colName]]),
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stops, nil
}

// LoadLines reads the line table from path. The stop_list column is split
// on ";" into an ordered stop id sequence; empty segments are dropped.
func LoadLines(path string) ([]Line, error) {
	f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f, path)
}

// ReadLines parses the line table from r. The name parameter is used in
// error messages only.
func ReadLines(r io.Reader, name string) ([]Line, error) {
	rows, cols, err := readTable(r, name, colID, colStopList)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row[cols[colID]])
		if id == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s row %d: empty line id", name, i+2)
		}
		lines = append(lines, Line{
			ID:    id,
			Stops: splitStopList(row[cols[colStopList]]),
		})
	}
	return lines, nil
}

// splitStopList splits a ";"-delimited stop sequence, trimming whitespace
// and dropping empty segments (trailing delimiters are common in exports).
func splitStopList(s string) []string {
	parts := strings.Split(s, StopListDelimiter)
	stops := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			stops = append(stops, p)
		}
	}
	return stops
}

func openTable(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "input table %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	return f, nil
}

// readTable reads all CSV records from r and maps the required column
// names to their indices. Ragged rows are tolerated by the csv reader
// configuration; missing required columns are a SCHEMA_ERROR.
func readTable(r io.Reader, name string, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.ErrCodeSchema, "%s: empty file, expected header row", name)
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: read header", name)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, nil, errors.New(errors.ErrCodeSchema, "%s: missing required column %q", name, col)
		}
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: read row", name)
		}
		if !rowCovers(row, cols, required) {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "%s: row with %d fields does not cover required columns", name, len(row))
		}
		rows = append(rows, row)
	}
	return rows, cols, nil
}

func rowCovers(row []string, cols map[string]int, required []string) bool {
	for _, col := range required {
		if cols[col] >= len(row) {
			return false
		}
	}
	return true
}
