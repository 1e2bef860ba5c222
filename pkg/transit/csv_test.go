package transit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

const stopsCSV = `cdk_id,name,lat,lon
IST.stop.1,Taksim,41.0369,28.9850
IST.stop.2,Kabatas,41.0323,28.9944
IST.stop.1,Taksim Duplicate,41.0000,28.0000
IST.stop.3,Eminonu,41.0172,28.9709
`

const linesCSV = `cdk_id,stop_list
IST.line.T1,IST.stop.1;IST.stop.2;IST.stop.3
IST.line.F1,IST.stop.1;IST.stop.2
IST.line.EMPTY,IST.stop.1
`

func TestReadStops(t *testing.T) {
	stops, err := ReadStops(strings.NewReader(stopsCSV), "stops.csv")
	if err != nil {
		t.Fatalf("ReadStops: %v", err)
	}

	// Duplicate id collapsed, first occurrence wins
	if len(stops) != 3 {
		t.Fatalf("got %d stops, want 3", len(stops))
	}
	if stops[0].ID != "IST.stop.1" || stops[0].Name != "Taksim" {
		t.Errorf("first stop = %+v, want Taksim", stops[0])
	}
	if stops[0].Lat != 41.0369 || stops[0].Lon != 28.9850 {
		t.Errorf("coordinates not parsed: %+v", stops[0])
	}
}

func TestReadStopsMissingColumn(t *testing.T) {
	_, err := ReadStops(strings.NewReader("cdk_id,name,lat\na,b,1.0\n"), "stops.csv")
	if !errors.Is(err, errors.ErrCodeSchema) {
		t.Errorf("missing lon column: got %v, want SCHEMA_ERROR", err)
	}
}

func TestReadStopsBadCoordinate(t *testing.T) {
	_, err := ReadStops(strings.NewReader("cdk_id,name,lat,lon\na,b,not-a-float,28.9\n"), "stops.csv")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad latitude: got %v, want INVALID_INPUT", err)
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader(linesCSV), "lines.csv")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	t1 := lines[0]
	if t1.ID != "IST.line.T1" {
		t.Errorf("line id = %q", t1.ID)
	}
	want := []string{"IST.stop.1", "IST.stop.2", "IST.stop.3"}
	if len(t1.Stops) != len(want) {
		t.Fatalf("stop sequence length = %d, want %d", len(t1.Stops), len(want))
	}
	for i, id := range want {
		if t1.Stops[i] != id {
			t.Errorf("stop[%d] = %q, want %q", i, t1.Stops[i], id)
		}
	}
}

func TestReadLinesTrailingDelimiter(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("cdk_id,stop_list\nL1,a;b;c;\n"), "lines.csv")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines[0].Stops) != 3 {
		t.Errorf("trailing delimiter should not add an empty stop: %v", lines[0].Stops)
	}
}

func TestLoadStopsMissingFile(t *testing.T) {
	_, err := LoadStops(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadStopsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stops.csv")
	if err := os.WriteFile(path, []byte(stopsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	stops, err := LoadStops(path)
	if err != nil {
		t.Fatalf("LoadStops: %v", err)
	}
	if len(stops) != 3 {
		t.Errorf("got %d stops, want 3", len(stops))
	}
}

func TestReadStopsEmptyFile(t *testing.T) {
	_, err := ReadStops(strings.NewReader(""), "stops.csv")
	if !errors.Is(err, errors.ErrCodeSchema) {
		t.Errorf("empty file: got %v, want SCHEMA_ERROR", err)
	}
}
