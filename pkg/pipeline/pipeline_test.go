package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

const stopsCSV = `cdk_id,name,lat,lon
IST.stop.1,Taksim,41.0369,28.9850
IST.stop.2,Kabatas,41.0323,28.9944
IST.stop.3,Eminonu,41.0172,28.9709
IST.stop.4,Sirkeci,41.0158,28.9772
`

const linesCSV = `cdk_id,stop_list
IST.line.T1,IST.stop.1;IST.stop.2;IST.stop.3;IST.stop.4
IST.line.F1,IST.stop.1;IST.stop.2
`

func writeFixtures(t *testing.T) (stopsPath, linesPath string) {
	t.Helper()
	dir := t.TempDir()
	stopsPath = filepath.Join(dir, "stops.csv")
	linesPath = filepath.Join(dir, "lines.csv")
	if err := os.WriteFile(stopsPath, []byte(stopsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(linesPath, []byte(linesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return stopsPath, linesPath
}

func testOptions(t *testing.T) Options {
	stops, lines := writeFixtures(t)
	return Options{
		StopsPath: stops,
		LinesPath: lines,
		Formats:   []string{FormatGeoJSON, FormatJSON},
		TopK:      3,
	}
}

func TestExecuteFullPipeline(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("missing run ID")
	}
	if result.Stats.StopCount != 4 {
		t.Errorf("stop count = %d, want 4", result.Stats.StopCount)
	}
	if result.Stats.EdgeCount != 3 {
		t.Errorf("edge count = %d, want 3", result.Stats.EdgeCount)
	}
	if result.NetworkHash == "" {
		t.Error("missing network hash")
	}
	if len(result.Ranking) != 3 {
		t.Errorf("ranking length = %d, want 3", len(result.Ranking))
	}
	if len(result.Artifacts[FormatGeoJSON]) == 0 || len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing artifacts")
	}
	if result.CacheInfo.AnalysisHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
}

func TestExecuteAnalysisCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := testOptions(t)
	ctx := context.Background()
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("first Execute: %v", err)
	}

	result, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !result.CacheInfo.AnalysisHit {
		t.Error("second run should hit the analysis cache")
	}
	if !result.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := testOptions(t)
	ctx := context.Background()
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}

	opts.Refresh = true
	result, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.AnalysisHit {
		t.Error("refresh must bypass the analysis cache")
	}
}

func TestExecuteFilterRemovesEdges(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := testOptions(t)
	opts.Filter = true
	threshold := 1.2
	opts.EdgeThreshold = &threshold

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.EdgeCount >= 3 {
		t.Errorf("filtering should drop edges, still have %d", result.Stats.EdgeCount)
	}
}

func TestExecuteExplicitZeroThreshold(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := testOptions(t)
	opts.Filter = true
	zero := 0.0
	opts.EdgeThreshold = &zero

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Every edge in the fixture has positive log betweenness, so filtering
	// at zero keeps all of them. If the zero were rewritten to the default
	// threshold, every edge would be dropped.
	if result.Stats.EdgeCount != 3 {
		t.Errorf("edge count = %d, want 3 (zero threshold must not default)", result.Stats.EdgeCount)
	}
}

func TestExecuteDegenerateWeightsWarning(t *testing.T) {
	dir := t.TempDir()
	stopsPath := filepath.Join(dir, "stops.csv")
	linesPath := filepath.Join(dir, "lines.csv")
	if err := os.WriteFile(stopsPath, []byte("cdk_id,name,lat,lon\nA,Alpha,41.0,29.0\nB,Beta,41.1,29.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(linesPath, []byte("cdk_id,stop_list\nL,A;B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&buf, log.Options{}))
	result, err := r.Execute(context.Background(), Options{
		StopsPath: stopsPath,
		LinesPath: linesPath,
		Formats:   []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Degenerate {
		t.Error("single-frequency network should report degenerate weights")
	}
	if !strings.Contains(buf.String(), string(errors.ErrCodeDegenerateWeights)) {
		t.Errorf("warning should carry the %s code, got:\n%s", errors.ErrCodeDegenerateWeights, buf.String())
	}
}

func TestExecuteMissingInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		StopsPath: "/nonexistent/stops.csv",
		LinesPath: "/nonexistent/lines.csv",
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{FormatMap, FormatSchematic, FormatDOT}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := ValidateFormat("pdf"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{StopsPath: "s.csv", LinesPath: "l.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Cutoff != DefaultCutoff {
		t.Errorf("cutoff = %d, want %d", opts.Cutoff, DefaultCutoff)
	}
	if opts.edgeThreshold() != DefaultEdgeThreshold {
		t.Errorf("threshold = %v, want %v", opts.edgeThreshold(), DefaultEdgeThreshold)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatMap {
		t.Errorf("formats = %v, want [map]", opts.Formats)
	}

	unbounded := Options{StopsPath: "s", LinesPath: "l", Cutoff: -1}
	unbounded.SetAnalysisDefaults()
	if unbounded.maxHops() != 0 {
		t.Errorf("negative cutoff should disable the hop bound, got %d", unbounded.maxHops())
	}
}

func TestValidateForRenderZoomBounds(t *testing.T) {
	for _, zoom := range []int{-1, 20} {
		opts := Options{Zoom: zoom}
		if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("zoom %d: got %v, want INVALID_INPUT", zoom, err)
		}
	}

	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("zero zoom should take the default: %v", err)
	}
	if opts.Zoom != DefaultZoom {
		t.Errorf("zoom = %d, want %d", opts.Zoom, DefaultZoom)
	}
}
