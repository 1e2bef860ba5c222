package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

func tilePNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchCachesTiles(t *testing.T) {
	data := tilePNG(t, color.NRGBA{R: 200, A: 255})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()

	c := NewClient(srv.URL+"/{z}/{x}/{y}.png", fc, nil)
	ctx := context.Background()
	tile := Tile{Zoom: 11, X: 1188, Y: 767}

	got, err := c.Fetch(ctx, tile)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("fetched bytes differ from served bytes")
	}

	if _, err := c.Fetch(ctx, tile); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (second fetch should hit cache)", hits.Load())
	}
}

func TestFetchRejectsInvalidTile(t *testing.T) {
	c := NewClient("https://tiles.example/{z}/{x}/{y}.png", nil, nil)
	_, err := c.Fetch(context.Background(), Tile{Zoom: 2, X: 9, Y: 0})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestFetchClientErrorDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/{z}/{x}/{y}.png", nil, nil)
	_, err := c.Fetch(context.Background(), Tile{Zoom: 1, X: 0, Y: 0})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("got %v, want NETWORK_ERROR", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (4xx must not retry)", hits.Load())
	}
}

func TestFetchExpiredDeadlineReportsTimeout(t *testing.T) {
	c := NewClient("http://tiles.invalid/{z}/{x}/{y}.png", nil, nil)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := c.Fetch(ctx, Tile{Zoom: 1, X: 0, Y: 0})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("got %v, want TIMEOUT", err)
	}
}

func TestBasemapRejectsNegativeZoom(t *testing.T) {
	c := NewClient("https://tiles.example/{z}/{x}/{y}.png", nil, nil)
	_, err := c.Basemap(context.Background(), 28.9784, 41.0082, -1, 256, 256)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestBasemapAssembly(t *testing.T) {
	fill := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	data := tilePNG(t, fill)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/{z}/{x}/{y}.png", cache.NewNullCache(), nil)
	bm, err := c.Basemap(context.Background(), 28.9784, 41.0082, 11, 512, 384)
	if err != nil {
		t.Fatalf("Basemap: %v", err)
	}

	b := bm.Image.Bounds()
	if b.Dx() != 512 || b.Dy() != 384 {
		t.Errorf("basemap size = %dx%d, want 512x384", b.Dx(), b.Dy())
	}
	if got := bm.Image.NRGBAAt(256, 192); got != fill {
		t.Errorf("center pixel = %+v, want %+v", got, fill)
	}

	// The center coordinate projects to the middle of the image.
	x, y := bm.Project(28.9784, 41.0082)
	if x < 255 || x > 257 || y < 191 || y > 193 {
		t.Errorf("Project(center) = (%v, %v), want around (256, 192)", x, y)
	}
}
