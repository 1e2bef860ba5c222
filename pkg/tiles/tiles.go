// Package tiles fetches slippy-map basemap tiles and assembles them into
// a single raster centered on a coordinate, ready for marker overlays.
//
// Tiles use the standard web-mercator pyramid: 256px tiles addressed by
// (zoom, x, y). Fetches go through the shared cache and retry transient
// failures with backoff; a full basemap for a city at zoom 11 touches a
// handful of tiles, so the tile server load stays negligible.
package tiles

import "math"

// TileSize is the edge length of a slippy-map tile in pixels.
const TileSize = 256

// Tile addresses one tile in the web-mercator pyramid.
type Tile struct {
	Zoom int
	X    int
	Y    int
}

// Valid reports whether the tile coordinates exist at the tile's zoom.
func (t Tile) Valid() bool {
	if t.Zoom < 0 {
		return false
	}
	n := 1 << t.Zoom
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// PixelCoord converts a lon/lat pair (degrees) to global pixel
// coordinates at the given zoom.
func PixelCoord(lon, lat float64, zoom int) (px, py float64) {
	worldPx := float64(int(TileSize) << zoom)
	px = (lon + 180) / 360 * worldPx

	latRad := lat * math.Pi / 180
	py = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * worldPx
	return px, py
}

// At returns the tile containing the lon/lat pair at the given zoom.
func At(lon, lat float64, zoom int) Tile {
	px, py := PixelCoord(lon, lat, zoom)
	return Tile{
		Zoom: zoom,
		X:    int(math.Floor(px / TileSize)),
		Y:    int(math.Floor(py / TileSize)),
	}
}

// clampTileIndex wraps X (longitude wraps around the antimeridian) and
// clamps Y into the pyramid.
func clampTileIndex(zoom, x, y int) (int, int) {
	n := 1 << zoom
	x = ((x % n) + n) % n
	if y < 0 {
		y = 0
	}
	if y >= n {
		y = n - 1
	}
	return x, y
}
