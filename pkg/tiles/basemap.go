package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math"

	// Tile servers answer with PNG or JPEG depending on provider.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
)

// Basemap is an assembled background raster plus the projection needed
// to place lon/lat markers on it.
type Basemap struct {
	Image *image.NRGBA
	Zoom  int

	// originX/originY are the global pixel coordinates of the image's
	// top-left corner at Zoom.
	originX float64
	originY float64
}

// Project converts a lon/lat pair to pixel coordinates within the
// basemap image.
func (b *Basemap) Project(lon, lat float64) (x, y float64) {
	px, py := PixelCoord(lon, lat, b.Zoom)
	return px - b.originX, py - b.originY
}

// Basemap fetches and mosaics the tiles covering a width x height pixel
// viewport centered on (centerLon, centerLat) at the given zoom. Tiles
// that fail to decode abort the assembly; the caller decides whether a
// map without a basemap is acceptable.
func (c *Client) Basemap(ctx context.Context, centerLon, centerLat float64, zoom, width, height int) (*Basemap, error) {
	if zoom < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "zoom must be >= 0, got %d", zoom)
	}
	cx, cy := PixelCoord(centerLon, centerLat, zoom)
	originX := cx - float64(width)/2
	originY := cy - float64(height)/2

	canvas := imaging.New(width, height, color.NRGBA{R: 221, G: 221, B: 221, A: 255})

	minTX := int(math.Floor(originX / TileSize))
	maxTX := int(math.Floor((originX + float64(width)) / TileSize))
	minTY := int(math.Floor(originY / TileSize))
	maxTY := int(math.Floor((originY + float64(height)) / TileSize))

	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			wx, wy := clampTileIndex(zoom, tx, ty)
			data, err := c.Fetch(ctx, Tile{Zoom: zoom, X: wx, Y: wy})
			if err != nil {
				return nil, err
			}

			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tile %d/%d/%d", zoom, wx, wy)
			}

			// Paste at the unwrapped position so antimeridian wrapping
			// keeps tiles contiguous.
			x := tx*TileSize - int(math.Round(originX))
			y := ty*TileSize - int(math.Round(originY))
			canvas = imaging.Paste(canvas, img, image.Pt(x, y))
		}
	}

	return &Basemap{
		Image:   canvas,
		Zoom:    zoom,
		originX: originX,
		originY: originY,
	}, nil
}
