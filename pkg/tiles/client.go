package tiles

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/httputil"
)

const httpTimeout = 15 * time.Second

// userAgent identifies this tool to tile servers, as the OSM tile usage
// policy requires.
const userAgent = "transitnet/1.0 (+https://github.com/arslanmit/istanbul-transportation-network)"

// Client fetches basemap tiles from a slippy-map provider, caching raw
// tile bytes and retrying transient failures.
type Client struct {
	urlTemplate string
	http        *http.Client
	cache       cache.Cache
	keyer       cache.Keyer
	logger      *log.Logger
}

// NewClient creates a tile client for the given URL template, which must
// contain {z}, {x}, and {y} placeholders. Pass a NullCache to disable
// caching; logger may be nil.
func NewClient(urlTemplate string, c cache.Cache, logger *log.Logger) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		urlTemplate: urlTemplate,
		http:        &http.Client{Timeout: httpTimeout},
		cache:       c,
		keyer:       cache.NewDefaultKeyer(),
		logger:      logger,
	}
}

// Fetch returns the raw image bytes for one tile, from cache when
// possible. Server errors and transport failures retry with backoff;
// 4xx responses fail immediately.
func (c *Client) Fetch(ctx context.Context, t Tile) ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tile %d/%d/%d out of range", t.Zoom, t.X, t.Y)
	}

	key := c.keyer.TileKey(c.urlTemplate, t.Zoom, t.X, t.Y)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	url := c.tileURL(t)
	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		data, fetchErr = c.get(ctx, url)
		return fetchErr
	})
	if err != nil {
		code := errors.ErrCodeNetwork
		if stderrors.Is(err, context.DeadlineExceeded) {
			code = errors.ErrCodeTimeout
		}
		return nil, errors.Wrap(code, err, "fetch tile %d/%d/%d", t.Zoom, t.X, t.Y)
	}

	_ = c.cache.Set(ctx, key, data, cache.TTLTile)
	c.logger.Debug("fetched tile", "zoom", t.Zoom, "x", t.X, "y", t.Y, "bytes", len(data))
	return data, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors are worth a retry.
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)
	case resp.StatusCode >= 500:
		return nil, &httputil.RetryableError{Err: fmt.Errorf("tile server returned %s", resp.Status)}
	default:
		return nil, fmt.Errorf("tile server returned %s", resp.Status)
	}
}

// tileURL expands the {z}/{x}/{y} placeholders in the URL template.
func (c *Client) tileURL(t Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(t.Zoom),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	)
	return r.Replace(c.urlTemplate)
}
