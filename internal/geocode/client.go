// Package geocode is the boundary to the external place-name search
// service. The core never participates beyond receiving one coordinate to
// recenter the view on.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultEndpoint is a Nominatim-compatible search endpoint.
const DefaultEndpoint = "https://nominatim.openstreetmap.org/search"

const maxResponseBytes = 1 << 20

// Result is one geocoded place.
type Result struct {
	Lon         float64
	Lat         float64
	DisplayName string
}

// nominatimHit mirrors the service's JSON; coordinates arrive as strings.
type nominatimHit struct {
	Lon         string `json:"lon"`
	Lat         string `json:"lat"`
	DisplayName string `json:"display_name"`
}

// Client queries the geocoding service.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient builds a client; an empty endpoint selects DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Search resolves a free-text place name to its best coordinate.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	if query == "" {
		return Result{}, fmt.Errorf("geocode: empty query")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("geocode: reading response: %w", err)
	}

	var hits []nominatimHit
	if err := sonic.Unmarshal(body, &hits); err != nil {
		return Result{}, fmt.Errorf("geocode: decoding response: %w", err)
	}
	if len(hits) == 0 {
		return Result{}, fmt.Errorf("geocode: no result for %q", query)
	}

	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad longitude %q", hits[0].Lon)
	}
	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad latitude %q", hits[0].Lat)
	}
	return Result{Lon: lon, Lat: lat, DisplayName: hits[0].DisplayName}, nil
}
