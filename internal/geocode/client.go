// Package geocode resolves street addresses to coordinates for catalog
// records that arrive without one.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/geomath"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// ErrNoResult is returned when the geocoder finds nothing for an address.
var ErrNoResult = fmt.Errorf("no geocoding result")

// Client talks to a Nominatim-compatible geocoding endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a geocoding client. Nominatim's usage policy requires an
// identifying User-Agent.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the best coordinate match for an address.
func (c *Client) Resolve(ctx context.Context, address string) (core.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return core.Coordinate{}, fmt.Errorf("resolve: empty address")
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Coordinate{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return core.Coordinate{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return core.Coordinate{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}
	if !geomath.ValidCoordinate(lat, lng) {
		return core.Coordinate{}, fmt.Errorf("geocoder returned out-of-range coordinate (%f, %f)", lat, lng)
	}
	return core.Coordinate{Lat: lat, Lng: lng}, nil
}

// Backfill resolves coordinates for every center missing one, in place.
// Failures leave the center unlocated; the engine handles that downstream.
func (c *Client) Backfill(ctx context.Context, centers []core.Center) (resolved int) {
	for i := range centers {
		if centers[i].Location != nil || centers[i].Address == "" {
			continue
		}
		coord, err := c.Resolve(ctx, centers[i].Address)
		if err != nil {
			continue
		}
		centers[i].Location = &core.Coordinate{Lat: coord.Lat, Lng: coord.Lng}
		resolved++
	}
	return resolved
}
