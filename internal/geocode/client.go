// Package geocode resolves street addresses to coordinates and coordinates
// back to administrative regions through an external geocoding service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

// Resolver abstracts the geocoding backend so the orchestrator can be
// exercised with a fake.
type Resolver interface {
	Geocode(ctx context.Context, address string) (contracts.LocationInfo, error)
	Reverse(ctx context.Context, c contracts.Coordinates) (contracts.LocationInfo, error)
}

// HTTPResolver talks to a JSON geocoding service exposing /geocode and
// /reverse endpoints.
type HTTPResolver struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type locationPayload struct {
	Country string  `json:"country"`
	State   string  `json:"state"`
	City    string  `json:"city"`
	ZipCode string  `json:"zip_code"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (r *HTTPResolver) Geocode(ctx context.Context, address string) (contracts.LocationInfo, error) {
	if strings.TrimSpace(address) == "" {
		return contracts.LocationInfo{}, fmt.Errorf("address is empty")
	}
	params := url.Values{"address": {address}}
	return r.fetch(ctx, "/geocode", params)
}

func (r *HTTPResolver) Reverse(ctx context.Context, c contracts.Coordinates) (contracts.LocationInfo, error) {
	params := url.Values{
		"lat": {fmt.Sprintf("%f", c.Lat)},
		"lng": {fmt.Sprintf("%f", c.Lng)},
	}
	return r.fetch(ctx, "/reverse", params)
}

func (r *HTTPResolver) fetch(ctx context.Context, path string, params url.Values) (contracts.LocationInfo, error) {
	fullURL := fmt.Sprintf("%s%s?%s", r.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return contracts.LocationInfo{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return contracts.LocationInfo{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contracts.LocationInfo{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload locationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return contracts.LocationInfo{}, fmt.Errorf("decode geocoder response: %w", err)
	}
	if payload.Country == "" {
		return contracts.LocationInfo{}, fmt.Errorf("geocoder response missing country")
	}
	return contracts.LocationInfo{
		Country: payload.Country,
		State:   payload.State,
		City:    payload.City,
		ZipCode: payload.ZipCode,
		Coordinates: contracts.Coordinates{
			Lat: payload.Lat,
			Lng: payload.Lng,
		},
	}, nil
}
