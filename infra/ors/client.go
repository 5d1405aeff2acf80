// Package ors implements geocoding and driving directions with the
// OpenRouteService API.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
)

// DefaultURL is the public API root.
const DefaultURL = "https://api.openrouteservice.org"

// routeTooLongCode is the ORS error code for routes over the distance limit.
const routeTooLongCode = "2004"

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("openrouteservice api key is not configured")

// Client implements planner.Geocoder and planner.Router.
type Client struct {
	URL     string
	APIKey  string
	Country string
	HTTP    *http.Client
}

// NewClient returns a client restricted to country for geocoding.
func NewClient(endpoint, apiKey, country string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{URL: strings.TrimSuffix(endpoint, "/"), APIKey: apiKey, Country: country, HTTP: &http.Client{Timeout: timeout}}
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.Code, e.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.APIKey == "" {
		return ErrMissingKey
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Accept", "application/json, application/geo+json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if resp.StatusCode == http.StatusBadRequest && bytes.Contains(body, []byte(routeTooLongCode)) {
			return fmt.Errorf("%w: %s", planner.ErrRouteTooLong, body)
		}
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode returns the best match for query. planner.ErrNotFound is returned
// when there is none.
func (c *Client) Geocode(ctx context.Context, query string) (model.Coordinate, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("size", "1")
	if c.Country != "" {
		q.Set("boundary.country", c.Country)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/geocode/search?"+q.Encode(), nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	var r geocodeResponse
	if err := c.do(req, &r); err != nil {
		return model.Coordinate{}, err
	}
	if len(r.Features) == 0 || len(r.Features[0].Geometry.Coordinates) < 2 {
		return model.Coordinate{}, fmt.Errorf("%q: %w", query, planner.ErrNotFound)
	}
	lonLat := r.Features[0].Geometry.Coordinates
	return model.Coordinate{Lat: lonLat[1], Lon: lonLat[0]}, nil
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Directions returns the driving route between from and to.
func (c *Client) Directions(ctx context.Context, from, to model.Coordinate) (model.Route, error) {
	body, err := json.Marshal(map[string]any{
		"coordinates": [][]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
	})
	if err != nil {
		return model.Route{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/v2/directions/driving-car", bytes.NewReader(body))
	if err != nil {
		return model.Route{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var r directionsResponse
	if err := c.do(req, &r); err != nil {
		return model.Route{}, err
	}
	if len(r.Routes) == 0 {
		return model.Route{}, errors.New("directions response carries no route")
	}
	route0 := r.Routes[0]
	geometry, err := decodeGeometry(route0.Geometry)
	if err != nil {
		return model.Route{}, err
	}
	return model.Route{
		DistanceKM:  route0.Summary.Distance / 1000,
		DurationMin: route0.Summary.Duration / 60,
		Geometry:    geometry,
	}, nil
}

// decodeGeometry accepts an encoded polyline or a GeoJSON LineString with
// [lon, lat] positions. A missing geometry yields an empty route shape.
func decodeGeometry(raw json.RawMessage) ([]model.Coordinate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		coords, _, err := polyline.DecodeCoords([]byte(encoded))
		if err != nil {
			return nil, fmt.Errorf("decode polyline: %w", err)
		}
		out := make([]model.Coordinate, 0, len(coords))
		for _, latLon := range coords {
			out = append(out, model.Coordinate{Lat: latLon[0], Lon: latLon[1]})
		}
		return out, nil
	}
	var line struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	out := make([]model.Coordinate, 0, len(line.Coordinates))
	for _, lonLat := range line.Coordinates {
		if len(lonLat) < 2 {
			continue
		}
		out = append(out, model.Coordinate{Lat: lonLat[1], Lon: lonLat[0]})
	}
	return out, nil
}
