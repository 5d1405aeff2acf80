// Package ocm queries the OpenChargeMap POI API for charging points.
package ocm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/evcharge/core/model"
)

// DefaultURL is the public POI endpoint.
const DefaultURL = "https://api.openchargemap.io/v3/poi/"

// Client implements planner.Directory.
type Client struct {
	URL         string
	APIKey      string
	CountryCode string
	HTTP        *http.Client
}

// NewClient returns a client for the given country. Without an API key every
// search returns no chargers.
func NewClient(endpoint, apiKey, countryCode string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if countryCode == "" {
		countryCode = "GB"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{URL: endpoint, APIKey: apiKey, CountryCode: countryCode, HTTP: &http.Client{Timeout: timeout}}
}

type poi struct {
	ID          json.Number `json:"ID"`
	AddressInfo *struct {
		Title     string   `json:"Title"`
		Latitude  float64  `json:"Latitude"`
		Longitude float64  `json:"Longitude"`
		Distance  *float64 `json:"Distance"`
	} `json:"AddressInfo"`
	OperatorInfo *struct {
		Title string `json:"Title"`
	} `json:"OperatorInfo"`
	Connections []struct {
		PowerKW any `json:"PowerKW"`
	} `json:"Connections"`
}

// Nearby lists the charging points within radiusKM of at.
func (c *Client) Nearby(ctx context.Context, at model.Coordinate, radiusKM float64, maxResults int) ([]model.ChargerCandidate, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("output", "json")
	q.Set("countrycode", c.CountryCode)
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("distance", strconv.FormatFloat(radiusKM, 'f', -1, 64))
	q.Set("distanceunit", "KM")
	q.Set("maxresults", strconv.Itoa(maxResults))
	q.Set("compact", "false")
	q.Set("verbose", "true")
	q.Set("includeoperatorinfo", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.APIKey)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var pois []poi
	if err := dec.Decode(&pois); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out := make([]model.ChargerCandidate, 0, len(pois))
	for _, p := range pois {
		out = append(out, p.candidate())
	}
	return out, nil
}

func (p poi) candidate() model.ChargerCandidate {
	c := model.ChargerCandidate{ID: p.ID.String()}
	if p.OperatorInfo != nil {
		c.Operator = p.OperatorInfo.Title
	}
	if a := p.AddressInfo; a != nil {
		c.Site = a.Title
		c.Point = model.Coordinate{Lat: a.Latitude, Lon: a.Longitude}
		c.DistanceKM = a.Distance
	}
	for _, conn := range p.Connections {
		c.Connections = append(c.Connections, model.Connection{PowerKW: power(conn.PowerKW)})
	}
	return c
}

// power accepts only JSON numbers. Strings, booleans and nulls yield nil.
func power(v any) *float64 {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}
