// Package rates fetches live exchange rates from the Frankfurter API.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/evcharge/core/currency"
)

// DefaultURL is the public Frankfurter endpoint.
const DefaultURL = "https://api.frankfurter.app/latest"

// Client queries Frankfurter for the rates of Symbols against Base.
type Client struct {
	URL     string
	Base    string
	Symbols []string
	HTTP    *http.Client
}

// NewClient returns a client for EUR-based GBP and USD rates.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		URL:     endpoint,
		Base:    currency.DefaultBase,
		Symbols: []string{"GBP", "USD"},
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type response struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Latest implements currency.Source. The returned table is marked live.
func (c *Client) Latest(ctx context.Context) (currency.RateTable, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("from", c.Base)
	q.Set("to", strings.Join(c.Symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return currency.RateTable{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return currency.RateTable{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(r.Rates) == 0 {
		return currency.RateTable{}, fmt.Errorf("response carries no rates")
	}
	base := r.Base
	if base == "" {
		base = c.Base
	}
	return currency.NewRateTable(base, c.complete(base, r.Rates), currency.StatusLive, r.Date), nil
}

// complete fills the requested symbols the response left out with their
// fallback rates, re-expressed against base.
func (c *Client) complete(base string, got map[string]float64) map[string]float64 {
	fallback := currency.FallbackTable()
	out := make(map[string]float64, len(got)+len(c.Symbols))
	for code, rate := range got {
		out[code] = rate
	}
	baseRate, ok := fallback.Rate(base)
	if !ok || baseRate <= 0 {
		return out
	}
	for _, code := range c.Symbols {
		if rate, ok := out[code]; ok && rate > 0 {
			continue
		}
		if rate, ok := fallback.Rate(code); ok {
			out[code] = rate / baseRate
		}
	}
	return out
}
