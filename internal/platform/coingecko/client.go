// Package coingecko implements the SOL/USD reference-rate source against the
// CoinGecko simple-price endpoint.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultURL is the CoinGecko simple-price query for SOL in USD.
const DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"

// Client fetches the SOL/USD conversion rate.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the given price endpoint. An empty url
// falls back to DefaultURL.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SolPrice returns the current SOL price in USD.
func (c *Client) SolPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("coingecko: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("coingecko: fetch sol price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("coingecko: decode response: %w", err)
	}
	if body.Solana.USD <= 0 {
		return 0, fmt.Errorf("coingecko: missing solana price in response")
	}
	return body.Solana.USD, nil
}
