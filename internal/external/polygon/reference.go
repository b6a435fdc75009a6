package polygon

import (
	"context"
	"fmt"
	"net/url"
)

// TickerListing is one entry from the reference tickers endpoint.
type TickerListing struct {
	Ticker         string   `json:"ticker"`
	Name           string   `json:"name"`
	MarketCap      *float64 `json:"market_cap"`
	SICDescription string   `json:"sic_description"`
	Type           string   `json:"type"`
	Active         bool     `json:"active"`
}

// ListTickers pages through every active US common stock on the
// reference tickers endpoint. maxPages caps the walk; 0 means no cap.
func (c *Client) ListTickers(ctx context.Context, maxPages int) ([]TickerListing, error) {
	params := url.Values{}
	params.Set("market", "stocks")
	params.Set("type", "CS")
	params.Set("active", "true")
	params.Set("limit", "1000")

	path := "/v3/reference/tickers"
	var listings []TickerListing

	for page := 0; ; page++ {
		if maxPages > 0 && page >= maxPages {
			break
		}

		var resp struct {
			Results []TickerListing `json:"results"`
			NextURL string          `json:"next_url"`
		}
		if err := c.get(ctx, path, params, &resp); err != nil {
			return nil, fmt.Errorf("list tickers page %d: %w", page, err)
		}
		listings = append(listings, resp.Results...)

		if resp.NextURL == "" {
			break
		}
		// next_url is absolute; re-anchor it on the configured base.
		next, err := url.Parse(resp.NextURL)
		if err != nil {
			return nil, fmt.Errorf("parse next_url: %w", err)
		}
		path = next.Path
		params = next.Query()
		params.Del("apiKey")
	}
	return listings, nil
}
