package polygon

import (
	"context"
	"fmt"
)

// TickerDetails is the reference data for one ticker.
type TickerDetails struct {
	Ticker            string
	Name              string
	MarketCap         *float64
	SharesOutstanding *float64
	SICDescription    string
}

type detailsResponse struct {
	Results struct {
		Ticker                   string   `json:"ticker"`
		Name                     string   `json:"name"`
		MarketCap                *float64 `json:"market_cap"`
		ShareClassShares         *float64 `json:"share_class_shares_outstanding"`
		WeightedShares           *float64 `json:"weighted_shares_outstanding"`
		SICDescription           string   `json:"sic_description"`
	} `json:"results"`
}

// Details fetches reference data for one ticker.
func (c *Client) Details(ctx context.Context, ticker string) (*TickerDetails, error) {
	var resp detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/v3/reference/tickers/%s", ticker), nil, &resp); err != nil {
		return nil, err
	}

	r := resp.Results
	shares := r.ShareClassShares
	if shares == nil {
		shares = r.WeightedShares
	}

	return &TickerDetails{
		Ticker:            r.Ticker,
		Name:              r.Name,
		MarketCap:         r.MarketCap,
		SharesOutstanding: shares,
		SICDescription:    r.SICDescription,
	}, nil
}
