package polygon

import (
	"context"
	"math"
	"net/url"
	"strings"
)

// snapshotBatchSize is the maximum tickers Polygon accepts per
// snapshot call.
const snapshotBatchSize = 100

// MarketSnapshot is the current price and volume picture for one
// ticker.
type MarketSnapshot struct {
	Ticker         string
	Price          float64
	PreviousClose  float64
	PriceChangePct float64
	Volume         float64
}

type snapshotResponse struct {
	Tickers []struct {
		Ticker string `json:"ticker"`
		Day    struct {
			Close  float64 `json:"c"`
			Volume float64 `json:"v"`
		} `json:"day"`
		PrevDay struct {
			Close float64 `json:"c"`
		} `json:"prevDay"`
		LastTrade struct {
			Price float64 `json:"p"`
		} `json:"lastTrade"`
	} `json:"tickers"`
}

// Snapshots fetches price and volume for many tickers, batching into
// groups of 100. Tickers missing from the response are simply absent
// from the result map.
func (c *Client) Snapshots(ctx context.Context, tickers []string) (map[string]*MarketSnapshot, error) {
	results := make(map[string]*MarketSnapshot, len(tickers))

	for start := 0; start < len(tickers); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[start:end]

		params := url.Values{}
		params.Set("tickers", strings.Join(batch, ","))

		var resp snapshotResponse
		if err := c.get(ctx, "/v2/snapshot/locale/us/markets/stocks/tickers", params, &resp); err != nil {
			return results, err
		}

		for _, snap := range resp.Tickers {
			price := snap.Day.Close
			if price == 0 {
				price = snap.LastTrade.Price
			}

			changePct := 0.0
			if snap.PrevDay.Close > 0 {
				changePct = math.Round((price-snap.PrevDay.Close)/snap.PrevDay.Close*100*10000) / 10000
			}

			results[snap.Ticker] = &MarketSnapshot{
				Ticker:         snap.Ticker,
				Price:          price,
				PreviousClose:  snap.PrevDay.Close,
				PriceChangePct: changePct,
				Volume:         snap.Day.Volume,
			}
		}
	}

	return results, nil
}
