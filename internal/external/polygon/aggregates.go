package polygon

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// DailyBar is one day of aggregate data.
type DailyBar struct {
	Timestamp int64   `json:"t"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type aggregatesResponse struct {
	Results []DailyBar `json:"results"`
}

// DailyBars fetches up to limit daily bars for the trailing window,
// newest first.
func (c *Client) DailyBars(ctx context.Context, ticker string, days, limit int) ([]DailyBar, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "desc")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var resp aggregatesResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AvgVolume returns the mean daily volume over the bars, or nil when
// no bars are available.
func AvgVolume(bars []DailyBar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	avg := sum / float64(len(bars))
	return &avg
}

// OBVTrend computes the on-balance volume over the bars and returns
// its percent change across the window, plus the divergence against
// the price trend. Bars must be newest first. Returns nils when there
// is not enough history.
func OBVTrend(bars []DailyBar) (trend, divergence *float64) {
	if len(bars) < 3 {
		return nil, nil
	}

	// Walk oldest to newest accumulating OBV.
	obv := 0.0
	var obvSeries []float64
	for i := len(bars) - 1; i >= 0; i-- {
		if i < len(bars)-1 {
			prevClose := bars[i+1].Close
			switch {
			case bars[i].Close > prevClose:
				obv += bars[i].Volume
			case bars[i].Close < prevClose:
				obv -= bars[i].Volume
			}
		}
		obvSeries = append(obvSeries, obv)
	}

	// Percent change of OBV relative to total traded volume, so the
	// scale is comparable across tickers.
	totalVolume := 0.0
	for _, b := range bars {
		totalVolume += b.Volume
	}
	if totalVolume == 0 {
		return nil, nil
	}

	obvChange := (obvSeries[len(obvSeries)-1] - obvSeries[0]) / totalVolume * 100
	trend = &obvChange

	oldPrice := bars[len(bars)-1].Close
	newPrice := bars[0].Close
	if oldPrice > 0 {
		priceChange := (newPrice - oldPrice) / oldPrice * 100
		div := obvChange - priceChange
		divergence = &div
	}

	return trend, divergence
}
