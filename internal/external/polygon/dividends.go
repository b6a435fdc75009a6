package polygon

import (
	"context"
	"math"
	"net/url"
	"sort"
)

// DividendSummary is the dividend history rollup for one ticker.
type DividendSummary struct {
	AnnualDividend       float64
	ExDividendDate       string
	GrowthPct5Y          *float64
	ConsecutiveIncreases int
}

type dividendsResponse struct {
	Results []struct {
		CashAmount     float64 `json:"cash_amount"`
		ExDividendDate string  `json:"ex_dividend_date"`
	} `json:"results"`
}

// Dividends fetches up to five years of payments and derives the
// trailing annual dividend, its growth rate, and the streak of yearly
// increases.
func (c *Client) Dividends(ctx context.Context, ticker string) (*DividendSummary, error) {
	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("limit", "20")
	params.Set("order", "desc")
	params.Set("sort", "ex_dividend_date")

	var resp dividendsResponse
	if err := c.get(ctx, "/v3/reference/dividends", params, &resp); err != nil {
		return nil, err
	}

	divs := resp.Results
	summary := &DividendSummary{}
	if len(divs) == 0 {
		return summary, nil
	}

	summary.ExDividendDate = divs[0].ExDividendDate

	// Trailing annual dividend: last four payments.
	annual := 0.0
	for i := 0; i < len(divs) && i < 4; i++ {
		if divs[i].CashAmount > 0 {
			annual += divs[i].CashAmount
		}
	}
	summary.AnnualDividend = math.Round(annual*10000) / 10000

	// Annualized growth: recent four payments vs the oldest four.
	if len(divs) >= 8 {
		recent, old := 0.0, 0.0
		for i := 0; i < 4; i++ {
			recent += divs[i].CashAmount
			old += divs[len(divs)-4+i].CashAmount
		}
		if old > 0 {
			years := len(divs) / 4
			if years > 5 {
				years = 5
			}
			if years > 0 {
				growth := (math.Pow(recent/old, 1.0/float64(years)) - 1) * 100
				growth = math.Round(growth*10000) / 10000
				summary.GrowthPct5Y = &growth
			}
		}
	}

	summary.ConsecutiveIncreases = countYearlyIncreases(divs)
	return summary, nil
}

// countYearlyIncreases groups payments by calendar year and counts
// how many recent years paid more than the year before.
func countYearlyIncreases(divs []struct {
	CashAmount     float64 `json:"cash_amount"`
	ExDividendDate string  `json:"ex_dividend_date"`
}) int {
	yearly := make(map[string]float64)
	for _, d := range divs {
		if len(d.ExDividendDate) >= 4 {
			yearly[d.ExDividendDate[:4]] += d.CashAmount
		}
	}

	years := make([]string, 0, len(yearly))
	for y := range yearly {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	consecutive := 0
	for i := 0; i < len(years)-1; i++ {
		if yearly[years[i]] > yearly[years[i+1]] {
			consecutive++
		} else {
			break
		}
	}
	return consecutive
}
