package polygon

import (
	"context"
	"math"
	"net/url"
)

// Financials is the fundamental picture from the latest quarterly
// filings.
type Financials struct {
	EPSCurrent   *float64
	EPSYearAgo   *float64
	EPSGrowthPct *float64
	TotalDebt    *float64
	TotalEquity  *float64
	DebtToEquity *float64
}

type financialsResponse struct {
	Results []struct {
		Financials struct {
			IncomeStatement struct {
				DilutedEPS *struct {
					Value float64 `json:"value"`
				} `json:"diluted_earnings_per_share"`
				BasicEPS *struct {
					Value float64 `json:"value"`
				} `json:"basic_earnings_per_share"`
			} `json:"income_statement"`
			BalanceSheet struct {
				LongTermDebt *struct {
					Value float64 `json:"value"`
				} `json:"long_term_debt"`
				CurrentDebt *struct {
					Value float64 `json:"value"`
				} `json:"current_debt"`
				Equity *struct {
					Value float64 `json:"value"`
				} `json:"equity"`
			} `json:"balance_sheet"`
		} `json:"financials"`
	} `json:"results"`
}

// Financials fetches the last five quarterly filings and derives EPS,
// year-over-year EPS growth, and leverage.
func (c *Client) Financials(ctx context.Context, ticker string) (*Financials, error) {
	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("limit", "5")
	params.Set("sort", "period_of_report_date")
	params.Set("order", "desc")
	params.Set("timeframe", "quarterly")

	var resp financialsResponse
	if err := c.get(ctx, "/vX/reference/financials", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return &Financials{}, nil
	}

	fin := &Financials{}
	latest := resp.Results[0].Financials

	if eps := latest.IncomeStatement.DilutedEPS; eps != nil {
		fin.EPSCurrent = &eps.Value
	} else if eps := latest.IncomeStatement.BasicEPS; eps != nil {
		fin.EPSCurrent = &eps.Value
	}

	// Same quarter a year ago, four filings back.
	if len(resp.Results) >= 5 {
		old := resp.Results[4].Financials.IncomeStatement
		if eps := old.DilutedEPS; eps != nil {
			fin.EPSYearAgo = &eps.Value
		} else if eps := old.BasicEPS; eps != nil {
			fin.EPSYearAgo = &eps.Value
		}
	}

	if fin.EPSCurrent != nil && fin.EPSYearAgo != nil && *fin.EPSYearAgo != 0 {
		growth := math.Round((*fin.EPSCurrent-*fin.EPSYearAgo)/math.Abs(*fin.EPSYearAgo)*100*10000) / 10000
		fin.EPSGrowthPct = &growth
	}

	balance := latest.BalanceSheet
	totalDebt := 0.0
	if balance.LongTermDebt != nil {
		totalDebt += balance.LongTermDebt.Value
	}
	if balance.CurrentDebt != nil {
		totalDebt += balance.CurrentDebt.Value
	}
	fin.TotalDebt = &totalDebt

	if balance.Equity != nil {
		equity := balance.Equity.Value
		fin.TotalEquity = &equity

		var de float64
		if equity != 0 {
			de = math.Round(totalDebt/math.Abs(equity)*10000) / 10000
		} else {
			de = 99.99 // zero equity flag
		}
		fin.DebtToEquity = &de
	}

	return fin, nil
}
