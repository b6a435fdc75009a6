package polygon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/httputil"
	"github.com/seesaw/mfses/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Polygon.BaseURL = srv.URL
	cfg.Polygon.APIKey = "test-key"

	client := New(cfg, httputil.New(logger.NewNop()).DisableRetry(), NewLocalLimiter(6000), logger.NewNop())
	return client, srv
}

func TestSnapshotsParsesBatch(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Error("missing apiKey param")
		}
		w.Write([]byte(`{"tickers":[
			{"ticker":"AAPL","day":{"c":200,"v":50000000},"prevDay":{"c":190},"lastTrade":{"p":200.5}},
			{"ticker":"HALT","day":{"c":0,"v":0},"prevDay":{"c":10},"lastTrade":{"p":9.5}}
		]}`))
	})

	snaps, err := client.Snapshots(context.Background(), []string{"AAPL", "HALT"})
	if err != nil {
		t.Fatal(err)
	}

	aapl := snaps["AAPL"]
	if aapl == nil || aapl.Price != 200 || aapl.Volume != 50000000 {
		t.Fatalf("AAPL snapshot = %+v", aapl)
	}
	wantChange := 5.2632 // (200-190)/190*100 rounded to 4dp
	if aapl.PriceChangePct != wantChange {
		t.Errorf("PriceChangePct = %v, want %v", aapl.PriceChangePct, wantChange)
	}

	// Day close of zero falls back to the last trade.
	if halt := snaps["HALT"]; halt == nil || halt.Price != 9.5 {
		t.Errorf("HALT snapshot = %+v, want last-trade fallback price 9.5", snaps["HALT"])
	}

	calls, errs := client.Stats()
	if calls != 1 || errs != 0 {
		t.Errorf("stats = (%d, %d), want (1, 0)", calls, errs)
	}
}

func TestGetCountsErrors(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := client.Details(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error on 403")
	}

	calls, errs := client.Stats()
	if calls != 1 || errs != 1 {
		t.Errorf("stats = (%d, %d), want (1, 1)", calls, errs)
	}

	client.ResetStats()
	if calls, errs := client.Stats(); calls != 0 || errs != 0 {
		t.Errorf("stats after reset = (%d, %d)", calls, errs)
	}
}

func TestFinancialsDerivesGrowthAndLeverage(t *testing.T) {
	body := `{"results":[
		{"financials":{"income_statement":{"diluted_earnings_per_share":{"value":2.0}},
			"balance_sheet":{"long_term_debt":{"value":500},"current_debt":{"value":100},"equity":{"value":1200}}}},
		{"financials":{}},{"financials":{}},{"financials":{}},
		{"financials":{"income_statement":{"basic_earnings_per_share":{"value":1.6}},"balance_sheet":{}}}
	]}`
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	fin, err := client.Financials(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}

	if fin.EPSCurrent == nil || *fin.EPSCurrent != 2.0 {
		t.Errorf("EPSCurrent = %v", fin.EPSCurrent)
	}
	if fin.EPSGrowthPct == nil || *fin.EPSGrowthPct != 25 {
		t.Errorf("EPSGrowthPct = %v, want 25", fin.EPSGrowthPct)
	}
	if fin.DebtToEquity == nil || *fin.DebtToEquity != 0.5 {
		t.Errorf("DebtToEquity = %v, want 0.5", fin.DebtToEquity)
	}
}

func TestAvgVolume(t *testing.T) {
	bars := []DailyBar{{Volume: 100}, {Volume: 200}, {Volume: 300}}
	if avg := AvgVolume(bars); avg == nil || *avg != 200 {
		t.Errorf("AvgVolume = %v, want 200", avg)
	}
	if AvgVolume(nil) != nil {
		t.Error("no bars must yield nil")
	}
}

func TestOBVTrend(t *testing.T) {
	// Newest first: rising close every day, all volume accumulates.
	bars := []DailyBar{
		{Close: 13, Volume: 100},
		{Close: 12, Volume: 100},
		{Close: 11, Volume: 100},
		{Close: 10, Volume: 100},
	}

	trend, divergence := OBVTrend(bars)
	if trend == nil || *trend <= 0 {
		t.Fatalf("trend = %v, want positive on steady accumulation", trend)
	}
	if divergence == nil {
		t.Fatal("divergence must be set when prices are available")
	}

	if tr, _ := OBVTrend(bars[:2]); tr != nil {
		t.Error("fewer than 3 bars must yield nil trend")
	}
}

func TestCountYearlyIncreases(t *testing.T) {
	divs := []struct {
		CashAmount     float64 `json:"cash_amount"`
		ExDividendDate string  `json:"ex_dividend_date"`
	}{
		{0.30, "2026-02-10"},
		{0.28, "2025-11-10"},
		{0.28, "2025-08-10"},
		{0.25, "2024-08-10"},
		{0.25, "2023-08-10"},
	}

	// 2026: 0.30, 2025: 0.56, 2024: 0.25, 2023: 0.25
	// 2026 < 2025 breaks the streak immediately.
	if got := countYearlyIncreases(divs); got != 0 {
		t.Errorf("consecutive increases = %d, want 0", got)
	}

	rising := divs[2:] // 2025: 0.28, 2024: 0.25, 2023: 0.25
	if got := countYearlyIncreases(rising); got != 1 {
		t.Errorf("consecutive increases = %d, want 1", got)
	}
}
