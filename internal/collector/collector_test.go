package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/external/polygon"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/httputil"
	"github.com/seesaw/mfses/pkg/logger"
)

type fakeRawRepo struct {
	rows map[string]*contracts.RawAttributes
}

func newFakeRawRepo() *fakeRawRepo {
	return &fakeRawRepo{rows: make(map[string]*contracts.RawAttributes)}
}

func (f *fakeRawRepo) Get(_ context.Context, ticker string) (*contracts.RawAttributes, error) {
	return f.rows[ticker], nil
}

func (f *fakeRawRepo) Save(_ context.Context, raw *contracts.RawAttributes) error {
	f.rows[raw.Ticker] = raw
	return nil
}

func testCollector(t *testing.T, handler http.HandlerFunc) (*Collector, *fakeRawRepo) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Polygon.BaseURL = srv.URL
	cfg.Polygon.APIKey = "test"
	cfg.Pipeline.FundamentalsTTL = 168 * time.Hour
	cfg.Pipeline.DividendsTTL = 168 * time.Hour

	log := logger.NewNop()
	client := polygon.New(cfg, httputil.New(log).DisableRetry(), polygon.NewLocalLimiter(60000), log)
	repo := newFakeRawRepo()
	return New(client, NewMemoryCache(log), repo, cfg, log), repo
}

func polygonStub(financialCalls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/vX/reference/financials"):
			if financialCalls != nil {
				atomic.AddInt32(financialCalls, 1)
			}
			w.Write([]byte(`{"results":[{"financials":{
				"income_statement":{"diluted_earnings_per_share":{"value":4.0}},
				"balance_sheet":{"long_term_debt":{"value":300},"equity":{"value":1000}}}}]}`))
		case strings.Contains(r.URL.Path, "/v3/reference/dividends"):
			w.Write([]byte(`{"results":[
				{"cash_amount":0.5,"ex_dividend_date":"2026-06-01"},
				{"cash_amount":0.5,"ex_dividend_date":"2026-03-01"},
				{"cash_amount":0.5,"ex_dividend_date":"2025-12-01"},
				{"cash_amount":0.5,"ex_dividend_date":"2025-09-01"}]}`))
		case strings.Contains(r.URL.Path, "/v3/reference/tickers/"):
			w.Write([]byte(`{"results":{"ticker":"AAPL","name":"Apple Inc.","market_cap":3000000000000,"sic_description":"Electronic Computers"}}`))
		case strings.Contains(r.URL.Path, "/v2/aggs/"):
			w.Write([]byte(`{"results":[
				{"t":3,"c":102,"v":1000000},
				{"t":2,"c":101,"v":1100000},
				{"t":1,"c":100,"v":900000}]}`))
		default:
			w.Write([]byte(`{}`))
		}
	}
}

func TestCollectOneFullRow(t *testing.T) {
	c, repo := testCollector(t, polygonStub(nil))

	snap := &polygon.MarketSnapshot{Ticker: "AAPL", Price: 200, PriceChangePct: 1.5, Volume: 50_000_000}
	raw, err := c.CollectOne(context.Background(), "AAPL", snap)
	if err != nil {
		t.Fatal(err)
	}

	if raw.Price == nil || *raw.Price != 200 {
		t.Errorf("Price = %v", raw.Price)
	}
	if raw.MarketCap == nil || *raw.MarketCap != 3_000_000_000_000 {
		t.Errorf("MarketCap = %v", raw.MarketCap)
	}
	if raw.EPSCurrent == nil || *raw.EPSCurrent != 4.0 {
		t.Errorf("EPSCurrent = %v", raw.EPSCurrent)
	}
	if raw.DebtToEquity == nil || *raw.DebtToEquity != 0.3 {
		t.Errorf("DebtToEquity = %v", raw.DebtToEquity)
	}
	// Annual dividend 2.0 on a $200 price.
	if raw.DividendYield == nil || *raw.DividendYield != 1.0 {
		t.Errorf("DividendYield = %v, want 1.0", raw.DividendYield)
	}
	// 2.0 / 4.0 EPS.
	if raw.PayoutRatio == nil || *raw.PayoutRatio != 50 {
		t.Errorf("PayoutRatio = %v, want 50", raw.PayoutRatio)
	}
	if raw.AvgVolume30D == nil || *raw.AvgVolume30D != 1_000_000 {
		t.Errorf("AvgVolume30D = %v, want 1000000", raw.AvgVolume30D)
	}
	if raw.OBVTrend == nil {
		t.Error("OBVTrend must be derived from bars")
	}

	// price, market cap, eps, d/e, volume all present.
	if raw.DataQuality != 100 {
		t.Errorf("DataQuality = %v, want 100", raw.DataQuality)
	}

	if repo.rows["AAPL"] == nil {
		t.Error("row must be persisted")
	}
}

func TestCollectOneCachesFundamentals(t *testing.T) {
	var financialCalls int32
	c, _ := testCollector(t, polygonStub(&financialCalls))

	snap := &polygon.MarketSnapshot{Ticker: "AAPL", Price: 200, Volume: 1}
	for i := 0; i < 3; i++ {
		if _, err := c.CollectOne(context.Background(), "AAPL", snap); err != nil {
			t.Fatal(err)
		}
	}

	if got := atomic.LoadInt32(&financialCalls); got != 1 {
		t.Errorf("financials fetched %d times, want 1 (cache-aside)", got)
	}
}

func TestCollectOneNoDataFails(t *testing.T) {
	c, _ := testCollector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := c.CollectOne(context.Background(), "GHOST", nil); err == nil {
		t.Error("no snapshot and failing details must return an error")
	}
}

func TestCollectOnePreservesExternalFields(t *testing.T) {
	c, repo := testCollector(t, polygonStub(nil))

	rating := 4.2
	repo.rows["AAPL"] = &contracts.RawAttributes{Ticker: "AAPL", AnalystRating: &rating}

	snap := &polygon.MarketSnapshot{Ticker: "AAPL", Price: 200, Volume: 1}
	raw, err := c.CollectOne(context.Background(), "AAPL", snap)
	if err != nil {
		t.Fatal(err)
	}

	if raw.AnalystRating == nil || *raw.AnalystRating != 4.2 {
		t.Errorf("AnalystRating = %v, must survive refresh", raw.AnalystRating)
	}
}

func TestQualityScorePartial(t *testing.T) {
	price := 10.0
	vol := 100.0
	raw := &contracts.RawAttributes{Price: &price, Volume: &vol}
	if got := qualityScore(raw); got != 40 {
		t.Errorf("qualityScore = %v, want 40 (2 of 5 checks)", got)
	}
}
