package universe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/external/polygon"
	"github.com/seesaw/mfses/pkg/logger"
)

const (
	// DefaultMaxInstruments caps the tracked universe.
	DefaultMaxInstruments = 2501

	// DefaultMinMarketCap filters out micro caps from discovery.
	// Seed tickers bypass the filter.
	DefaultMinMarketCap = 300_000_000
)

// Options control a bootstrap pass.
type Options struct {
	// SeedOnly skips reference discovery and loads only the curated
	// seed list.
	SeedOnly bool

	// DryRun classifies and counts without writing anything.
	DryRun bool

	MaxInstruments int
	MinMarketCap   float64
}

// Result summarizes what a bootstrap pass did (or would do).
type Result struct {
	Total        int            `json:"total"`
	Inserted     int            `json:"inserted"`
	StatesSeeded int            `json:"states_seeded"`
	ByTier       map[int]int    `json:"by_tier"`
	BySector     map[string]int `json:"by_sector"`
}

// Bootstrapper seeds the instrument universe: curated seed tickers
// plus reference-listing discovery, classified by sector and tier,
// every instrument starting COLD and due immediately.
// SSOT: universe membership is written only here and by deactivation.
type Bootstrapper struct {
	client      *polygon.Client
	instruments contracts.InstrumentRepository
	states      contracts.StateRepository
	logger      *logger.Logger
	now         func() time.Time
}

// NewBootstrapper creates a universe bootstrapper.
func NewBootstrapper(client *polygon.Client, instruments contracts.InstrumentRepository, states contracts.StateRepository, log *logger.Logger) *Bootstrapper {
	return &Bootstrapper{
		client:      client,
		instruments: instruments,
		states:      states,
		logger:      log,
		now:         time.Now,
	}
}

// Run executes one bootstrap pass.
func (b *Bootstrapper) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.MaxInstruments <= 0 {
		opts.MaxInstruments = DefaultMaxInstruments
	}
	if opts.MinMarketCap <= 0 {
		opts.MinMarketCap = DefaultMinMarketCap
	}

	var listings []polygon.TickerListing
	if !opts.SeedOnly {
		var err error
		listings, err = b.client.ListTickers(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("fetch reference tickers: %w", err)
		}
		b.logger.WithFields(map[string]interface{}{
			"listings": len(listings),
		}).Info("Reference tickers fetched")
	}

	instruments := BuildUniverse(listings, opts.MaxInstruments, opts.MinMarketCap)

	result := &Result{
		Total:    len(instruments),
		ByTier:   make(map[int]int),
		BySector: make(map[string]int),
	}
	for _, inst := range instruments {
		result.ByTier[inst.Tier]++
		result.BySector[inst.Sector]++
	}

	if opts.DryRun {
		b.logger.WithFields(map[string]interface{}{
			"total": result.Total,
		}).Info("Bootstrap dry run, nothing written")
		return result, nil
	}

	if err := b.instruments.SaveBatch(ctx, instruments); err != nil {
		return nil, fmt.Errorf("save instruments: %w", err)
	}
	result.Inserted = len(instruments)

	// Every instrument starts COLD and due now, so the first pipeline
	// cycle picks the whole universe up.
	now := b.now()
	for _, inst := range instruments {
		existing, err := b.states.Get(ctx, inst.Ticker)
		if err != nil {
			return nil, fmt.Errorf("check state for %s: %w", inst.Ticker, err)
		}
		if existing != nil {
			continue
		}
		err = b.states.Save(ctx, &contracts.InstrumentState{
			Ticker:        inst.Ticker,
			State:         contracts.StateCold,
			NextUpdateDue: now,
			UpdatedAt:     now,
		})
		if err != nil {
			return nil, fmt.Errorf("seed state for %s: %w", inst.Ticker, err)
		}
		result.StatesSeeded++
	}

	b.logger.WithFields(map[string]interface{}{
		"inserted":      result.Inserted,
		"states_seeded": result.StatesSeeded,
	}).Info("Universe bootstrap complete")
	return result, nil
}

// BuildUniverse merges the seed list with discovered listings,
// classifies each instrument and trims to maxInstruments. Seeds are
// always kept; discovered tickers fill the rest by market cap.
func BuildUniverse(listings []polygon.TickerListing, maxInstruments int, minMarketCap float64) []*contracts.Instrument {
	byTicker := make(map[string]polygon.TickerListing, len(listings))
	for _, l := range listings {
		byTicker[l.Ticker] = l
	}

	seen := make(map[string]bool, maxInstruments)
	seeds := make([]*contracts.Instrument, 0, len(SeedTickers))
	for _, ticker := range SeedTickers {
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		seeds = append(seeds, instrumentFrom(ticker, byTicker[ticker]))
	}

	type candidate struct {
		inst      *contracts.Instrument
		marketCap float64
	}
	candidates := make([]candidate, 0, len(listings))
	for _, l := range listings {
		if l.Ticker == "" || seen[l.Ticker] || !tradableTicker(l.Ticker) {
			continue
		}
		if l.MarketCap == nil || *l.MarketCap < minMarketCap {
			continue
		}
		seen[l.Ticker] = true
		candidates = append(candidates, candidate{
			inst:      instrumentFrom(l.Ticker, l),
			marketCap: *l.MarketCap,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].marketCap != candidates[j].marketCap {
			return candidates[i].marketCap > candidates[j].marketCap
		}
		return candidates[i].inst.Ticker < candidates[j].inst.Ticker
	})

	universe := seeds
	for _, c := range candidates {
		if len(universe) >= maxInstruments {
			break
		}
		universe = append(universe, c.inst)
	}
	return universe
}

// tradableTicker filters out warrants, units and odd share classes.
// Class B listings like BRK.B stay in.
func tradableTicker(ticker string) bool {
	if len(ticker) > 5 {
		return false
	}
	if strings.Contains(ticker, ".") && !strings.HasSuffix(ticker, ".B") {
		return false
	}
	return true
}

func instrumentFrom(ticker string, l polygon.TickerListing) *contracts.Instrument {
	name := l.Name
	if name == "" {
		name = ticker
	}

	tier := contracts.TierSmall
	if l.MarketCap != nil && *l.MarketCap > 0 {
		tier = contracts.TierForMarketCap(*l.MarketCap)
	}

	return &contracts.Instrument{
		Ticker: ticker,
		Name:   name,
		Sector: ClassifySector(l.SICDescription),
		Tier:   tier,
		Active: true,
	}
}
