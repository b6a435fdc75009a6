package collector

import (
	"context"
	"testing"
	"time"

	"github.com/seesaw/mfses/pkg/logger"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	type payload struct {
		Value int `json:"value"`
	}

	if err := cache.Set(ctx, KindFundamentals, "AAPL", payload{Value: 7}, time.Minute); err != nil {
		t.Fatal(err)
	}

	var got payload
	hit, err := cache.Get(ctx, KindFundamentals, "AAPL", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !hit || got.Value != 7 {
		t.Errorf("hit=%v got=%+v", hit, got)
	}

	// Different kind is a different key.
	if hit, _ := cache.Get(ctx, KindDividends, "AAPL", &got); hit {
		t.Error("kinds must not collide")
	}
}

func TestMemoryCacheExpiredIsMiss(t *testing.T) {
	cache := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	if err := cache.Set(ctx, KindBars, "MSFT", []int{1, 2}, -time.Second); err != nil {
		t.Fatal(err)
	}

	var got []int
	hit, err := cache.Get(ctx, KindBars, "MSFT", &got)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("expired entry must behave like a miss")
	}
}

func TestMemoryCacheExpiryIsInclusive(t *testing.T) {
	cache := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base }
	if err := cache.Set(ctx, KindDetails, "AAPL", 1, time.Minute); err != nil {
		t.Fatal(err)
	}

	// Exactly at expiry the entry is already gone.
	cache.now = func() time.Time { return base.Add(time.Minute) }
	var got int
	if hit, _ := cache.Get(ctx, KindDetails, "AAPL", &got); hit {
		t.Error("entry at its expiry instant must be a miss")
	}
	if removed := cache.CleanExpired(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// One instant earlier it is still live.
	cache.now = func() time.Time { return base }
	cache.Set(ctx, KindDetails, "MSFT", 2, time.Minute)
	cache.now = func() time.Time { return base.Add(time.Minute - time.Nanosecond) }
	if hit, _ := cache.Get(ctx, KindDetails, "MSFT", &got); !hit {
		t.Error("entry before its expiry must be a hit")
	}
}

func TestMemoryCacheCleanExpired(t *testing.T) {
	cache := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	cache.Set(ctx, KindBars, "OLD", 1, -time.Second)
	cache.Set(ctx, KindBars, "LIVE", 2, time.Minute)

	if removed := cache.CleanExpired(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("len = %d, want 1", cache.Len())
	}
}
