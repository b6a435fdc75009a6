package contracts

import "testing"

func fp(v float64) *float64 { return &v }

func TestUpsidePct(t *testing.T) {
	raw := &RawAttributes{Ticker: "AAPL", Price: fp(100), PriceTarget: fp(125)}
	got := raw.UpsidePct()
	if got == nil || *got != 25 {
		t.Fatalf("UpsidePct = %v, want 25", got)
	}

	if (&RawAttributes{Price: fp(0), PriceTarget: fp(125)}).UpsidePct() != nil {
		t.Error("zero price must yield nil upside")
	}
	if (&RawAttributes{Price: fp(100)}).UpsidePct() != nil {
		t.Error("missing target must yield nil upside")
	}
}

func TestVolumeRatio(t *testing.T) {
	raw := &RawAttributes{Volume: fp(3_000_000), AvgVolume30D: fp(1_000_000)}
	got := raw.VolumeRatio()
	if got == nil || *got != 3 {
		t.Fatalf("VolumeRatio = %v, want 3", got)
	}

	if (&RawAttributes{Volume: fp(100)}).VolumeRatio() != nil {
		t.Error("missing average must yield nil ratio")
	}
	if (&RawAttributes{Volume: fp(100), AvgVolume30D: fp(0)}).VolumeRatio() != nil {
		t.Error("zero average must yield nil ratio")
	}
}
