package ring

import (
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func TestRing_PrunesByAge(t *testing.T) {
	r := New(500, 60*time.Second)
	t0 := time.Now()

	r.AddMid(domain.MidPoint{Ts: t0, Mid: 50}, t0)
	r.AddMid(domain.MidPoint{Ts: t0.Add(70 * time.Second), Mid: 55}, t0.Add(70*time.Second))

	mids := r.Mids()
	if len(mids) != 1 {
		t.Fatalf("mids = %d, want 1 after pruning stale entry", len(mids))
	}
	if mids[0].Mid != 55 {
		t.Fatalf("surviving mid = %v, want 55", mids[0].Mid)
	}
}

func TestRing_PrunesByCount(t *testing.T) {
	r := New(3, time.Hour)
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		r.AddMid(domain.MidPoint{Ts: t0.Add(time.Duration(i) * time.Millisecond), Mid: float64(i)}, t0)
	}
	mids := r.Mids()
	if len(mids) != 3 {
		t.Fatalf("mids = %d, want 3 after count pruning", len(mids))
	}
	if mids[0].Mid != 2 {
		t.Fatalf("oldest surviving mid = %v, want 2 (index 2..4 kept)", mids[0].Mid)
	}
}

func TestRing_TradesSince(t *testing.T) {
	r := New(500, 60*time.Second)
	t0 := time.Now()
	r.AddTrade(domain.Trade{Ticker: "T1", Ts: t0, Price: 50, Count: 1}, t0)
	r.AddTrade(domain.Trade{Ticker: "T1", Ts: t0.Add(30 * time.Second), Price: 52, Count: 1}, t0.Add(30*time.Second))

	since := t0.Add(10 * time.Second)
	trades := r.TradesSince(since)
	if len(trades) != 1 {
		t.Fatalf("trades since = %d, want 1", len(trades))
	}
}
