package stats

import (
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/book"
	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/ring"
)

func defaultConfig() Config {
	return Config{TopNLevels: 5, StaleThreshold: 3 * time.Second, JumpThreshold: 5}
}

func TestCompute_PriceBounds(t *testing.T) {
	b := book.New("T1")
	now := time.Now()
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 45, Size: 10}},
		[]domain.PriceLevel{{Price: 48, Size: 8}},
		now,
	)
	r := ring.New(500, 60*time.Second)

	s := Compute(b, r, defaultConfig(), now)

	if s.BestBid < 0 || s.BestBid > 100 {
		t.Fatalf("best bid out of range: %d", s.BestBid)
	}
	if s.BestAsk < 0 || s.BestAsk > 100 {
		t.Fatalf("best ask out of range: %d", s.BestAsk)
	}
	if s.BestBid > s.BestAsk {
		t.Fatalf("bid %d > ask %d", s.BestBid, s.BestAsk)
	}
	if s.Spread < 0 {
		t.Fatalf("negative spread: %v", s.Spread)
	}
	if s.ImpliedProb < 0 || s.ImpliedProb > 1 {
		t.Fatalf("implied prob out of range: %v", s.ImpliedProb)
	}
}

func TestCompute_FreshnessBoundary(t *testing.T) {
	b := book.New("T1")
	now := time.Now()
	b.ApplyTicker(intPtr(50), intPtr(55), now)
	r := ring.New(500, 60*time.Second)

	// Within 3s: fresh.
	s := Compute(b, r, defaultConfig(), now.Add(2*time.Second))
	if s.FeedStatus != domain.FeedStatusFresh {
		t.Fatalf("feed status = %v, want fresh within 3s", s.FeedStatus)
	}

	// Beyond 3s: stale.
	s = Compute(b, r, defaultConfig(), now.Add(4*time.Second))
	if s.FeedStatus != domain.FeedStatusStale {
		t.Fatalf("feed status = %v, want stale beyond 3s", s.FeedStatus)
	}
}

func TestCompute_UnknownBeforeAnyUpdate(t *testing.T) {
	b := book.New("T1")
	r := ring.New(500, 60*time.Second)
	s := Compute(b, r, defaultConfig(), time.Now())
	if s.FeedStatus != domain.FeedStatusUnknown {
		t.Fatalf("feed status = %v, want unknown", s.FeedStatus)
	}
}

func TestCompute_JumpFlag(t *testing.T) {
	b := book.New("T1")
	now := time.Now()
	b.RefreshMidHistory(50, now)
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 56, Size: 10}},
		[]domain.PriceLevel{{Price: 44, Size: 10}},
		now,
	)
	r := ring.New(500, 60*time.Second)

	s := Compute(b, r, defaultConfig(), now)
	// mid = (56 + 56)/2 = 56, |56-50| = 6 >= 5 threshold
	if !s.JumpFlag {
		t.Fatalf("expected jump flag, mid=%v mid5sAgo=%v", s.Mid, b.Mid5sAgo)
	}
}

func intPtr(v int) *int { return &v }
