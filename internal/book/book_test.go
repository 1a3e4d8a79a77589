package book

import (
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func TestApplySnapshot_DropsNonPositiveSizes(t *testing.T) {
	b := New("T1")
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 50, Size: 10}, {Price: 40, Size: 0}, {Price: 30, Size: -5}},
		[]domain.PriceLevel{{Price: 60, Size: 5}},
		time.Now(),
	)
	if len(b.Yes) != 1 {
		t.Fatalf("yes levels = %d, want 1", len(b.Yes))
	}
	if _, ok := b.Yes[50]; !ok {
		t.Fatalf("expected level 50 to survive")
	}
	for price, size := range b.Yes {
		if size <= 0 {
			t.Fatalf("level %d has non-positive size %v", price, size)
		}
	}
}

func TestApplyDelta_RemovesOnNonPositive(t *testing.T) {
	b := New("T1")
	now := time.Now()
	b.ApplyDelta(domain.SideYes, 50, 10, now)
	if b.Yes[50] != 10 {
		t.Fatalf("yes[50] = %v, want 10", b.Yes[50])
	}
	b.ApplyDelta(domain.SideYes, 50, -10, now)
	if _, ok := b.Yes[50]; ok {
		t.Fatalf("expected level 50 to be removed")
	}
	b.ApplyDelta(domain.SideYes, 50, 5, now)
	b.ApplyDelta(domain.SideYes, 50, -20, now)
	if _, ok := b.Yes[50]; ok {
		t.Fatalf("expected level 50 to be removed after going negative")
	}
}

func TestTopOfBook_DerivedFromBook(t *testing.T) {
	b := New("T1")
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 45, Size: 10}, {Price: 50, Size: 5}},
		[]domain.PriceLevel{{Price: 48, Size: 8}, {Price: 40, Size: 2}},
		time.Now(),
	)
	top := b.TopOfBook()
	if top.BestBid != 50 {
		t.Fatalf("best bid = %d, want 50", top.BestBid)
	}
	if top.BestAsk != 100-48 {
		t.Fatalf("best ask = %d, want %d", top.BestAsk, 100-48)
	}
	if top.BestBid > top.BestAsk {
		t.Fatalf("bid %d > ask %d, violates invariant", top.BestBid, top.BestAsk)
	}
}

func TestTopOfBook_PrefersTickerHints(t *testing.T) {
	b := New("T1")
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 45, Size: 10}},
		[]domain.PriceLevel{{Price: 48, Size: 8}},
		time.Now(),
	)
	bid, ask := 60, 70
	b.ApplyTicker(&bid, &ask, time.Now())
	top := b.TopOfBook()
	if top.BestBid != 60 || top.BestAsk != 70 {
		t.Fatalf("top = %+v, want ticker-supplied 60/70", top)
	}
}

func TestClassifyTradeSide(t *testing.T) {
	b := New("T1")
	b.ApplySnapshot(
		[]domain.PriceLevel{{Price: 50, Size: 10}},
		[]domain.PriceLevel{{Price: 50, Size: 10}},
		time.Now(),
	)
	if got := b.ClassifyTradeSide(60, "yes"); got != domain.TradeSideBuy {
		t.Fatalf("taker_side=yes => %v, want buy", got)
	}
	if got := b.ClassifyTradeSide(60, "no"); got != domain.TradeSideSell {
		t.Fatalf("taker_side=no => %v, want sell", got)
	}
	// mid = (50 + 50)/2 = 50
	if got := b.ClassifyTradeSide(55, ""); got != domain.TradeSideBuy {
		t.Fatalf("price above mid => %v, want buy", got)
	}
	if got := b.ClassifyTradeSide(40, ""); got != domain.TradeSideSell {
		t.Fatalf("price below mid => %v, want sell", got)
	}
}

func TestRefreshMidHistory_RespectsWindow(t *testing.T) {
	b := New("T1")
	t0 := time.Now()
	b.RefreshMidHistory(50, t0)
	if !b.HasMid5sAgo || b.Mid5sAgo != 50 {
		t.Fatalf("expected initial mid5sAgo = 50")
	}

	b.RefreshMidHistory(55, t0.Add(2*time.Second))
	if b.Mid5sAgo != 50 {
		t.Fatalf("mid5sAgo should not refresh before 5s elapsed, got %v", b.Mid5sAgo)
	}

	b.RefreshMidHistory(60, t0.Add(6*time.Second))
	if b.Mid5sAgo != 55 {
		t.Fatalf("mid5sAgo should refresh after 5s elapsed, got %v", b.Mid5sAgo)
	}
}
