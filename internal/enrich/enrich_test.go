package enrich

import (
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/ring"
)

func TestExitability_NoLowerClamp(t *testing.T) {
	// A tight spread with huge size drives the formula well below any
	// sensible floor; spec §9 says this asymmetry (clamp up, not down) is
	// intentional and must be preserved.
	got := exitabilityCents(0, 10000, 10000)
	if got >= 1 {
		t.Fatalf("expected exitability to go well below 1 with no lower clamp, got %v", got)
	}
}

func TestExitability_NoTopSize(t *testing.T) {
	got := exitabilityCents(5, 0, 0)
	if got != 99 {
		t.Fatalf("exitability with no top size = %v, want 99", got)
	}
}

func TestExitability_UpperClamp(t *testing.T) {
	got := exitabilityCents(100, 0.01, 0.01)
	if got != 50 {
		t.Fatalf("exitability = %v, want clamped to 50", got)
	}
}

func TestEnrich_Flags(t *testing.T) {
	s := domain.Stats{
		BidSize:            1,
		AskSize:            1,
		Spread:             10,
		JumpFlag:           true,
		LastTickerAgeMs:    9000,
		LastOrderbookAgeMs: 9000,
		FeedStatus:         domain.FeedStatusStale,
	}
	r := ring.New(500, 60*time.Second)
	e := Enrich(s, domain.GroupTypeTotal, nil, "Over", r, time.Now(), DefaultConfig())

	want := map[domain.AlertFlag]bool{
		domain.AlertStaleQuote: false,
		domain.AlertJump:       false,
		domain.AlertLowLiq:     false,
		domain.AlertWideSpread: false,
	}
	for _, f := range e.Flags {
		want[f] = true
	}
	for flag, present := range want {
		if !present {
			t.Errorf("expected flag %s to be set, flags=%v", flag, e.Flags)
		}
	}
}
