package signal

import (
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func candidate(sigType domain.SignalType, ticker, ladderKey string, severity float64) domain.Signal {
	return domain.Signal{
		MarketTicker:  ticker,
		Type:          sigType,
		LadderKey:     ladderKey,
		SeverityScore: severity,
	}
}

func TestLifecycle_PersistenceWindow(t *testing.T) {
	// Property #7: a candidate seen continuously does not emit before
	// PersistDuration has elapsed since first sighting, and does emit once
	// it has.
	mc := clock.NewManual(time.Unix(0, 0))
	l := New(DefaultConfig(), mc)

	c := candidate(domain.SignalMonoViolation, "T1", "g1|spread|A|wins_by_over", 10)

	if got := l.Process([]domain.Signal{c}); len(got) != 0 {
		t.Fatalf("first sighting should not emit, got %+v", got)
	}

	mc.Advance(2999 * time.Millisecond)
	if got := l.Process([]domain.Signal{c}); len(got) != 0 {
		t.Fatalf("sighting just under persist window should not emit, got %+v", got)
	}

	mc.Advance(2 * time.Millisecond) // now 3001ms since first sighting
	got := l.Process([]domain.Signal{c})
	if len(got) != 1 {
		t.Fatalf("expected emission once persist window elapsed, got %+v", got)
	}
	if got[0].ID == "" {
		t.Fatalf("emitted signal should have an assigned id")
	}
}

func TestLifecycle_CooldownGatesReemission(t *testing.T) {
	mc := clock.NewManual(time.Unix(0, 0))
	l := New(DefaultConfig(), mc)
	c := candidate(domain.SignalSumGT1, "T1", "", 5)

	l.Process([]domain.Signal{c})
	mc.Advance(3100 * time.Millisecond)
	first := l.Process([]domain.Signal{c})
	if len(first) != 1 {
		t.Fatalf("expected first emission, got %+v", first)
	}

	mc.Advance(10 * time.Second) // within 30s cooldown
	second := l.Process([]domain.Signal{c})
	if len(second) != 0 {
		t.Fatalf("expected no re-emission within cooldown, got %+v", second)
	}

	mc.Advance(21 * time.Second) // now 31s since first emission
	third := l.Process([]domain.Signal{c})
	if len(third) != 1 {
		t.Fatalf("expected re-emission after cooldown elapsed, got %+v", third)
	}
}

func TestLifecycle_PendingEviction(t *testing.T) {
	mc := clock.NewManual(time.Unix(0, 0))
	l := New(DefaultConfig(), mc)
	c := candidate(domain.SignalWideSpread, "T1", "", 1)

	l.Process([]domain.Signal{c})
	mc.Advance(2001 * time.Millisecond)
	l.Cleanup()
	if l.PendingCount() != 0 {
		t.Fatalf("expected stale pending entry to be evicted, count=%d", l.PendingCount())
	}
}

func TestLifecycle_ActiveEvictionAfterLastEmission(t *testing.T) {
	mc := clock.NewManual(time.Unix(0, 0))
	l := New(DefaultConfig(), mc)
	c := candidate(domain.SignalJump, "T1", "", 1)

	l.Process([]domain.Signal{c})
	mc.Advance(3100 * time.Millisecond)
	l.Process([]domain.Signal{c})
	if l.ActiveCount() != 1 {
		t.Fatalf("expected 1 active signal after emission")
	}

	mc.Advance(61 * time.Second)
	l.Cleanup()
	if l.ActiveCount() != 0 {
		t.Fatalf("expected active signal to expire 60s after its last emission, count=%d", l.ActiveCount())
	}
}

func TestLifecycle_TopKBySeverity(t *testing.T) {
	mc := clock.NewManual(time.Unix(0, 0))
	cfg := DefaultConfig()
	cfg.TopK = 2
	l := New(cfg, mc)

	candidates := []domain.Signal{
		candidate(domain.SignalMonoViolation, "A", "", 5),
		candidate(domain.SignalMonoViolation, "B", "", 20),
		candidate(domain.SignalMonoViolation, "C", "", 10),
	}
	l.Process(candidates)
	mc.Advance(3100 * time.Millisecond)
	l.Process(candidates)

	top := l.ActiveSignals()
	if len(top) != 2 {
		t.Fatalf("expected top-2, got %d", len(top))
	}
	if top[0].MarketTicker != "B" || top[1].MarketTicker != "C" {
		t.Fatalf("expected [B,C] by descending severity, got [%s,%s]", top[0].MarketTicker, top[1].MarketTicker)
	}
}
