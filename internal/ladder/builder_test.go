package ladder

import (
	"testing"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func baseInput(ticker string, line, bid, ask float64) Input {
	return Input{
		Ticker:      ticker,
		GroupType:   domain.GroupTypeSpread,
		LadderKey:   "g1|spread|BAL|wins_by_over",
		GameID:      "g1",
		Side:        "BAL",
		Line:        line,
		HasLine:     true,
		BidProb:     bid / 100,
		AskProb:     ask / 100,
		MidProb:     (bid + ask) / 200,
		DepthBid:    5000,
		DepthAsk:    5000,
		Volume:      10000,
		SpreadCents: ask - bid,
		ParseSource: domain.ParseSourceTicker,
	}
}

func TestBuild_DiscardsSingletonBuckets(t *testing.T) {
	ladders, _ := Build([]Input{baseInput("T1", 3, 50, 55)}, DefaultConfig())
	if len(ladders) != 0 {
		t.Fatalf("expected no ladders for a size-1 bucket, got %d", len(ladders))
	}
}

func TestBuild_Deduplication(t *testing.T) {
	// Property #6: lines [3,3,5] with min-depths [500,2000,1000] -> two
	// primaries survive, duplicates_dropped=1, primary at line 3 has the
	// higher depth.
	in1 := baseInput("LOW", 3, 50, 55)
	in1.DepthBid, in1.DepthAsk = 500, 500
	in2 := baseInput("HIGH", 3, 51, 56)
	in2.DepthBid, in2.DepthAsk = 2000, 2000
	in3 := baseInput("OTHER", 5, 40, 45)
	in3.DepthBid, in3.DepthAsk = 1000, 1000

	// The fixtures carry 5c spreads; widen the spread gate so that no point
	// is excluded and dedup sees all three.
	cfg := DefaultConfig()
	cfg.MaxSpreadCents = 5

	ladders, _ := Build([]Input{in1, in2, in3}, cfg)
	if len(ladders) != 1 {
		t.Fatalf("expected 1 ladder, got %d", len(ladders))
	}
	l := ladders[0]
	if l.Diagnostics.DuplicatesDropped != 1 {
		t.Fatalf("duplicates_dropped = %d, want 1", l.Diagnostics.DuplicatesDropped)
	}
	primaries := 0
	for _, p := range l.Points {
		if p.Line == 3 {
			if p.IsPrimary && p.Ticker != "HIGH" {
				t.Fatalf("primary at line 3 should be HIGH (higher depth), got %s", p.Ticker)
			}
		}
		if p.IsPrimary {
			primaries++
		}
	}
	if primaries != 2 {
		t.Fatalf("primaries = %d, want 2", primaries)
	}
}

func TestBuild_MonotonicityDetector(t *testing.T) {
	// Property #5: (bid=50,ask=55) and (bid=52,ask=57) -> no violation.
	// The fixtures carry 4-5c spreads; widen the spread gate so that every
	// point reaches the detector.
	cfg := DefaultConfig()
	cfg.MaxSpreadCents = 5
	noViol := []Input{baseInput("A", 3, 50, 55), baseInput("B", 5, 52, 57)}
	ladders, sigs := Build(noViol, cfg)
	if len(ladders) != 1 {
		t.Fatalf("expected 1 ladder")
	}
	for _, s := range sigs {
		if s.Type == domain.SignalMonoViolation {
			t.Fatalf("unexpected mono violation: %+v", s)
		}
	}

	// (50,52) and (58,62) -> violation, margin ~4.5c.
	viol := []Input{baseInput("A", 3, 50, 52), baseInput("B", 5, 58, 62)}
	_, sigs2 := Build(viol, cfg)
	found := false
	for _, s := range sigs2 {
		if s.Type == domain.SignalMonoViolation {
			found = true
			if s.Magnitude < 3 {
				t.Fatalf("magnitude = %v, want >= 3 (mono threshold)", s.Magnitude)
			}
		}
	}
	if !found {
		t.Fatalf("expected a mono violation candidate")
	}
}

func TestBuild_ExpectedDirection(t *testing.T) {
	spread := expectedDirection(domain.GroupTypeSpread, "BAL")
	if spread != domain.DirectionNonincreasing {
		t.Fatalf("spread direction = %v, want nonincreasing", spread)
	}
	over := expectedDirection(domain.GroupTypeTotal, "Over")
	if over != domain.DirectionNonincreasing {
		t.Fatalf("total/over direction = %v, want nonincreasing", over)
	}
	under := expectedDirection(domain.GroupTypeTotal, "Under")
	if under != domain.DirectionNondecreasing {
		t.Fatalf("total/under direction = %v, want nondecreasing", under)
	}
}

func TestBuild_GatingExcludesButKeepsPoint(t *testing.T) {
	stale := baseInput("STALE", 3, 50, 53)
	stale.TickerAgeMs, stale.BookAgeMs = 9000, 9000
	fine := baseInput("FINE", 5, 40, 43)

	ladders, _ := Build([]Input{stale, fine}, DefaultConfig())
	if len(ladders) != 1 {
		t.Fatalf("expected 1 ladder")
	}
	if len(ladders[0].Points) != 2 {
		t.Fatalf("expected excluded point to remain in ladder, got %d points", len(ladders[0].Points))
	}
	for _, p := range ladders[0].Points {
		if p.Ticker == "STALE" {
			if !p.IsExcluded || p.ExcludeReason != domain.ExcludeStale {
				t.Fatalf("expected STALE point excluded for staleness, got %+v", p)
			}
		}
	}
}
