package session

import (
	"context"
	"testing"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/parser"
)

type fakeSink struct {
	statuses []domain.SessionStatus
	statsN   int
	lastStats map[string]domain.EnrichedStats
	signalsN int
	lastSignals []domain.Signal
	lastLadders []domain.Ladder
	tickerBatches int
	rawBatches    int
}

func (f *fakeSink) Status(s domain.SessionStatus, _ string) { f.statuses = append(f.statuses, s) }
func (f *fakeSink) Meta(_, _ string, _, _ []string)         {}
func (f *fakeSink) Ticker(_ map[string]domain.TickerMsg)    { f.tickerBatches++ }
func (f *fakeSink) Raw(_ [][]byte)                          { f.rawBatches++ }
func (f *fakeSink) Stats(_ time.Time, markets map[string]domain.EnrichedStats) {
	f.statsN++
	f.lastStats = markets
}
func (f *fakeSink) Signals(_ time.Time, signals []domain.Signal, ladders []domain.Ladder) {
	f.signalsN++
	f.lastSignals = signals
	f.lastLadders = ladders
}
func (f *fakeSink) Error(_ string, _ bool) {}

func newTestOrchestrator(markets []domain.ResolvedMarket) (*Orchestrator, *clock.Manual) {
	mc := clock.NewManual(time.Unix(1700000000, 0))
	p := parser.New(nil, nil)
	res := domain.ResolveResult{GameID: "g1", PrimaryEvent: "evt", EnrichedMarkets: markets}
	cfg := DefaultConfig()
	lc := newLifecycle(cfg, mc)
	o := New(res, p, cfg, lc, mc, testLogger())
	return o, mc
}

func intp(v int) *int { return &v }

func TestApplyEvent_TickerUpdatesBookAndMarksDirty(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{
		{Ticker: "T1", GroupType: domain.GroupTypeSpread},
	})
	o.ApplyEvent(Event{Ticker: &domain.TickerMsg{MarketTicker: "T1", YesBid: intp(50), YesAsk: intp(55)}}, mc.Now())

	ms := o.markets["T1"]
	if !ms.dirty {
		t.Fatalf("expected market to be marked dirty")
	}
	top := ms.book.TopOfBook()
	if top.BestBid != 50 || top.BestAsk != 55 {
		t.Fatalf("top = %+v, want bid=50 ask=55", top)
	}
	if len(o.tickerCoalesce) != 1 {
		t.Fatalf("expected ticker coalesced for next flush")
	}
}

func TestApplyEvent_UnknownTickerIgnored(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{{Ticker: "T1", GroupType: domain.GroupTypeSpread}})
	o.ApplyEvent(Event{Ticker: &domain.TickerMsg{MarketTicker: "NOPE", YesBid: intp(50), YesAsk: intp(55)}}, mc.Now())
	if len(o.tickerCoalesce) != 0 {
		t.Fatalf("expected unknown ticker to be dropped silently")
	}
}

func TestFlushBatches_EmitOnlyWhenNonEmpty(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{{Ticker: "T1", GroupType: domain.GroupTypeSpread}})
	sink := &fakeSink{}

	o.FlushTickerBatch(sink)
	o.FlushRawBatch(context.Background(), sink)
	if sink.tickerBatches != 0 || sink.rawBatches != 0 {
		t.Fatalf("expected no emission on empty buffers")
	}

	o.ApplyEvent(Event{Ticker: &domain.TickerMsg{MarketTicker: "T1", YesBid: intp(50), YesAsk: intp(55)}, Raw: []byte("x")}, mc.Now())
	o.FlushTickerBatch(sink)
	o.FlushRawBatch(context.Background(), sink)
	if sink.tickerBatches != 1 || sink.rawBatches != 1 {
		t.Fatalf("expected one emission each after a buffered event, got ticker=%d raw=%d", sink.tickerBatches, sink.rawBatches)
	}

	o.FlushTickerBatch(sink)
	o.FlushRawBatch(context.Background(), sink)
	if sink.tickerBatches != 1 || sink.rawBatches != 1 {
		t.Fatalf("expected no re-emission once buffers drained")
	}
}

func TestRawBuffer_CapsAt50(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{{Ticker: "T1", GroupType: domain.GroupTypeSpread}})
	for i := 0; i < 60; i++ {
		o.ApplyEvent(Event{Raw: []byte("x")}, mc.Now())
	}
	if len(o.rawBuffer) != o.cfg.RawBatchMax {
		t.Fatalf("raw buffer = %d, want capped at %d", len(o.rawBuffer), o.cfg.RawBatchMax)
	}
}

func TestRunFastTick_EmitsStatsForAllMarkets(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{
		{Ticker: "T1", GroupType: domain.GroupTypeSpread},
		{Ticker: "T2", GroupType: domain.GroupTypeSpread},
	})
	sink := &fakeSink{}
	o.ApplyEvent(Event{Ticker: &domain.TickerMsg{MarketTicker: "T1", YesBid: intp(50), YesAsk: intp(55)}}, mc.Now())

	o.RunFastTick(mc.Now(), sink)
	if sink.statsN != 1 {
		t.Fatalf("expected 1 stats emission")
	}
	if len(sink.lastStats) != 2 {
		t.Fatalf("expected stats for all known markets, got %d", len(sink.lastStats))
	}
	if sink.lastStats["T1"].BestBid != 50 {
		t.Fatalf("T1 best bid = %d, want 50", sink.lastStats["T1"].BestBid)
	}
}

func TestRunSlowTick_NoEmissionWhenNothingToReport(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{{Ticker: "T1", GroupType: domain.GroupTypeWinner}})
	sink := &fakeSink{}
	o.RunSlowTick(mc.Now(), sink)
	if sink.signalsN != 0 {
		t.Fatalf("expected no signals emission when no ladder keys exist")
	}
}

func TestRunSlowTick_BuildsLaddersForSpreadMarkets(t *testing.T) {
	o, mc := newTestOrchestrator([]domain.ResolvedMarket{
		{Ticker: "KXNFLSPREAD-G-BAL3", Title: "BAL wins by 3", GroupType: domain.GroupTypeSpread},
		{Ticker: "KXNFLSPREAD-G-BAL5", Title: "BAL wins by 5", GroupType: domain.GroupTypeSpread},
	})
	sink := &fakeSink{}

	for _, tk := range []string{"KXNFLSPREAD-G-BAL3", "KXNFLSPREAD-G-BAL5"} {
		o.ApplyEvent(Event{Snapshot: &domain.OrderbookSnapshotMsg{
			MarketTicker: tk,
			Yes:          []domain.PriceLevel{{Price: 50, Size: 6000}},
			No:           []domain.PriceLevel{{Price: 45, Size: 6000}},
		}}, mc.Now())
	}

	o.RunSlowTick(mc.Now(), sink)
	if sink.signalsN != 1 {
		t.Fatalf("expected one signals emission since ladders were built")
	}
	if len(sink.lastLadders) != 1 {
		t.Fatalf("expected 1 ladder, got %d", len(sink.lastLadders))
	}
}

func TestNew_CapsAtMaxMarkets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMarkets = 2
	mc := clock.NewManual(time.Unix(0, 0))
	p := parser.New(nil, nil)
	res := domain.ResolveResult{
		GameID: "g1",
		EnrichedMarkets: []domain.ResolvedMarket{
			{Ticker: "T1"}, {Ticker: "T2"}, {Ticker: "T3"},
		},
	}
	lc := newLifecycle(cfg, mc)
	o := New(res, p, cfg, lc, mc, testLogger())
	if len(o.markets) != 2 {
		t.Fatalf("expected 2 markets after capping, got %d", len(o.markets))
	}
}
