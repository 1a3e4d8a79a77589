// Package session implements the session orchestrator (C9): the single
// logical worker that owns one game's book/ring/ladder/signal state, drives
// the ingest loop and the two periodic ticks, and batches outbound
// snapshots.
//
// Grounded on alanyoungcy-polymarketbot's internal/pipeline/orchestrator.go
// (errgroup-of-named-loops coordinated by one Run(ctx)) and
// internal/strategy/engine.go's RunAll pattern, narrowed so that only
// I/O-bound loops (the feed reader and the worker's own select loop) run as
// separate goroutines — every mutation of book/ring/ladder/signal state
// happens inside the worker loop alone, honoring spec §5's single-owner
// requirement.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/analyticscore/internal/book"
	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/enrich"
	"github.com/alanyoungcy/analyticscore/internal/ladder"
	"github.com/alanyoungcy/analyticscore/internal/metrics"
	"github.com/alanyoungcy/analyticscore/internal/parser"
	"github.com/alanyoungcy/analyticscore/internal/ring"
	"github.com/alanyoungcy/analyticscore/internal/signal"
	"github.com/alanyoungcy/analyticscore/internal/stats"
)

type marketState struct {
	meta   domain.Market
	book   *book.Book
	ring   *ring.Ring
	volume float64

	dirty        bool
	hasEnriched  bool
	lastEnriched domain.EnrichedStats
}

// Orchestrator owns all per-session state for one resolved game. It is not
// safe for concurrent use from outside its own worker loop.
type Orchestrator struct {
	cfg Config

	gameID         string
	eventName      string
	resolvedEvents []string

	markets map[string]*marketState
	order   []string

	lifecycle *signal.Lifecycle
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
	archiver  domain.RawArchiver

	rawBuffer      [][]byte
	tickerCoalesce map[string]domain.TickerMsg
}

// SetMetrics attaches a Prometheus sink for tick timings and counters. It is
// optional; a nil receiver's metrics field leaves every tick uninstrumented.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

// SetArchiver attaches the optional raw-event debug archive (spec §11's
// "no persistence beyond process lifetime" non-goal exempts this
// side-channel log, off by default). A nil archiver disables archiving.
func (o *Orchestrator) SetArchiver(a domain.RawArchiver) {
	o.archiver = a
}

// New constructs an Orchestrator from a resolver result, parsing each
// market's metadata and freezing it for the session's lifetime. Markets
// beyond cfg.MaxMarkets are dropped (spec §4.9 "hard cap ... trims the
// tail").
func New(res domain.ResolveResult, p *parser.Parser, cfg Config, lifecycle *signal.Lifecycle, clk clock.Clock, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:            cfg,
		gameID:         res.GameID,
		eventName:      res.PrimaryEvent,
		resolvedEvents: res.ResolvedEvents,
		markets:        make(map[string]*marketState),
		lifecycle:      lifecycle,
		clock:          clk,
		logger:         logger,
		tickerCoalesce: make(map[string]domain.TickerMsg),
	}

	for _, m := range res.EnrichedMarkets {
		if len(o.order) >= cfg.MaxMarkets {
			logger.Warn("market cap reached, dropping remainder",
				slog.String("ticker", m.Ticker), slog.Int("max_markets", cfg.MaxMarkets))
			continue
		}
		pr := p.Parse(m.Ticker, m.Title, m.GroupType, res.GameID)
		meta := domain.Market{
			Ticker:      m.Ticker,
			Title:       m.Title,
			EventTicker: m.EventTicker,
			GroupType:   m.GroupType,
			Line:        pr.Line,
			Side:        pr.Side,
			ParseSource: pr.ParseSource,
			LadderKey:   pr.LadderKey,
			Predicate:   pr.Predicate,
		}
		o.markets[m.Ticker] = &marketState{
			meta: meta,
			book: book.New(m.Ticker),
			ring: ring.New(cfg.RingMaxSize, cfg.RingWindow),
		}
		o.order = append(o.order, m.Ticker)
	}

	return o
}

// Run wires the feed source and the worker loop together with an errgroup
// (spec §5: ingress read, outbound write, and timer waits are the only
// suspension points; everything else runs on the worker goroutine to
// completion). It returns when ctx is cancelled, the feed source ends, or
// the worker loop hits an unrecoverable error.
func (o *Orchestrator) Run(ctx context.Context, source FeedSource, sink Sink) error {
	sink.Status(domain.StatusResolving, "")
	sink.Meta(o.eventName, o.gameID, o.tickers(), o.resolvedEvents)

	inbox := make(chan Event, 256)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sink.Status(domain.StatusConnecting, "")
		err := source.Run(ctx, inbox)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			sink.Status(domain.StatusError, err.Error())
			sink.Error(err.Error(), errors.Is(err, domain.ErrAuthRequired))
			return fmt.Errorf("feed source: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return o.workerLoop(ctx, inbox, sink)
	})

	return g.Wait()
}

func (o *Orchestrator) workerLoop(ctx context.Context, inbox <-chan Event, sink Sink) error {
	tickerBatch := time.NewTicker(o.cfg.TickerBatchInterval)
	defer tickerBatch.Stop()
	rawBatch := time.NewTicker(o.cfg.RawBatchInterval)
	defer rawBatch.Stop()
	statsTick := time.NewTicker(o.cfg.StatsEmitInterval)
	defer statsTick.Stop()
	signalsTick := time.NewTicker(o.cfg.SignalsEmitInterval)
	defer signalsTick.Stop()

	sink.Status(domain.StatusStreaming, "")

	for {
		select {
		case <-ctx.Done():
			sink.Status(domain.StatusDisconnected, "")
			return nil

		case ev, ok := <-inbox:
			if !ok {
				sink.Status(domain.StatusDisconnected, "upstream closed")
				return domain.ErrUpstreamClosed
			}
			o.ApplyEvent(ev, o.clock.Now())

		case <-tickerBatch.C:
			o.FlushTickerBatch(sink)

		case <-rawBatch.C:
			o.FlushRawBatch(ctx, sink)

		case <-statsTick.C:
			o.RunFastTick(o.clock.Now(), sink)

		case <-signalsTick.C:
			o.RunSlowTick(o.clock.Now(), sink)
		}
	}
}

// ApplyEvent folds one ingested event into book/ring state (C2/C3) and the
// outbound batching buffers. It is pure given now, and is exported so
// tests can drive the worker's state machine without real timers.
func (o *Orchestrator) ApplyEvent(ev Event, now time.Time) {
	if len(ev.Raw) > 0 {
		o.rawBuffer = append(o.rawBuffer, ev.Raw)
		if over := len(o.rawBuffer) - o.cfg.RawBatchMax; over > 0 {
			o.rawBuffer = o.rawBuffer[over:]
		}
	}

	switch {
	case ev.Control != nil:
		o.applyControl(*ev.Control)
	case ev.Ticker != nil:
		o.applyTicker(*ev.Ticker, now)
	case ev.Snapshot != nil:
		o.applySnapshot(*ev.Snapshot, now)
	case ev.Delta != nil:
		o.applyDelta(*ev.Delta, now)
	case ev.Trade != nil:
		o.applyTrade(*ev.Trade, now)
	}
}

func (o *Orchestrator) applyControl(c domain.ControlMsg) {
	switch c.Type {
	case "subscribed":
		o.logger.Debug("upstream subscribed")
	case "error":
		o.logger.Warn("upstream control error", slog.String("message", c.Message))
	}
}

func (o *Orchestrator) applyTicker(t domain.TickerMsg, now time.Time) {
	ms, ok := o.markets[t.MarketTicker]
	if !ok {
		return
	}
	ts := t.Ts
	if ts.IsZero() {
		ts = now
	}
	ms.book.ApplyTicker(t.YesBid, t.YesAsk, ts)
	if t.Volume != nil {
		ms.volume = *t.Volume
	}
	ms.dirty = true
	o.tickerCoalesce[t.MarketTicker] = t
	o.refreshMid(ms, now)
}

func (o *Orchestrator) applySnapshot(m domain.OrderbookSnapshotMsg, now time.Time) {
	ms, ok := o.markets[m.MarketTicker]
	if !ok {
		return
	}
	ts := m.Ts
	if ts.IsZero() {
		ts = now
	}
	ms.book.ApplySnapshot(m.Yes, m.No, ts)
	ms.dirty = true
	o.refreshMid(ms, now)
}

func (o *Orchestrator) applyDelta(m domain.OrderbookDeltaMsg, now time.Time) {
	ms, ok := o.markets[m.MarketTicker]
	if !ok {
		return
	}
	ts := m.Ts
	if ts.IsZero() {
		ts = now
	}
	ms.book.ApplyDelta(m.Side, m.Price, m.Delta, ts)
	ms.dirty = true
	o.refreshMid(ms, now)
}

func (o *Orchestrator) applyTrade(tr domain.TradeMsg, now time.Time) {
	ms, ok := o.markets[tr.MarketTicker]
	if !ok {
		return
	}
	ts := tr.Ts
	if ts.IsZero() {
		ts = now
	}

	var price int
	switch {
	case tr.YesPrice != nil:
		price = *tr.YesPrice
	case tr.NoPrice != nil:
		price = 100 - *tr.NoPrice
	}
	var count float64
	if tr.Count != nil {
		count = *tr.Count
	}

	side := ms.book.ClassifyTradeSide(price, tr.TakerSide)
	ms.ring.AddTrade(domain.Trade{Ticker: tr.MarketTicker, Ts: ts, Price: price, Count: count, Side: side}, now)
	ms.book.LastTradeTs = ts
	ms.dirty = true
}

func (o *Orchestrator) refreshMid(ms *marketState, now time.Time) {
	top := ms.book.TopOfBook()
	if top.BestBid <= 0 || top.BestAsk <= 0 {
		return
	}
	mid := float64(top.BestBid+top.BestAsk) / 2
	ms.book.RefreshMidHistory(mid, now)
	ms.ring.AddMid(domain.MidPoint{Ts: now, Mid: mid}, now)
}

// FlushTickerBatch emits the coalesced ticker-update map if non-empty and
// resets it (spec §4.9: "ticker updates ... coalesced map flushed every
// 300ms").
func (o *Orchestrator) FlushTickerBatch(sink Sink) {
	if len(o.tickerCoalesce) == 0 {
		return
	}
	out := make(map[string]domain.TickerMsg, len(o.tickerCoalesce))
	for k, v := range o.tickerCoalesce {
		out[k] = v
	}
	sink.Ticker(out)
	o.tickerCoalesce = make(map[string]domain.TickerMsg)
}

// FlushRawBatch emits the rolling raw-event buffer if non-empty and clears
// it (spec §4.9: "raw inbound events into a rolling buffer (<=50 entries,
// pushed every 500ms)"). If an archiver is attached, the same batch is
// best-effort appended to the debug archive stream; archive failures are
// logged but never fail the tick.
func (o *Orchestrator) FlushRawBatch(ctx context.Context, sink Sink) {
	if len(o.rawBuffer) == 0 {
		return
	}
	out := make([][]byte, len(o.rawBuffer))
	copy(out, o.rawBuffer)
	sink.Raw(out)

	if o.archiver != nil {
		archived := 0
		for _, msg := range out {
			if err := o.archiver.Append(ctx, o.gameID, msg); err != nil {
				o.logger.Warn("raw archive append failed", slog.String("error", err.Error()))
				break
			}
			archived++
		}
		if o.metrics != nil {
			o.metrics.RecordRawArchived(archived)
		}
	}

	o.rawBuffer = o.rawBuffer[:0]
}

// RunFastTick recomputes C4/C5 for every dirty (or never-computed) market
// and emits a stats snapshot keyed by ticker, per spec §4.9's fast tick.
func (o *Orchestrator) RunFastTick(now time.Time, sink Sink) {
	start := time.Now()
	dirtyCount := 0

	out := make(map[string]domain.EnrichedStats, len(o.markets))
	for ticker, ms := range o.markets {
		if ms.dirty {
			dirtyCount++
		}
		if ms.dirty || !ms.hasEnriched {
			o.recompute(ms, now)
		}
		out[ticker] = ms.lastEnriched
	}
	sink.Stats(now, out)

	if o.metrics != nil {
		o.metrics.ObserveFastTick(float64(time.Since(start).Microseconds())/1000, dirtyCount)
	}
}

// RunSlowTick recomputes C4/C5 for dirty markets, builds ladders (C6),
// scans for cross-ladder arbitrage (C7), pushes every candidate through the
// signal lifecycle (C8), runs its cleanup pass, and emits a signals
// snapshot if anything is active or any ladder was built, per spec §4.9's
// slow tick.
func (o *Orchestrator) RunSlowTick(now time.Time, sink Sink) {
	start := time.Now()
	inputs := make([]ladder.Input, 0, len(o.markets))

	for ticker, ms := range o.markets {
		if ms.dirty || !ms.hasEnriched {
			o.recompute(ms, now)
		}
		if !ms.meta.HasLadderKey() {
			continue
		}
		e := ms.lastEnriched

		var line float64
		hasLine := ms.meta.Line != nil
		if hasLine {
			line = *ms.meta.Line
		}

		inputs = append(inputs, ladder.Input{
			Ticker:      ticker,
			GroupType:   ms.meta.GroupType,
			LadderKey:   ms.meta.LadderKey,
			GameID:      o.gameID,
			Side:        ms.meta.Side,
			Line:        line,
			HasLine:     hasLine,
			BidProb:     float64(e.BestBid) / 100,
			AskProb:     float64(e.BestAsk) / 100,
			MidProb:     e.ImpliedProb,
			DepthBid:    e.SumBidTop5,
			DepthAsk:    e.SumAskTop5,
			Volume:      ms.volume,
			SpreadCents: e.Spread,
			TickerAgeMs: e.LastTickerAgeMs,
			BookAgeMs:   e.LastOrderbookAgeMs,
			ParseSource: ms.meta.ParseSource,
		})
	}

	ladders, candidates := ladder.Build(inputs, o.cfg.Ladder)
	candidates = append(candidates, ladder.DetectArb(ladders, o.cfg.Ladder)...)

	emitted := o.lifecycle.Process(candidates)
	o.lifecycle.Cleanup()
	active := o.lifecycle.ActiveSignals()

	violationsByLadder := make(map[string][]string)
	for _, sig := range active {
		if sig.LadderKey == "" {
			continue
		}
		violationsByLadder[sig.LadderKey] = append(violationsByLadder[sig.LadderKey], sig.ID)
	}
	for i := range ladders {
		ladders[i].Violations = violationsByLadder[ladders[i].LadderKey]
		ladders[i].LastUpdated = now
	}

	if o.metrics != nil {
		for _, sig := range emitted {
			o.metrics.RecordSignal(string(sig.Type))
		}
		for _, l := range ladders {
			for i := 0; i < l.MonoViolationCount; i++ {
				o.metrics.RecordLadderViolation(string(l.LadderType))
			}
		}
		o.metrics.ObserveSlowTick(float64(time.Since(start).Microseconds()) / 1000)
	}

	if len(active) == 0 && len(ladders) == 0 {
		return
	}
	sink.Signals(now, active, ladders)
}

func (o *Orchestrator) recompute(ms *marketState, now time.Time) {
	s := stats.Compute(ms.book, ms.ring, o.cfg.Stats, now)
	ms.lastEnriched = enrich.Enrich(s, ms.meta.GroupType, ms.meta.Line, ms.meta.Side, ms.ring, now, o.cfg.Enrich)
	ms.hasEnriched = true
	ms.dirty = false
}

func (o *Orchestrator) tickers() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}
