// Package ring implements per-market bounded sliding windows of mid prices
// and trades (C3), pruned by age and count.
package ring

import (
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// Ring holds one market's trade and mid-price history, pruned to
// max(maxSize entries, window age) per spec §3.
type Ring struct {
	trades []domain.Trade
	mids   []domain.MidPoint

	maxSize int
	window  time.Duration
}

// New returns a Ring bounded by maxSize entries and window age.
func New(maxSize int, window time.Duration) *Ring {
	return &Ring{maxSize: maxSize, window: window}
}

// AddTrade appends a trade and prunes.
func (r *Ring) AddTrade(t domain.Trade, now time.Time) {
	r.trades = append(r.trades, t)
	r.pruneTrades(now)
}

// AddMid appends a mid-price sample and prunes.
func (r *Ring) AddMid(m domain.MidPoint, now time.Time) {
	r.mids = append(r.mids, m)
	r.pruneMids(now)
}

func (r *Ring) pruneTrades(now time.Time) {
	cutoff := now.Add(-r.window)
	start := 0
	for start < len(r.trades) && r.trades[start].Ts.Before(cutoff) {
		start++
	}
	r.trades = r.trades[start:]
	if over := len(r.trades) - r.maxSize; over > 0 {
		r.trades = r.trades[over:]
	}
}

func (r *Ring) pruneMids(now time.Time) {
	cutoff := now.Add(-r.window)
	start := 0
	for start < len(r.mids) && r.mids[start].Ts.Before(cutoff) {
		start++
	}
	r.mids = r.mids[start:]
	if over := len(r.mids) - r.maxSize; over > 0 {
		r.mids = r.mids[over:]
	}
}

// Trades returns the currently retained trades, oldest first.
func (r *Ring) Trades() []domain.Trade {
	return r.trades
}

// Mids returns the currently retained mid samples, oldest first.
func (r *Ring) Mids() []domain.MidPoint {
	return r.mids
}

// TradesSince returns trades with Ts >= since.
func (r *Ring) TradesSince(since time.Time) []domain.Trade {
	out := make([]domain.Trade, 0, len(r.trades))
	for _, t := range r.trades {
		if !t.Ts.Before(since) {
			out = append(out, t)
		}
	}
	return out
}

// MidAtLeastAgo returns the most recent mid sample whose age is >= window
// (i.e. Ts <= now-window), scanning from newest to oldest. ok is false when
// no sample is that old (insufficient history).
func (r *Ring) MidAtLeastAgo(now time.Time, window time.Duration) (mid float64, ok bool) {
	cutoff := now.Add(-window)
	for i := len(r.mids) - 1; i >= 0; i-- {
		if !r.mids[i].Ts.After(cutoff) {
			return r.mids[i].Mid, true
		}
	}
	return 0, false
}

// MidsSince returns mid samples with Ts >= since.
func (r *Ring) MidsSince(since time.Time) []domain.MidPoint {
	out := make([]domain.MidPoint, 0, len(r.mids))
	for _, m := range r.mids {
		if !m.Ts.Before(since) {
			out = append(out, m)
		}
	}
	return out
}
