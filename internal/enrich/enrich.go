// Package enrich implements the enricher (C5): joins a Stats snapshot with
// parsed market metadata and adds liquidity/staleness/jump/exitability
// scores plus per-market alert flags.
package enrich

import (
	"math"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/ring"
)

// Config carries the enricher's threshold knobs.
type Config struct {
	StaleQuoteThreshold float64 // staleness_score above which STALE_QUOTE fires
	LowLiquidityThresh  float64 // liquidity_score below which LOW_LIQUIDITY fires
	WideSpreadCents     float64
}

// DefaultConfig returns the enricher thresholds spec §4.4 hardcodes.
func DefaultConfig() Config {
	return Config{StaleQuoteThreshold: 0.7, LowLiquidityThresh: 0.2, WideSpreadCents: 8}
}

// Enrich computes an EnrichedStats from a Stats snapshot, parsed metadata,
// and the market's mid-price ring for the 30s jump-score lookup.
func Enrich(s domain.Stats, groupType domain.GroupType, line *float64, side string, r *ring.Ring, now time.Time, cfg Config) domain.EnrichedStats {
	e := domain.EnrichedStats{
		Stats:     s,
		GroupType: groupType,
		Line:      line,
		Side:      side,
	}

	e.LiquidityScore = liquidityScore(s.BidSize, s.AskSize, s.Spread)
	e.StalenessScore = stalenessScore(s)
	e.JumpScore5s = math.Abs(s.JumpSize)
	e.JumpScore30s = jumpScore30s(s.Mid, r, now)
	e.ExitabilityCents = exitabilityCents(s.Spread, s.BidSize, s.AskSize)

	if e.StalenessScore > cfg.StaleQuoteThreshold {
		e.Flags = append(e.Flags, domain.AlertStaleQuote)
	}
	if s.JumpFlag {
		e.Flags = append(e.Flags, domain.AlertJump)
	}
	if e.LiquidityScore < cfg.LowLiquidityThresh {
		e.Flags = append(e.Flags, domain.AlertLowLiq)
	}
	if s.Spread >= cfg.WideSpreadCents {
		e.Flags = append(e.Flags, domain.AlertWideSpread)
	}

	return e
}

func liquidityScore(bidSize, askSize, spread float64) float64 {
	minSize := math.Min(bidSize, askSize)
	depthTerm := math.Min(minSize/500, 1)
	spreadTerm := 1 - math.Min(spread/20, 0.5)
	return depthTerm * spreadTerm
}

func stalenessScore(s domain.Stats) float64 {
	if s.FeedStatus == domain.FeedStatusUnknown {
		return 1
	}
	maxAge := s.LastTickerAgeMs
	if s.LastOrderbookAgeMs > maxAge {
		maxAge = s.LastOrderbookAgeMs
	}
	return math.Min(float64(maxAge)/10000, 1)
}

func jumpScore30s(mid float64, r *ring.Ring, now time.Time) float64 {
	past, ok := r.MidAtLeastAgo(now, 30*time.Second)
	if !ok {
		return 0
	}
	return math.Abs(mid - past)
}

// exitabilityCents implements spec §4.4's exitability formula. Per the
// spec's design note (§9), the result is clamped upward to 50 but NOT
// clamped downward — this asymmetry is intentional, not a bug.
func exitabilityCents(spread, bidSize, askSize float64) float64 {
	avgTopSize := (bidSize + askSize) / 2
	if avgTopSize == 0 {
		return 99
	}
	val := spread/2 + 100/math.Max(avgTopSize, 1)
	if val > 50 {
		val = 50
	}
	return val
}
