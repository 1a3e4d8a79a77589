// Package ladder implements the ladder builder (C6) and the cross-ladder
// arbitrage detector (C7): grouping enriched markets into monotone families,
// gating, deduplicating, fitting an isotonic curve, and flagging violations,
// outliers, and cross-ladder arbitrage.
package ladder

import (
	"math"
	"sort"
	"strings"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// Config carries the C6/C7 threshold knobs (spec §6).
type Config struct {
	MinLiquidityDepth  float64
	MinLiquidityVolume float64
	MaxSpreadCents     float64
	MaxStaleMs         int64
	OutlierMinCents    float64
	MonoMinCents       float64
	MonoEpsilon        float64
	ArbBuffer          float64
}

// DefaultConfig returns the constants spec §6 enumerates.
func DefaultConfig() Config {
	return Config{
		MinLiquidityDepth:  2000,
		MinLiquidityVolume: 5000,
		MaxSpreadCents:     3,
		MaxStaleMs:         5000,
		OutlierMinCents:    5,
		MonoMinCents:       3,
		MonoEpsilon:        0.015,
		ArbBuffer:          0.01,
	}
}

// Input is one enriched market as seen by the ladder builder.
type Input struct {
	Ticker      string
	GroupType   domain.GroupType
	LadderKey   string
	GameID      string
	Side        string
	Line        float64
	HasLine     bool
	BidProb     float64
	AskProb     float64
	MidProb     float64
	DepthBid    float64
	DepthAsk    float64
	Volume      float64
	SpreadCents float64
	TickerAgeMs int64
	BookAgeMs   int64
	ParseSource domain.ParseSource
}

// Build groups inputs into ladders keyed by LadderKey, applies gating,
// deduplication, PAV, and violation/outlier detection. It returns the built
// ladders (Points sorted by line ascending) and the raw candidate signals
// generated this pass. Violations and LastUpdated are left zero-valued;
// the caller (internal/session's slow tick, after running candidates
// through the signal lifecycle) back-fills each ladder's Violations with
// the ids of its currently active signals and stamps LastUpdated.
func Build(inputs []Input, cfg Config) ([]domain.Ladder, []domain.Signal) {
	buckets := make(map[string][]Input)
	for _, in := range inputs {
		if in.GroupType != domain.GroupTypeSpread && in.GroupType != domain.GroupTypeTotal {
			continue
		}
		if in.LadderKey == "" || !in.HasLine {
			continue
		}
		buckets[in.LadderKey] = append(buckets[in.LadderKey], in)
	}

	var ladders []domain.Ladder
	var signals []domain.Signal

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		bucket := buckets[key]
		if len(bucket) < 2 {
			continue
		}
		l, sigs := buildOne(key, bucket, cfg)
		ladders = append(ladders, l)
		signals = append(signals, sigs...)
	}

	return ladders, signals
}

func buildOne(key string, bucket []Input, cfg Config) (domain.Ladder, []domain.Signal) {
	first := bucket[0]
	l := domain.Ladder{
		LadderKey:  key,
		GameID:     first.GameID,
		LadderType: first.GroupType,
		Side:       first.Side,
	}
	l.ExpectedDirection = expectedDirection(first.GroupType, first.Side)

	l.Diagnostics.Total = len(bucket)
	points := make([]domain.LadderPoint, len(bucket))
	for i, in := range bucket {
		p := domain.LadderPoint{
			Line:        in.Line,
			Side:        in.Side,
			Ticker:      in.Ticker,
			BidProb:     in.BidProb,
			AskProb:     in.AskProb,
			MidProb:     in.MidProb,
			DepthBid:    in.DepthBid,
			DepthAsk:    in.DepthAsk,
			Volume:      in.Volume,
			SpreadCents: in.SpreadCents,
			IsPrimary:   true,
			ParseSource: in.ParseSource,
		}
		if in.ParseSource != domain.ParseSourceUnknown {
			l.Diagnostics.Parsed++
		} else {
			l.Diagnostics.Unparsed++
		}
		points[i] = p
	}

	gate(points, bucket, cfg, &l.Diagnostics)
	dedup(points, &l.Diagnostics)

	sort.Slice(points, func(i, j int) bool { return points[i].Line < points[j].Line })

	analysisIdx := make([]int, 0, len(points))
	for i, p := range points {
		if !p.IsExcluded && p.IsPrimary {
			analysisIdx = append(analysisIdx, i)
		}
	}

	var signals []domain.Signal
	signals = append(signals, detectMonoViolations(points, analysisIdx, l.ExpectedDirection, key, cfg, &l)...)
	signals = append(signals, detectOutliers(points, analysisIdx, key, &l)...)

	l.Points = points
	return l, signals
}

func expectedDirection(groupType domain.GroupType, side string) domain.Direction {
	if groupType == domain.GroupTypeTotal && strings.EqualFold(side, "Under") {
		return domain.DirectionNondecreasing
	}
	return domain.DirectionNonincreasing
}

func gate(points []domain.LadderPoint, bucket []Input, cfg Config, diag *domain.Diagnostics) {
	for i := range points {
		p := &points[i]
		minDepth := math.Min(p.DepthBid, p.DepthAsk)
		maxAge := bucket[i].TickerAgeMs
		if bucket[i].BookAgeMs > maxAge {
			maxAge = bucket[i].BookAgeMs
		}

		switch {
		case minDepth < cfg.MinLiquidityDepth && p.Volume < cfg.MinLiquidityVolume:
			p.IsExcluded = true
			p.ExcludeReason = domain.ExcludeLowLiquidity
			diag.ExcludedLowLiq++
		case p.SpreadCents > cfg.MaxSpreadCents:
			p.IsExcluded = true
			p.ExcludeReason = domain.ExcludeWideSpread
			diag.ExcludedWideSpread++
		case maxAge > cfg.MaxStaleMs:
			p.IsExcluded = true
			p.ExcludeReason = domain.ExcludeStale
			diag.ExcludedStale++
		}
	}
}

func dedup(points []domain.LadderPoint, diag *domain.Diagnostics) {
	groups := make(map[float64][]int)
	for i, p := range points {
		if p.IsExcluded {
			continue
		}
		groups[p.Line] = append(groups[p.Line], i)
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		best := idxs[0]
		bestDepth := math.Min(points[best].DepthBid, points[best].DepthAsk)
		for _, i := range idxs[1:] {
			d := math.Min(points[i].DepthBid, points[i].DepthAsk)
			if d > bestDepth {
				best, bestDepth = i, d
			}
		}
		for _, i := range idxs {
			if i != best {
				points[i].IsPrimary = false
				diag.DuplicatesDropped++
			}
		}
	}
}
