package ladder

import (
	"math"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// DetectArb scans every unordered pair of ladders sharing a LadderType with
// opposing sides (totals: Over vs Under; spreads: any two different teams)
// for a cross-ladder SUM_GT_1 opportunity (spec §4.7). The bids-sum-> 1
// direction is the spec's explicit resolution of an otherwise-ambivalent
// source (see DESIGN.md).
func DetectArb(ladders []domain.Ladder, cfg Config) []domain.Signal {
	var signals []domain.Signal

	for i := 0; i < len(ladders); i++ {
		for j := i + 1; j < len(ladders); j++ {
			a, b := ladders[i], ladders[j]
			if a.GameID != b.GameID || a.LadderType != b.LadderType {
				continue
			}
			if a.Side == b.Side {
				continue
			}
			signals = append(signals, scanPair(a, b, cfg)...)
		}
	}

	return signals
}

func scanPair(a, b domain.Ladder, cfg Config) []domain.Signal {
	var signals []domain.Signal

	for _, p1 := range analysisPoints(a) {
		p2, ok := findMirror(p1, analysisPoints(b), a.LadderType)
		if !ok {
			continue
		}
		sumBids := p1.BidProb + p2.BidProb
		if sumBids > 1+cfg.ArbBuffer {
			magnitude := (sumBids - 1) * 100
			signals = append(signals, domain.Signal{
				MarketTicker:   p1.Ticker,
				Type:           domain.SignalSumGT1,
				Confidence:     domain.ConfidenceHigh,
				Magnitude:      magnitude,
				RelatedTickers: []string{p1.Ticker, p2.Ticker},
				LadderKey:      a.LadderKey,
				SeverityScore:  magnitude * 10,
			})
		}
	}

	return signals
}

func analysisPoints(l domain.Ladder) []domain.LadderPoint {
	out := make([]domain.LadderPoint, 0, len(l.Points))
	for _, p := range l.Points {
		if !p.IsExcluded && p.IsPrimary {
			out = append(out, p)
		}
	}
	return out
}

// findMirror locates the point in candidates whose line mirrors p1's: equal
// line for totals, negated line (tolerance 0.01) for spreads.
func findMirror(p1 domain.LadderPoint, candidates []domain.LadderPoint, ladderType domain.GroupType) (domain.LadderPoint, bool) {
	const tolerance = 0.01
	for _, p2 := range candidates {
		var target float64
		if ladderType == domain.GroupTypeTotal {
			target = p1.Line
		} else {
			target = -p1.Line
		}
		if math.Abs(p2.Line-target) <= tolerance {
			return p2, true
		}
	}
	return domain.LadderPoint{}, false
}
