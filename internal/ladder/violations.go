package ladder

import (
	"math"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// detectMonoViolations checks each adjacent pair of analysis points (by
// line, ascending) for a bounds-aware monotonicity violation (spec §4.6).
func detectMonoViolations(points []domain.LadderPoint, analysisIdx []int, dir domain.Direction, ladderKey string, cfg Config, l *domain.Ladder) []domain.Signal {
	var signals []domain.Signal

	for k := 0; k+1 < len(analysisIdx); k++ {
		i, j := analysisIdx[k], analysisIdx[k+1]
		pi, pj := &points[i], &points[j]

		avgSpread := (pi.SpreadCents + pj.SpreadCents) / 2
		eps := math.Max(cfg.MonoEpsilon, 0.5*avgSpread/100)

		var marginCents float64
		if dir == domain.DirectionNonincreasing {
			marginCents = (pj.BidProb - pi.AskProb - eps) * 100
		} else {
			marginCents = (pi.BidProb - pj.AskProb - eps) * 100
		}

		if marginCents >= cfg.MonoMinCents {
			pi.IsViolation = true
			pj.IsViolation = true
			l.MonoViolationCount++
			if marginCents > l.MaxViolationCents {
				l.MaxViolationCents = marginCents
			}

			minDepth := math.Min(math.Min(pi.DepthBid, pi.DepthAsk), math.Min(pj.DepthBid, pj.DepthAsk))
			signals = append(signals, domain.Signal{
				MarketTicker:  pi.Ticker,
				Type:          domain.SignalMonoViolation,
				Confidence:    monoConfidence(minDepth),
				Magnitude:     marginCents,
				RelatedTickers: []string{pi.Ticker, pj.Ticker},
				LadderKey:     ladderKey,
				SeverityScore: severityScore(marginCents, minDepth, avgSpread),
			})
		}
	}

	return signals
}

func monoConfidence(minDepth float64) domain.Confidence {
	switch {
	case minDepth < 20:
		return domain.ConfidenceLow
	case minDepth < 100:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceHigh
	}
}

func severityScore(magnitudeCents, minDepth, avgSpreadCents float64) float64 {
	return magnitudeCents*math.Log10(1+minDepth/1000) - 0.5*avgSpreadCents
}

// detectOutliers fits PAV over the analysis points' mid probabilities (if
// there are at least 3) and flags points whose residual exceeds the
// outlier threshold (spec §4.6).
func detectOutliers(points []domain.LadderPoint, analysisIdx []int, ladderKey string, l *domain.Ladder) []domain.Signal {
	if len(analysisIdx) < 3 {
		return nil
	}

	mids := make([]float64, len(analysisIdx))
	for k, idx := range analysisIdx {
		mids[k] = points[idx].MidProb
	}
	fitted := PAV(mids, l.ExpectedDirection)

	var signals []domain.Signal
	for k, idx := range analysisIdx {
		p := &points[idx]
		p.FittedProb = fitted[k]
		p.HasFitted = true

		residual := (p.MidProb - p.FittedProb) * 100
		p.ResidualCents = residual
		p.HasResidual = true

		absResidual := math.Abs(residual)
		if absResidual >= 5 {
			p.IsOutlier = true
			l.OutlierCount++

			signals = append(signals, domain.Signal{
				MarketTicker:   p.Ticker,
				Type:           domain.SignalOutlierLine,
				Confidence:     outlierConfidence(absResidual),
				Magnitude:      absResidual,
				RelatedTickers: []string{p.Ticker},
				LadderKey:      ladderKey,
			})
		}
	}
	return signals
}

func outlierConfidence(absResidual float64) domain.Confidence {
	switch {
	case absResidual >= 8:
		return domain.ConfidenceHigh
	case absResidual >= 6:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
