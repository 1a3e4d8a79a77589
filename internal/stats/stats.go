// Package stats implements the stats engine (C4): a pure, side-effect-free
// computation over one market's book and ring-buffer state.
package stats

import (
	"math"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/book"
	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/ring"
)

// Config carries the knobs the engine needs (subset of spec §6's enumerated
// configuration).
type Config struct {
	TopNLevels     int
	StaleThreshold time.Duration
	JumpThreshold  float64 // cents
}

// Compute derives a Stats snapshot for one market. It reads b and r but does
// not mutate them (spec §4.3: "idempotent and side-effect free on inputs").
func Compute(b *book.Book, r *ring.Ring, cfg Config, now time.Time) domain.Stats {
	top := b.TopOfBook()
	s := domain.Stats{
		Ticker:  b.Ticker,
		BestBid: top.BestBid,
		BestAsk: top.BestAsk,
		BidSize: top.BidSize,
		AskSize: top.AskSize,
	}

	if top.BestBid > 0 && top.BestAsk > 0 {
		s.Mid = float64(top.BestBid+top.BestAsk) / 2
		s.Spread = float64(top.BestAsk - top.BestBid)
		if s.Mid > 0 {
			s.SpreadBps = s.Spread / s.Mid * 10000
		}
		s.ImpliedProb = s.Mid / 100
	}

	if top.BidSize+top.AskSize > 0 {
		s.Microprice = (float64(top.BestAsk)*top.BidSize + float64(top.BestBid)*top.AskSize) / (top.BidSize + top.AskSize)
		s.HasMicroprice = true
		s.ImbalanceTop = (top.BidSize - top.AskSize) / (top.BidSize + top.AskSize)
	}

	topBids := book.TopN(b.Yes, cfg.TopNLevels)
	topAsks := book.TopN(b.No, cfg.TopNLevels)
	s.SumBidTop5 = sumSize(topBids)
	s.SumAskTop5 = sumSize(topAsks)
	if s.SumBidTop5+s.SumAskTop5 > 0 {
		s.BookImbalanceTop5 = (s.SumBidTop5 - s.SumAskTop5) / (s.SumBidTop5 + s.SumAskTop5)
	}
	if s.SumBidTop5 > 0 {
		s.WallBidSize = maxSize(topBids)
		s.WallBidRatio = s.WallBidSize / s.SumBidTop5
	}
	if s.SumAskTop5 > 0 {
		s.WallAskSize = maxSize(topAsks)
		s.WallAskRatio = s.WallAskSize / s.SumAskTop5
	}

	windowStart := now.Add(-60 * time.Second)
	trades := r.TradesSince(windowStart)
	s.TradesPerMin = float64(len(trades))
	var priceCount, count, buyCount, sellCount float64
	for _, tr := range trades {
		priceCount += float64(tr.Price) * tr.Count
		count += tr.Count
		switch tr.Side {
		case domain.TradeSideBuy:
			buyCount += tr.Count
		case domain.TradeSideSell:
			sellCount += tr.Count
		}
	}
	if count > 0 {
		s.VWAP60s = priceCount / count
	}
	if buyCount+sellCount > 0 {
		s.BuyPressure = buyCount / (buyCount + sellCount)
		s.SellPressure = sellCount / (buyCount + sellCount)
	}

	mids := r.MidsSince(windowStart)
	s.VolMid60s = stddevDeltas(mids)

	if b.HasMid1mAgo {
		s.PriceDelta1m = s.Mid - b.Mid1mAgo
		s.HasPriceDelta1m = true
	}
	if b.HasMid5sAgo {
		s.JumpSize = s.Mid - b.Mid5sAgo
		s.JumpFlag = math.Abs(s.JumpSize) >= cfg.JumpThreshold
	}

	hasTicker := !b.LastTickerTs.IsZero()
	hasBook := !b.LastOrderbookTs.IsZero()
	hasTrade := !b.LastTradeTs.IsZero()

	if hasTicker {
		s.LastTickerAgeMs = ageMs(b.LastTickerTs, now)
	}
	if hasBook {
		s.LastOrderbookAgeMs = ageMs(b.LastOrderbookTs, now)
	}
	if hasTrade {
		s.LastTradeAgeMs = ageMs(b.LastTradeTs, now)
	}

	switch {
	case !hasTicker && !hasBook && !hasTrade:
		s.FeedStatus = domain.FeedStatusUnknown
	case anyFresh(s, cfg.StaleThreshold, hasTicker, hasBook, hasTrade):
		s.FeedStatus = domain.FeedStatusFresh
	default:
		s.FeedStatus = domain.FeedStatusStale
	}

	return s
}

func anyFresh(s domain.Stats, staleThreshold time.Duration, hasTicker, hasBook, hasTrade bool) bool {
	limit := staleThreshold.Milliseconds()
	if hasTicker && s.LastTickerAgeMs <= limit {
		return true
	}
	if hasBook && s.LastOrderbookAgeMs <= limit {
		return true
	}
	if hasTrade && s.LastTradeAgeMs <= limit {
		return true
	}
	return false
}

func ageMs(ts, now time.Time) int64 {
	d := now.Sub(ts)
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

func sumSize(levels []domain.PriceLevel) float64 {
	var total float64
	for _, l := range levels {
		total += l.Size
	}
	return total
}

func maxSize(levels []domain.PriceLevel) float64 {
	var max float64
	for _, l := range levels {
		if l.Size > max {
			max = l.Size
		}
	}
	return max
}

func stddevDeltas(mids []domain.MidPoint) float64 {
	if len(mids) < 2 {
		return 0
	}
	deltas := make([]float64, 0, len(mids)-1)
	for i := 1; i < len(mids); i++ {
		deltas = append(deltas, mids[i].Mid-mids[i-1].Mid)
	}
	var sum float64
	for _, d := range deltas {
		sum += d
	}
	mean := sum / float64(len(deltas))
	var variance float64
	for _, d := range deltas {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(deltas))
	return math.Sqrt(variance)
}
