// Package book implements per-market order-book state (C2): applying
// ticker/snapshot/delta/trade events and deriving top-of-book.
package book

import (
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// Book is the live order-book state for one market. Sizes are strictly
// positive; a level with size <= 0 is absent from the map (spec §3 "Order
// book", §8 property 1).
type Book struct {
	Ticker string

	Yes map[int]float64
	No  map[int]float64

	// Ticker-supplied BBO hints, preferred over book-derived BBO when set
	// (spec §4.2: "if ticker supplies these, prefer ticker-supplied").
	tickerBid, tickerAsk *int

	LastTickerTs    time.Time
	LastOrderbookTs time.Time
	LastTradeTs     time.Time

	LastMid     float64
	HasMid      bool
	Mid5sAgo    float64
	HasMid5sAgo bool
	mid5sAgoTs  time.Time
	Mid1mAgo    float64
	HasMid1mAgo bool
	mid1mAgoTs  time.Time
}

// New returns an empty Book for ticker.
func New(ticker string) *Book {
	return &Book{
		Ticker: ticker,
		Yes:    make(map[int]float64),
		No:     make(map[int]float64),
	}
}

// ApplyTicker stores ticker-supplied BBO hints and stamps LastTickerTs.
func (b *Book) ApplyTicker(bid, ask *int, ts time.Time) {
	b.tickerBid = bid
	b.tickerAsk = ask
	b.LastTickerTs = ts
}

// ApplySnapshot replaces both side maps. Non-positive sizes are dropped.
func (b *Book) ApplySnapshot(yes, no []domain.PriceLevel, ts time.Time) {
	b.Yes = make(map[int]float64, len(yes))
	for _, lvl := range yes {
		if lvl.Size > 0 {
			b.Yes[lvl.Price] = lvl.Size
		}
	}
	b.No = make(map[int]float64, len(no))
	for _, lvl := range no {
		if lvl.Size > 0 {
			b.No[lvl.Price] = lvl.Size
		}
	}
	b.LastOrderbookTs = ts
}

// ApplyDelta adjusts one level: new = prev + delta; <= 0 deletes the level.
func (b *Book) ApplyDelta(side domain.Side, price int, delta float64, ts time.Time) {
	m := b.sideMap(side)
	next := m[price] + delta
	if next <= 0 {
		delete(m, price)
	} else {
		m[price] = next
	}
	b.LastOrderbookTs = ts
}

func (b *Book) sideMap(side domain.Side) map[int]float64 {
	if side == domain.SideNo {
		return b.No
	}
	return b.Yes
}

// TopOfBook derives (best_bid, best_ask, bid_size, ask_size). Best bid is
// the max YES price; best ask is 100 minus the max NO price. Ticker-
// supplied hints win when present.
func (b *Book) TopOfBook() domain.TopOfBook {
	var top domain.TopOfBook

	bestYesPrice, bestYesSize, hasYes := maxLevel(b.Yes)
	bestNoPrice, bestNoSize, hasNo := maxLevel(b.No)

	if b.tickerBid != nil {
		top.BestBid = *b.tickerBid
		if hasYes && bestYesPrice == *b.tickerBid {
			top.BidSize = bestYesSize
		}
	} else if hasYes {
		top.BestBid = bestYesPrice
		top.BidSize = bestYesSize
	}

	if b.tickerAsk != nil {
		top.BestAsk = *b.tickerAsk
		if hasNo && (100-bestNoPrice) == *b.tickerAsk {
			top.AskSize = bestNoSize
		}
	} else if hasNo {
		top.BestAsk = 100 - bestNoPrice
		top.AskSize = bestNoSize
	}

	return top
}

func maxLevel(m map[int]float64) (price int, size float64, ok bool) {
	first := true
	for p, s := range m {
		if first || p > price {
			price, size, first = p, s, false
			ok = true
		}
	}
	return
}

// TopN returns the top n levels of one side, sorted by price descending.
// A fixed small n favors an insertion scan over sorting the whole map
// (spec §9).
func TopN(m map[int]float64, n int) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, n)
	for price, size := range m {
		lvl := domain.PriceLevel{Price: price, Size: size}
		inserted := false
		for i := range out {
			if lvl.Price > out[i].Price {
				out = append(out, domain.PriceLevel{})
				copy(out[i+1:], out[i:])
				out[i] = lvl
				inserted = true
				break
			}
		}
		if !inserted {
			out = append(out, lvl)
		}
		if len(out) > n {
			out = out[:n]
		}
	}
	return out
}

// ClassifyTradeSide infers the aggressor of a trade: "buy" if takerSide
// indicates yes, "sell" if no, otherwise relative to the current mid
// (spec §4.2 apply_trade).
func (b *Book) ClassifyTradeSide(price int, takerSide string) domain.TradeSide {
	switch takerSide {
	case "yes":
		return domain.TradeSideBuy
	case "no":
		return domain.TradeSideSell
	}

	top := b.TopOfBook()
	if top.BestBid == 0 && top.BestAsk == 0 {
		return domain.TradeSideUnknown
	}
	mid := float64(top.BestBid+top.BestAsk) / 2
	if mid == 0 {
		return domain.TradeSideUnknown
	}
	if float64(price) >= mid {
		return domain.TradeSideBuy
	}
	return domain.TradeSideSell
}

// RefreshMidHistory updates Mid5sAgo/Mid1mAgo only once at least 5s/60s have
// elapsed since their last refresh, so that mid-midAgo measures change over
// at least the named horizon (spec §3). A refresh stores the mid recorded
// before this call (or mid itself on the first call), so a move that lands
// on a refresh is still visible as mid-midAgo.
func (b *Book) RefreshMidHistory(mid float64, now time.Time) {
	prev := mid
	if b.HasMid {
		prev = b.LastMid
	}
	b.LastMid = mid
	b.HasMid = true

	if !b.HasMid5sAgo || now.Sub(b.mid5sAgoTs) >= 5*time.Second {
		b.Mid5sAgo = prev
		b.HasMid5sAgo = true
		b.mid5sAgoTs = now
	}
	if !b.HasMid1mAgo || now.Sub(b.mid1mAgoTs) >= 60*time.Second {
		b.Mid1mAgo = prev
		b.HasMid1mAgo = true
		b.mid1mAgoTs = now
	}
}
