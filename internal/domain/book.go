package domain

import "time"

// Side names one leg of a binary market's order book.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// TradeSide classifies the aggressor of a fill.
type TradeSide string

const (
	TradeSideBuy     TradeSide = "buy"
	TradeSideSell    TradeSide = "sell"
	TradeSideUnknown TradeSide = "unknown"
)

// PriceLevel is a single price(cents)+size entry in an order book side.
type PriceLevel struct {
	Price int // cents, [0,100]
	Size  float64
}

// TopOfBook is the best bid/ask and their sizes for one market, derived
// either from the resting book or from ticker-supplied hints (spec §4.2:
// "if ticker supplies these, prefer ticker-supplied").
type TopOfBook struct {
	BestBid int
	BestAsk int
	BidSize float64
	AskSize float64
}

// BookSnapshot is the full Top-N depth of one market, price-descending on
// each side, used for stats computation and presentation.
type BookSnapshot struct {
	Ticker    string
	Bids      []PriceLevel // YES side, descending by price
	Asks      []PriceLevel // derived from NO side, descending by price
	Timestamp time.Time
}

// Trade is a single recorded fill, kept in a market's ring buffer.
type Trade struct {
	Ticker string
	Ts     time.Time
	Price  int
	Count  float64
	Side   TradeSide
}

// MidPoint is a single ring-buffer sample of a market's mid price.
type MidPoint struct {
	Ts  time.Time
	Mid float64
}
