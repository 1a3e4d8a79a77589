package domain

import "time"

// The types below model the upstream feed's tagged variant (spec §6,
// "Upstream feed (consumed)"). internal/feed/kalshiws decodes wire JSON into
// these; internal/session's ingest loop folds them into book/ring state.
// Unknown tags are rejected silently per spec §9.

// TickerMsg is the "ticker" upstream record.
type TickerMsg struct {
	MarketTicker string
	YesBid       *int
	YesAsk       *int
	LastPrice    *int
	Volume       *float64
	Volume24h    *float64
	OpenInterest *float64
	Ts           time.Time
}

// OrderbookSnapshotMsg is the "orderbook_snapshot" upstream record. It
// replaces both sides of the book.
type OrderbookSnapshotMsg struct {
	MarketTicker string
	Yes          []PriceLevel
	No           []PriceLevel
	Ts           time.Time
}

// OrderbookDeltaMsg is the "orderbook_delta" upstream record. Delta is added
// to the existing size at Price; a resulting size <= 0 removes the level.
type OrderbookDeltaMsg struct {
	MarketTicker string
	Price        int
	Delta        float64
	Side         Side
	Ts           time.Time
}

// TradeMsg is the "trade" upstream record.
type TradeMsg struct {
	MarketTicker string
	Count        *float64
	YesPrice     *int
	NoPrice      *int
	TakerSide    string // "yes", "no", or ""
	Ts           time.Time
}

// ControlMsg covers the "subscribed" and "error" upstream control records.
type ControlMsg struct {
	Type    string // "subscribed" or "error"
	Message string
}

// SubscribeParams is the body of the upstream subscribe command (spec §6:
// {cmd:"subscribe", params:{channels, market_tickers}}).
type SubscribeParams struct {
	Channels      []string
	MarketTickers []string
}

// ResolvedMarket is one entry of a resolver's enrichedMarkets[] result.
type ResolvedMarket struct {
	Ticker      string
	Title       string
	EventTicker string
	GroupType   GroupType
	Line        *float64
	Side        string
}

// ResolveResult is the REST resolver's output (spec §6, "Resolver
// (consumed)"): resolve(event_ticker) -> {gameId, primaryEvent,
// enrichedMarkets[], resolvedEvents[]}.
type ResolveResult struct {
	GameID          string
	PrimaryEvent    string
	EnrichedMarkets []ResolvedMarket
	ResolvedEvents  []string
}
