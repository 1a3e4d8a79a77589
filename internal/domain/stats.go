package domain

// FeedStatus is the freshness classification of a market's book/ticker/trade
// timestamps (spec §4.3).
type FeedStatus string

const (
	FeedStatusFresh   FeedStatus = "fresh"
	FeedStatusStale   FeedStatus = "stale"
	FeedStatusUnknown FeedStatus = "unknown"
)

// Stats is the per-market snapshot the stats engine (C4) computes on every
// dirty market at the fast tick.
type Stats struct {
	Ticker string

	BestBid, BestAsk       int
	BidSize, AskSize       float64
	Mid                    float64
	Spread                 float64
	SpreadBps              float64
	ImpliedProb            float64
	Microprice             float64
	HasMicroprice          bool
	ImbalanceTop           float64
	SumBidTop5, SumAskTop5 float64
	BookImbalanceTop5      float64
	WallBidSize, WallBidRatio float64
	WallAskSize, WallAskRatio float64

	TradesPerMin float64
	VWAP60s      float64
	BuyPressure  float64
	SellPressure float64
	VolMid60s    float64

	PriceDelta1m    float64
	HasPriceDelta1m bool
	JumpFlag        bool
	JumpSize        float64

	LastTickerAgeMs    int64
	LastOrderbookAgeMs int64
	LastTradeAgeMs     int64
	FeedStatus         FeedStatus
}

// AlertFlag is a per-market condition flag attached by the enricher (C5),
// distinct from the persisted Signal stream.
type AlertFlag string

const (
	AlertStaleQuote  AlertFlag = "STALE_QUOTE"
	AlertJump        AlertFlag = "JUMP"
	AlertLowLiq      AlertFlag = "LOW_LIQUIDITY"
	AlertWideSpread  AlertFlag = "WIDE_SPREAD"
)

// EnrichedStats is C5's output: a Stats snapshot joined with parsed market
// metadata and derived scores.
type EnrichedStats struct {
	Stats

	GroupType GroupType
	Line      *float64
	Side      string

	LiquidityScore   float64
	StalenessScore   float64
	JumpScore5s      float64
	JumpScore30s     float64
	ExitabilityCents float64

	Flags []AlertFlag
}
