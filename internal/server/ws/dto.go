package ws

import (
	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// envelope is the tagged-record shape of every message pushed to the
// subscriber (spec §6, "Subscriber snapshot stream (exposed)").
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type statusPayload struct {
	Status  domain.SessionStatus `json:"status"`
	Message string               `json:"message,omitempty"`
}

type metaPayload struct {
	Event          string   `json:"event"`
	Markets        []string `json:"markets"`
	ResolvedEvents []string `json:"resolvedEvents"`
	GameID         string   `json:"gameId"`
}

type tickerPayload struct {
	Data map[string]tickerDTO `json:"data"`
}

type tickerDTO struct {
	MarketTicker string   `json:"market_ticker"`
	YesBid       *int     `json:"yes_bid,omitempty"`
	YesAsk       *int     `json:"yes_ask,omitempty"`
	LastPrice    *int     `json:"last_price,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Volume24h    *float64 `json:"volume_24h,omitempty"`
	OpenInterest *float64 `json:"open_interest,omitempty"`
	Ts           int64    `json:"ts"`
}

func newTickerDTO(m domain.TickerMsg) tickerDTO {
	return tickerDTO{
		MarketTicker: m.MarketTicker,
		YesBid:       m.YesBid,
		YesAsk:       m.YesAsk,
		LastPrice:    m.LastPrice,
		Volume:       m.Volume,
		Volume24h:    m.Volume24h,
		OpenInterest: m.OpenInterest,
		Ts:           m.Ts.UnixMilli(),
	}
}

type rawPayload struct {
	Messages [][]byte `json:"messages"`
}

type statsPayload struct {
	Ts      int64                       `json:"ts"`
	Markets map[string]enrichedStatsDTO `json:"markets"`
}

type enrichedStatsDTO struct {
	Ticker string `json:"ticker"`

	BestBid int `json:"best_bid"`
	BestAsk int `json:"best_ask"`

	Mid         float64 `json:"mid"`
	Spread      float64 `json:"spread"`
	SpreadBps   float64 `json:"spread_bps"`
	ImpliedProb float64 `json:"implied_prob"`
	Microprice  float64 `json:"microprice,omitempty"`

	SumBidTop5 float64 `json:"sum_bid_top5"`
	SumAskTop5 float64 `json:"sum_ask_top5"`

	TradesPerMin float64 `json:"trades_per_min"`
	VWAP60s      float64 `json:"vwap_60s"`

	JumpFlag bool    `json:"jump_flag"`
	JumpSize float64 `json:"jump_size,omitempty"`

	LastTickerAgeMs    int64             `json:"last_ticker_age_ms"`
	LastOrderbookAgeMs int64             `json:"last_orderbook_age_ms"`
	FeedStatus         domain.FeedStatus `json:"feed_status"`

	GroupType domain.GroupType `json:"group_type"`
	Line      *float64         `json:"line,omitempty"`
	Side      string           `json:"side"`

	LiquidityScore   float64 `json:"liquidity_score"`
	StalenessScore   float64 `json:"staleness_score"`
	ExitabilityCents float64 `json:"exitability_cents"`

	Flags []domain.AlertFlag `json:"flags,omitempty"`
}

func newEnrichedStatsDTO(e domain.EnrichedStats) enrichedStatsDTO {
	return enrichedStatsDTO{
		Ticker:             e.Ticker,
		BestBid:            e.BestBid,
		BestAsk:            e.BestAsk,
		Mid:                e.Mid,
		Spread:             e.Spread,
		SpreadBps:          e.SpreadBps,
		ImpliedProb:        e.ImpliedProb,
		Microprice:         e.Microprice,
		SumBidTop5:         e.SumBidTop5,
		SumAskTop5:         e.SumAskTop5,
		TradesPerMin:       e.TradesPerMin,
		VWAP60s:            e.VWAP60s,
		JumpFlag:           e.JumpFlag,
		JumpSize:           e.JumpSize,
		LastTickerAgeMs:    e.LastTickerAgeMs,
		LastOrderbookAgeMs: e.LastOrderbookAgeMs,
		FeedStatus:         e.FeedStatus,
		GroupType:          e.GroupType,
		Line:               e.Line,
		Side:               e.Side,
		LiquidityScore:     e.LiquidityScore,
		StalenessScore:     e.StalenessScore,
		ExitabilityCents:   e.ExitabilityCents,
		Flags:              e.Flags,
	}
}

type signalsPayload struct {
	Ts      int64       `json:"ts"`
	Signals []signalDTO `json:"signals"`
	Ladders []ladderDTO `json:"ladders"`
}

type signalDTO struct {
	ID              string            `json:"id"`
	Ts              int64             `json:"ts"`
	MarketTicker    string            `json:"market_ticker"`
	Type            domain.SignalType `json:"type"`
	Confidence      domain.Confidence `json:"confidence"`
	SuggestedAction string            `json:"suggested_action"`
	Reason          string            `json:"reason"`
	Magnitude       float64           `json:"magnitude"`
	RelatedTickers  []string          `json:"related_tickers,omitempty"`
	SeverityScore   float64           `json:"severity_score"`
	LadderKey       string            `json:"ladder_key,omitempty"`
}

func newSignalDTO(s domain.Signal) signalDTO {
	return signalDTO{
		ID:              s.ID,
		Ts:              s.Ts.UnixMilli(),
		MarketTicker:    s.MarketTicker,
		Type:            s.Type,
		Confidence:      s.Confidence,
		SuggestedAction: s.SuggestedAction,
		Reason:          s.Reason,
		Magnitude:       s.Magnitude,
		RelatedTickers:  s.RelatedTickers,
		SeverityScore:   s.SeverityScore,
		LadderKey:       s.LadderKey,
	}
}

type ladderDTO struct {
	LadderKey          string           `json:"ladder_key"`
	GameID             string           `json:"game_id"`
	LadderType         domain.GroupType `json:"ladder_type"`
	Side               string           `json:"side"`
	ExpectedDirection  domain.Direction `json:"expected_direction"`
	Points             []ladderPointDTO `json:"points"`
	Violations         []string         `json:"violations,omitempty"`
	MonoViolationCount int              `json:"mono_violation_count"`
	OutlierCount       int              `json:"outlier_count"`
	MaxViolationCents  float64          `json:"max_violation_cents"`
	LastUpdated        int64            `json:"last_updated"`
}

type ladderPointDTO struct {
	Line          float64              `json:"line"`
	Side          string               `json:"side"`
	Ticker        string               `json:"ticker"`
	BidProb       float64              `json:"bid_prob"`
	AskProb       float64              `json:"ask_prob"`
	MidProb       float64              `json:"mid_prob"`
	FittedProb    *float64             `json:"fitted_prob,omitempty"`
	IsViolation   bool                 `json:"is_violation,omitempty"`
	IsOutlier     bool                 `json:"is_outlier,omitempty"`
	IsExcluded    bool                 `json:"is_excluded,omitempty"`
	ExcludeReason domain.ExcludeReason `json:"exclude_reason,omitempty"`
}

func newLadderDTO(l domain.Ladder) ladderDTO {
	points := make([]ladderPointDTO, len(l.Points))
	for i, p := range l.Points {
		pd := ladderPointDTO{
			Line:          p.Line,
			Side:          p.Side,
			Ticker:        p.Ticker,
			BidProb:       p.BidProb,
			AskProb:       p.AskProb,
			MidProb:       p.MidProb,
			IsViolation:   p.IsViolation,
			IsOutlier:     p.IsOutlier,
			IsExcluded:    p.IsExcluded,
			ExcludeReason: p.ExcludeReason,
		}
		if p.HasFitted {
			v := p.FittedProb
			pd.FittedProb = &v
		}
		points[i] = pd
	}
	return ladderDTO{
		LadderKey:          l.LadderKey,
		GameID:             l.GameID,
		LadderType:         l.LadderType,
		Side:               l.Side,
		ExpectedDirection:  l.ExpectedDirection,
		Points:             points,
		Violations:         l.Violations,
		MonoViolationCount: l.MonoViolationCount,
		OutlierCount:       l.OutlierCount,
		MaxViolationCents:  l.MaxViolationCents,
		LastUpdated:        l.LastUpdated.UnixMilli(),
	}
}

type errorPayload struct {
	Message      string `json:"message"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
}
