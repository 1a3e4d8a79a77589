package domain

import "time"

// Direction is the expected trend of P(YES) as a ladder's line increases.
type Direction string

const (
	DirectionNonincreasing Direction = "nonincreasing"
	DirectionNondecreasing Direction = "nondecreasing"
)

// ExcludeReason explains why a point was excluded from ladder analysis while
// remaining visible in the ladder (spec §4.6 gating).
type ExcludeReason string

const (
	ExcludeLowLiquidity ExcludeReason = "low_liquidity"
	ExcludeWideSpread   ExcludeReason = "wide_spread"
	ExcludeStale        ExcludeReason = "stale"
)

// LadderPoint is one market's position within a ladder.
type LadderPoint struct {
	Line        float64
	Side        string
	Ticker      string
	BidProb     float64
	AskProb     float64
	MidProb     float64
	FittedProb  float64
	HasFitted   bool
	ResidualCents float64
	HasResidual bool
	DepthBid    float64
	DepthAsk    float64
	Volume      float64
	SpreadCents float64

	IsViolation bool
	IsOutlier   bool
	IsPrimary   bool
	IsExcluded  bool
	ExcludeReason ExcludeReason

	ParseSource ParseSource
}

// Diagnostics records ladder-construction counters (spec §4.6
// "Diagnostics").
type Diagnostics struct {
	Total              int
	Parsed             int
	Unparsed           int
	DuplicatesDropped  int
	ExcludedLowLiq     int
	ExcludedWideSpread int
	ExcludedStale      int
}

// Ladder is a monotone family of contracts differing only by line.
type Ladder struct {
	LadderKey          string
	GameID             string
	LadderType         GroupType // spread or total
	Side               string
	ExpectedDirection  Direction
	Points             []LadderPoint
	Violations         []string // signal ids
	Diagnostics        Diagnostics
	MonoViolationCount int
	OutlierCount       int
	MaxViolationCents  float64
	LastUpdated        time.Time
}
