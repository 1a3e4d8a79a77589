package session

import (
	"context"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// Event is the tagged-variant envelope the upstream feed transport decodes
// wire messages into (spec §6, §9 "reject unknown tags silently" — a
// zero-value Event with no variant set and no Raw payload is simply
// dropped by ApplyEvent). Exactly one of the pointer fields is set for a
// data message; Control covers "subscribed"/"error". Raw, when non-empty,
// is echoed into the debug raw-event batch regardless of which variant (if
// any) decoded successfully.
type Event struct {
	Ticker   *domain.TickerMsg
	Snapshot *domain.OrderbookSnapshotMsg
	Delta    *domain.OrderbookDeltaMsg
	Trade    *domain.TradeMsg
	Control  *domain.ControlMsg
	Raw      []byte
}

// FeedSource is the upstream feed transport's contract with the
// orchestrator: decode the wire stream and push Events onto out until ctx
// is cancelled or the upstream closes/errors. A non-nil error other than
// ctx's own cancellation is surfaced to the subscriber as an error/status
// pair and ends the session (spec §7: "Upstream transport error /
// unexpected close").
type FeedSource interface {
	Run(ctx context.Context, out chan<- Event) error
}
