package session

import (
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// Sink is the subscriber transport's contract with the orchestrator: one
// method per tagged record of spec §6's "Subscriber snapshot stream
// (exposed)". Implementations (internal/server) own serialization and
// delivery; the orchestrator calls these synchronously from its single
// owning goroutine and never blocks waiting for delivery to complete (a
// slow or gone subscriber is the transport's problem, not the
// orchestrator's — spec §7 "Subscriber gone / send fails: treat as session
// cancel" is enforced by the transport cancelling the session's context).
type Sink interface {
	Status(status domain.SessionStatus, message string)
	Meta(event, gameID string, markets, resolvedEvents []string)
	Ticker(updates map[string]domain.TickerMsg)
	Raw(messages [][]byte)
	Stats(ts time.Time, markets map[string]domain.EnrichedStats)
	Signals(ts time.Time, signals []domain.Signal, ladders []domain.Ladder)
	Error(message string, requiresAuth bool)
}
