package session

import (
	"time"

	"github.com/alanyoungcy/analyticscore/internal/enrich"
	"github.com/alanyoungcy/analyticscore/internal/ladder"
	"github.com/alanyoungcy/analyticscore/internal/signal"
	"github.com/alanyoungcy/analyticscore/internal/stats"
)

// Config carries every session-level knob spec §6 enumerates, composing the
// sub-configs of the components the orchestrator drives.
type Config struct {
	MaxMarkets int

	TickerBatchInterval time.Duration
	RawBatchInterval    time.Duration
	StatsEmitInterval   time.Duration
	SignalsEmitInterval time.Duration
	RawBatchMax         int

	RingMaxSize int
	RingWindow  time.Duration

	Stats  stats.Config
	Enrich enrich.Config
	Ladder ladder.Config
	Signal signal.Config
}

// DefaultConfig returns the constants spec §6 enumerates.
func DefaultConfig() Config {
	return Config{
		MaxMarkets: 50,

		TickerBatchInterval: 300 * time.Millisecond,
		RawBatchInterval:    500 * time.Millisecond,
		StatsEmitInterval:   500 * time.Millisecond,
		SignalsEmitInterval: 1000 * time.Millisecond,
		RawBatchMax:         50,

		RingMaxSize: 500,
		RingWindow:  60000 * time.Millisecond,

		Stats: stats.Config{
			TopNLevels:     5,
			StaleThreshold: 3000 * time.Millisecond,
			JumpThreshold:  5,
		},
		Enrich: enrich.DefaultConfig(),
		Ladder: ladder.DefaultConfig(),
		Signal: signal.DefaultConfig(),
	}
}
