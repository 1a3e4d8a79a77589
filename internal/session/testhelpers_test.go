package session

import (
	"io"
	"log/slog"

	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/signal"
)

func newLifecycle(cfg Config, mc *clock.Manual) *signal.Lifecycle {
	return signal.New(cfg.Signal, mc)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
