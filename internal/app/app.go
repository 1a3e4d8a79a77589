// Package app provides the top-level application lifecycle management for
// the analytics core. It wires together the resolver, the upstream feed,
// the session orchestrator, and the subscriber transport, and runs them to
// completion for the one event the configuration names.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/config"
	"github.com/alanyoungcy/analyticscore/internal/session"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, resolves the configured event, and runs one
// session.Orchestrator against it until ctx is cancelled or the session
// ends. Unlike the teacher's mode switch, there is only one thing to run:
// the analytics core for one game (spec's whole surface is C1-C9 driving a
// single subscriber stream).
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application", slog.String("log_level", a.cfg.LogLevel))

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	res, err := deps.Resolver.Resolve(ctx, a.cfg.Kalshi.EventTicker)
	if err != nil {
		return fmt.Errorf("app: resolve %q: %w", a.cfg.Kalshi.EventTicker, err)
	}
	deps.Readiness.SetResolved(true)
	a.logger.InfoContext(ctx, "event resolved",
		slog.String("event_ticker", a.cfg.Kalshi.EventTicker),
		slog.Int("markets", len(res.EnrichedMarkets)),
	)

	orch := session.New(res, deps.Parser, deps.SessionConfig, deps.Lifecycle, clock.Real{}, a.logger)
	orch.SetMetrics(deps.Metrics)
	if deps.Archiver != nil {
		orch.SetArchiver(deps.Archiver)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(sessCtx)

	g.Go(func() error {
		if err := deps.Server.Start(); err != nil {
			return fmt.Errorf("app: server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return deps.Server.Shutdown(context.Background())
	})

	g.Go(func() error {
		sub, err := deps.Server.AcceptSubscriber(gctx, cancel)
		if err != nil {
			return fmt.Errorf("app: accept subscriber: %w", err)
		}
		return orch.Run(gctx, deps.Feed, sub)
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	return nil
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
