// Package server hosts the subscriber transport's HTTP surface: the
// WebSocket upgrade endpoint for the session's single subscriber, plus
// /healthz and /metrics (SPEC_FULL.md §12).
//
// Grounded on alanyoungcy-polymarketbot's internal/server/server.go (mux
// construction, middleware chain, graceful Shutdown), narrowed from a
// multi-route trading API down to the three routes this spec's external
// interface needs, and extended with a pending-connection handoff so the
// HTTP handler (which owns the upgrade call) and the session orchestrator
// (which owns the resulting Sink) can run on separate goroutines without
// a data race.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/server/middleware"
	"github.com/alanyoungcy/analyticscore/internal/server/ws"
)

// Config holds the subscriber-transport HTTP server's configuration.
type Config struct {
	ListenAddr  string
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

type pendingConn struct {
	w      http.ResponseWriter
	r      *http.Request
	result chan *ws.Subscriber
}

// Server is the headless HTTP server exposing /healthz, /metrics, and the
// single-subscriber /ws endpoint.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	ready      *Readiness
	pending    chan pendingConn
}

// New constructs a Server. metricsHandler is typically promhttp.Handler()
// from internal/metrics; it is accepted as an interface here so this
// package does not need to import the metrics package directly.
func New(cfg Config, logger *slog.Logger, ready *Readiness, metricsHandler http.Handler) *Server {
	s := &Server{
		logger:  logger,
		ready:   ready,
		pending: make(chan pendingConn, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", ready.Handler())
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.HandleFunc("GET /ws", s.handleWS)

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// handleWS hands the raw request off to whatever goroutine is waiting in
// AcceptSubscriber, then blocks until that subscriber's connection ends so
// the net/http handler's lifetime matches the hijacked connection's.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	pc := pendingConn{w: w, r: r, result: make(chan *ws.Subscriber, 1)}

	select {
	case s.pending <- pc:
	default:
		http.Error(w, "a subscriber is already attached to this session", http.StatusConflict)
		return
	}

	sub := <-pc.result
	if sub == nil {
		return
	}
	<-sub.Done()
}

// AcceptSubscriber blocks until a client connects to /ws (or ctx is
// cancelled), upgrades the connection, and returns the resulting Sink.
// cancel is invoked by the subscriber if its connection later drops or a
// write fails (spec §7 "Subscriber gone / send fails: treat as session
// cancel").
func (s *Server) AcceptSubscriber(ctx context.Context, cancel context.CancelFunc) (*ws.Subscriber, error) {
	select {
	case pc := <-s.pending:
		sub, err := ws.NewSubscriber(pc.w, pc.r, s.logger, cancel)
		if err != nil {
			pc.result <- nil
			return nil, fmt.Errorf("server: upgrade: %w", err)
		}
		pc.result <- sub
		return sub, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// errors or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
