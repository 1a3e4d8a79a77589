package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyoungcy/analyticscore/internal/archive/redis"
	"github.com/alanyoungcy/analyticscore/internal/clock"
	"github.com/alanyoungcy/analyticscore/internal/config"
	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/enrich"
	"github.com/alanyoungcy/analyticscore/internal/feed/kalshiws"
	"github.com/alanyoungcy/analyticscore/internal/ladder"
	"github.com/alanyoungcy/analyticscore/internal/metrics"
	"github.com/alanyoungcy/analyticscore/internal/parser"
	"github.com/alanyoungcy/analyticscore/internal/resolver"
	"github.com/alanyoungcy/analyticscore/internal/server"
	"github.com/alanyoungcy/analyticscore/internal/session"
	"github.com/alanyoungcy/analyticscore/internal/signal"
	"github.com/alanyoungcy/analyticscore/internal/stats"
)

// Dependencies bundles every concrete component the application needs to
// run one session, narrowed from the teacher's multi-store/multi-mode
// Dependencies down to the single resolve-stream-serve flow this spec
// describes.
type Dependencies struct {
	Resolver      *resolver.Resolver
	Feed          *kalshiws.Client
	Parser        *parser.Parser
	Lifecycle     *signal.Lifecycle
	Metrics       *metrics.Metrics
	Server        *server.Server
	Readiness     *server.Readiness
	Archiver      domain.RawArchiver
	SessionConfig session.Config
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var privateKeyPEM []byte
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read rsa private key: %w", err)
		}
		privateKeyPEM = pem
	}

	res, err := resolver.New(resolver.Config{
		BaseURL:       cfg.Kalshi.BaseURL,
		APIKeyID:      cfg.Kalshi.ApiKey,
		PrivateKeyPEM: privateKeyPEM,
		HTTPTimeout:   resolver.DefaultConfig().HTTPTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: resolver: %w", err)
	}

	p := parser.New(cfg.Analytics.TeamAbbrevs, cfg.Analytics.TeamNames)

	signalCfg := signal.Config{
		PersistDuration:      cfg.Analytics.PersistDuration.Duration,
		CooldownDuration:     cfg.Analytics.CooldownDuration.Duration,
		PendingEvictDuration: signal.DefaultConfig().PendingEvictDuration,
		ActiveSignalMaxAge:   cfg.Analytics.ActiveSignalMaxAge.Duration,
		TopK:                 cfg.Analytics.TopK,
	}
	lifecycle := signal.New(signalCfg, clock.Real{})

	m := metrics.New()

	ready := &server.Readiness{}

	srv := server.New(server.Config{
		ListenAddr:  cfg.Server.ListenAddr,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.APIKey,
	}, logger, ready, promhttp.Handler())

	feedCfg := kalshiws.DefaultConfig()
	feedCfg.URL = cfg.Kalshi.WSURL
	feedCfg.WSPath = "/trade-api/ws/v2"
	feedCfg.APIKeyID = cfg.Kalshi.ApiKey
	feedCfg.PrivateKeyPEM = privateKeyPEM
	feedCfg.OnConnected = func() { ready.SetFeedConnected(true) }

	feed, err := kalshiws.New(feedCfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: feed client: %w", err)
	}
	feed.SetMetrics(m)

	var archiver domain.RawArchiver
	if cfg.Archive.Enabled {
		a, err := redis.New(ctx, redis.Config{
			Addr:       cfg.Archive.Addr,
			Password:   cfg.Archive.Password,
			DB:         cfg.Archive.DB,
			PoolSize:   cfg.Archive.PoolSize,
			MaxRetries: cfg.Archive.MaxRetries,
			TLSEnabled: cfg.Archive.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: archiver: %w", err)
		}
		closers = append(closers, func() { _ = a.Close() })
		archiver = a
	}

	sessCfg := session.Config{
		MaxMarkets: cfg.Analytics.MaxMarkets,

		TickerBatchInterval: cfg.Analytics.TickerBatchInterval.Duration,
		RawBatchInterval:    cfg.Analytics.RawBatchInterval.Duration,
		StatsEmitInterval:   cfg.Analytics.StatsEmitInterval.Duration,
		SignalsEmitInterval: cfg.Analytics.SignalsEmitInterval.Duration,
		RawBatchMax:         cfg.Analytics.RawBatchMax,

		RingMaxSize: cfg.Analytics.RingBufferMaxSize,
		RingWindow:  cfg.Analytics.RingBufferWindow.Duration,

		Stats: stats.Config{
			TopNLevels:     cfg.Analytics.TopNLevels,
			StaleThreshold: cfg.Analytics.StaleThreshold.Duration,
			JumpThreshold:  cfg.Analytics.JumpThreshold,
		},
		Enrich: enrich.Config{
			StaleQuoteThreshold: cfg.Analytics.StaleQuoteThreshold,
			LowLiquidityThresh:  cfg.Analytics.LowLiquidityThresh,
			WideSpreadCents:     cfg.Analytics.WideSpreadCents,
		},
		Ladder: ladder.Config{
			MinLiquidityDepth:  cfg.Analytics.MinLiquidityDepth,
			MinLiquidityVolume: cfg.Analytics.MinLiquidityVolume,
			MaxSpreadCents:     cfg.Analytics.MaxSpreadCents,
			MaxStaleMs:         cfg.Analytics.MaxStale.Duration.Milliseconds(),
			OutlierMinCents:    cfg.Analytics.OutlierMinCents,
			MonoMinCents:       cfg.Analytics.MonoMinCents,
			MonoEpsilon:        cfg.Analytics.MonoEpsilon,
			ArbBuffer:          cfg.Analytics.ArbBuffer,
		},
		Signal: signalCfg,
	}

	deps := &Dependencies{
		Resolver:      res,
		Feed:          feed,
		Parser:        p,
		Lifecycle:     lifecycle,
		Metrics:       m,
		Server:        srv,
		Readiness:     ready,
		Archiver:      archiver,
		SessionConfig: sessCfg,
	}

	return deps, cleanup, nil
}
