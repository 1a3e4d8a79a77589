// Package redis implements domain.RawArchiver with a capped Redis stream
// per game, an optional debug side-channel for the orchestrator's raw
// inbound batches (SPEC_FULL.md §11). Off by default.
//
// Grounded on alanyoungcy-polymarketbot's internal/cache/redis/client.go
// (connection construction) and internal/cache/redis/signal_bus.go's
// StreamAppend (XADD with an approximate MAXLEN), narrowed from a
// general-purpose signal bus down to a single write-only archive call.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

// streamMaxLen bounds each game's archive stream via XADD MAXLEN ~, same
// trimming convention as the teacher's signal bus.
const streamMaxLen int64 = 10000

// Config holds connection parameters for the archive's Redis client. An
// empty Addr means archiving is disabled; callers should not construct an
// Archiver in that case.
type Config struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// Archiver implements domain.RawArchiver.
type Archiver struct {
	rdb *redis.Client
}

// New connects to Redis and verifies connectivity with a Ping.
func New(ctx context.Context, cfg Config) (*Archiver, error) {
	opts := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("archive/redis: ping: %w", err)
	}

	return &Archiver{rdb: rdb}, nil
}

// Append writes one raw inbound payload to the gameID's archive stream.
// Failures are not fatal to the session; callers should log and continue.
func (a *Archiver) Append(ctx context.Context, gameID string, payload []byte) error {
	stream := "analyticscore:archive:" + gameID
	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if err := a.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("archive/redis: stream append %s: %w", stream, err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (a *Archiver) Close() error {
	return a.rdb.Close()
}

var _ domain.RawArchiver = (*Archiver)(nil)
