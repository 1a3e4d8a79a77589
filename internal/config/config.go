// Package config defines the root configuration for the analytics core and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ANALYTICSCORE_* environment
// variables.
type Config struct {
	Analytics AnalyticsConfig `toml:"analytics"`
	Kalshi    KalshiConfig    `toml:"kalshi"`
	Server    ServerConfig    `toml:"server"`
	Archive   ArchiveConfig   `toml:"archive"`
	LogLevel  string          `toml:"log_level"`
}

// AnalyticsConfig holds every knob spec §6 enumerates for the session
// orchestrator and the components it drives (stats engine, enricher,
// ladder builder, signal lifecycle).
type AnalyticsConfig struct {
	MaxMarkets int `toml:"max_markets"`

	// TeamAbbrevs maps a ticker-suffix prefix (e.g. "KC") to a full team
	// name (e.g. "Kansas City Chiefs") for the market parser's side
	// resolution. TeamNames is an ordered list of team-name substrings
	// used as a title-fallback when the ticker suffix doesn't resolve.
	// Both are domain-supplied (spec §4.1) and empty by default; an
	// unmapped prefix is used verbatim as the side only when the title
	// resolves no side.
	TeamAbbrevs map[string]string `toml:"team_abbrevs"`
	TeamNames   []string          `toml:"team_names"`

	TickerBatchInterval duration `toml:"ticker_batch_interval"`
	RawBatchInterval    duration `toml:"raw_batch_interval"`
	StatsEmitInterval   duration `toml:"stats_emit_interval"`
	SignalsEmitInterval duration `toml:"signals_emit_interval"`
	RawBatchMax         int      `toml:"raw_batch_max"`

	RingBufferMaxSize int      `toml:"ring_buffer_max_size"`
	RingBufferWindow  duration `toml:"ring_buffer_window"`

	TopNLevels     int      `toml:"top_n_levels"`
	StaleThreshold duration `toml:"stale_threshold"`
	JumpThreshold  float64  `toml:"jump_threshold"`

	StaleQuoteThreshold float64 `toml:"stale_quote_threshold"`
	LowLiquidityThresh  float64 `toml:"low_liquidity_thresh"`
	WideSpreadCents     float64 `toml:"wide_spread_cents"`

	MinLiquidityDepth  float64  `toml:"min_liquidity_depth"`
	MinLiquidityVolume float64  `toml:"min_liquidity_volume"`
	MaxSpreadCents     float64  `toml:"max_spread_cents"`
	MaxStale           duration `toml:"max_stale"`
	OutlierMinCents    float64  `toml:"outlier_min_cents"`
	MonoMinCents       float64  `toml:"mono_min_cents"`
	MonoEpsilon        float64  `toml:"mono_epsilon"`
	ArbBuffer          float64  `toml:"arb_buffer"`

	PersistDuration      duration `toml:"persist_duration"`
	CooldownDuration     duration `toml:"cooldown_duration"`
	TopK                 int      `toml:"top_k"`
	ActiveSignalMaxAge   duration `toml:"active_signal_max_age"`
}

// KalshiConfig holds Kalshi exchange API credentials and the event this
// session resolves and streams.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
	WSURL             string `toml:"ws_url"`
	EventTicker       string `toml:"event_ticker"`
}

// ServerConfig holds the subscriber transport's HTTP parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	ListenAddr  string   `toml:"listen_addr"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// ArchiveConfig holds the optional Redis raw-event debug archive's
// connection parameters. Disabled by default.
type ArchiveConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "300ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "300ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the constants spec §6
// enumerates, matching the session/ladder/signal/enrich packages' own
// DefaultConfig values.
func Defaults() Config {
	return Config{
		Analytics: AnalyticsConfig{
			MaxMarkets: 50,

			TickerBatchInterval: duration{300 * time.Millisecond},
			RawBatchInterval:    duration{500 * time.Millisecond},
			StatsEmitInterval:   duration{500 * time.Millisecond},
			SignalsEmitInterval: duration{1000 * time.Millisecond},
			RawBatchMax:         50,

			RingBufferMaxSize: 500,
			RingBufferWindow:  duration{60000 * time.Millisecond},

			TopNLevels:     5,
			StaleThreshold: duration{3000 * time.Millisecond},
			JumpThreshold:  5,

			StaleQuoteThreshold: 0.7,
			LowLiquidityThresh:  0.2,
			WideSpreadCents:     8,

			MinLiquidityDepth:  2000,
			MinLiquidityVolume: 5000,
			MaxSpreadCents:     3,
			MaxStale:           duration{5000 * time.Millisecond},
			OutlierMinCents:    5,
			MonoMinCents:       3,
			MonoEpsilon:        0.015,
			ArbBuffer:          0.01,

			PersistDuration:    duration{3000 * time.Millisecond},
			CooldownDuration:   duration{30000 * time.Millisecond},
			TopK:               8,
			ActiveSignalMaxAge: duration{60000 * time.Millisecond},
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
			WSURL:   "wss://api.elections.kalshi.com/trade-api/ws/v2",
		},
		Server: ServerConfig{
			Enabled:     true,
			ListenAddr:  ":8000",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Archive: ArchiveConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Analytics
	if c.Analytics.MaxMarkets < 1 {
		errs = append(errs, "analytics: max_markets must be >= 1")
	}
	if c.Analytics.RawBatchMax < 1 {
		errs = append(errs, "analytics: raw_batch_max must be >= 1")
	}
	if c.Analytics.RingBufferMaxSize < 1 {
		errs = append(errs, "analytics: ring_buffer_max_size must be >= 1")
	}
	if c.Analytics.TopNLevels < 1 {
		errs = append(errs, "analytics: top_n_levels must be >= 1")
	}
	if c.Analytics.TopK < 1 {
		errs = append(errs, "analytics: top_k must be >= 1")
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.WSURL == "" {
		errs = append(errs, "kalshi: ws_url must not be empty")
	}
	if c.Kalshi.EventTicker == "" {
		errs = append(errs, "kalshi: event_ticker must be set (the session resolves and streams exactly one event)")
	}
	if c.Kalshi.RsaPrivateKeyPath != "" && c.Kalshi.ApiKey == "" {
		errs = append(errs, "kalshi: api_key is required when rsa_private_key_path is set")
	}

	// Server
	if c.Server.Enabled && c.Server.ListenAddr == "" {
		errs = append(errs, "server: listen_addr must not be empty when enabled")
	}

	// Archive
	if c.Archive.Enabled {
		if c.Archive.Addr == "" {
			errs = append(errs, "archive: addr must not be empty when enabled")
		}
		if c.Archive.PoolSize < 1 {
			errs = append(errs, "archive: pool_size must be >= 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
