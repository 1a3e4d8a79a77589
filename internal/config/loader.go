package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ANALYTICSCORE_* environment variable
// overrides, and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ANALYTICSCORE_* environment variables
// and overwrites the corresponding Config fields when a variable is set
// (i.e. not empty). This lets operators inject secrets at deploy time
// without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Analytics ──
	setInt(&cfg.Analytics.MaxMarkets, "ANALYTICSCORE_ANALYTICS_MAX_MARKETS")
	setDuration(&cfg.Analytics.TickerBatchInterval, "ANALYTICSCORE_ANALYTICS_TICKER_BATCH_INTERVAL")
	setDuration(&cfg.Analytics.RawBatchInterval, "ANALYTICSCORE_ANALYTICS_RAW_BATCH_INTERVAL")
	setDuration(&cfg.Analytics.StatsEmitInterval, "ANALYTICSCORE_ANALYTICS_STATS_EMIT_INTERVAL")
	setDuration(&cfg.Analytics.SignalsEmitInterval, "ANALYTICSCORE_ANALYTICS_SIGNALS_EMIT_INTERVAL")
	setInt(&cfg.Analytics.RawBatchMax, "ANALYTICSCORE_ANALYTICS_RAW_BATCH_MAX")
	setInt(&cfg.Analytics.RingBufferMaxSize, "ANALYTICSCORE_ANALYTICS_RING_BUFFER_MAX_SIZE")
	setDuration(&cfg.Analytics.RingBufferWindow, "ANALYTICSCORE_ANALYTICS_RING_BUFFER_WINDOW")
	setInt(&cfg.Analytics.TopNLevels, "ANALYTICSCORE_ANALYTICS_TOP_N_LEVELS")
	setDuration(&cfg.Analytics.StaleThreshold, "ANALYTICSCORE_ANALYTICS_STALE_THRESHOLD")
	setFloat64(&cfg.Analytics.JumpThreshold, "ANALYTICSCORE_ANALYTICS_JUMP_THRESHOLD")
	setFloat64(&cfg.Analytics.StaleQuoteThreshold, "ANALYTICSCORE_ANALYTICS_STALE_QUOTE_THRESHOLD")
	setFloat64(&cfg.Analytics.LowLiquidityThresh, "ANALYTICSCORE_ANALYTICS_LOW_LIQUIDITY_THRESH")
	setFloat64(&cfg.Analytics.WideSpreadCents, "ANALYTICSCORE_ANALYTICS_WIDE_SPREAD_CENTS")
	setFloat64(&cfg.Analytics.MinLiquidityDepth, "ANALYTICSCORE_ANALYTICS_MIN_LIQUIDITY_DEPTH")
	setFloat64(&cfg.Analytics.MinLiquidityVolume, "ANALYTICSCORE_ANALYTICS_MIN_LIQUIDITY_VOLUME")
	setFloat64(&cfg.Analytics.MaxSpreadCents, "ANALYTICSCORE_ANALYTICS_MAX_SPREAD_CENTS")
	setDuration(&cfg.Analytics.MaxStale, "ANALYTICSCORE_ANALYTICS_MAX_STALE")
	setFloat64(&cfg.Analytics.OutlierMinCents, "ANALYTICSCORE_ANALYTICS_OUTLIER_MIN_CENTS")
	setFloat64(&cfg.Analytics.MonoMinCents, "ANALYTICSCORE_ANALYTICS_MONO_MIN_CENTS")
	setFloat64(&cfg.Analytics.MonoEpsilon, "ANALYTICSCORE_ANALYTICS_MONO_EPSILON")
	setFloat64(&cfg.Analytics.ArbBuffer, "ANALYTICSCORE_ANALYTICS_ARB_BUFFER")
	setDuration(&cfg.Analytics.PersistDuration, "ANALYTICSCORE_ANALYTICS_PERSIST_DURATION")
	setDuration(&cfg.Analytics.CooldownDuration, "ANALYTICSCORE_ANALYTICS_COOLDOWN_DURATION")
	setInt(&cfg.Analytics.TopK, "ANALYTICSCORE_ANALYTICS_TOP_K")
	setDuration(&cfg.Analytics.ActiveSignalMaxAge, "ANALYTICSCORE_ANALYTICS_ACTIVE_SIGNAL_MAX_AGE")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.ApiKey, "ANALYTICSCORE_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ANALYTICSCORE_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "ANALYTICSCORE_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.WSURL, "ANALYTICSCORE_KALSHI_WS_URL")
	setStr(&cfg.Kalshi.EventTicker, "ANALYTICSCORE_KALSHI_EVENT_TICKER")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ANALYTICSCORE_SERVER_ENABLED")
	setStr(&cfg.Server.ListenAddr, "ANALYTICSCORE_SERVER_LISTEN_ADDR")
	setStringSlice(&cfg.Server.CORSOrigins, "ANALYTICSCORE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "ANALYTICSCORE_SERVER_API_KEY")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "ANALYTICSCORE_ARCHIVE_ENABLED")
	setStr(&cfg.Archive.Addr, "ANALYTICSCORE_ARCHIVE_ADDR")
	setStr(&cfg.Archive.Password, "ANALYTICSCORE_ARCHIVE_PASSWORD")
	setInt(&cfg.Archive.DB, "ANALYTICSCORE_ARCHIVE_DB")
	setInt(&cfg.Archive.PoolSize, "ANALYTICSCORE_ARCHIVE_POOL_SIZE")
	setInt(&cfg.Archive.MaxRetries, "ANALYTICSCORE_ARCHIVE_MAX_RETRIES")
	setBool(&cfg.Archive.TLSEnabled, "ANALYTICSCORE_ARCHIVE_TLS_ENABLED")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "ANALYTICSCORE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
