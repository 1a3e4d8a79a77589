package kalshiws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/metrics"
	"github.com/alanyoungcy/analyticscore/internal/session"
)

// Config carries the connection parameters for one session's upstream feed.
type Config struct {
	URL           string
	WSPath        string // path component signed alongside the method, e.g. "/trade-api/ws/v2"
	APIKeyID      string
	PrivateKeyPEM []byte
	MarketTickers []string

	DialTimeout time.Duration
	WriteWait   time.Duration
	PongWait    time.Duration
	PingPeriod  time.Duration

	// OnConnected, if set, is called once after a successful dial and
	// subscribe, before the ping/read loops start. Used to flip a
	// readiness gate; never called again for this Client (no reconnect).
	OnConnected func()
}

// DefaultConfig returns the teacher's connection timing constants.
func DefaultConfig() Config {
	return Config{
		DialTimeout: 15 * time.Second,
		WriteWait:   10 * time.Second,
		PongWait:    30 * time.Second,
		PingPeriod:  27 * time.Second, // 9/10 of PongWait
	}
}

// Client is the upstream feed transport (session.FeedSource). Per spec §7
// ("Upstream transport error / unexpected close: ... do not auto-reconnect"),
// Run dials exactly once and returns on the first read/write failure or
// ctx cancellation — reconnection, if any, is the caller's decision to
// start a fresh session, not this client's.
type Client struct {
	cfg     Config
	signer  *Signer
	logger  *slog.Logger
	metrics *metrics.Metrics
	cmdID   int64
}

// SetMetrics attaches a Prometheus sink for the malformed-message counter.
// It is optional; a nil receiver's metrics field leaves decode failures
// uninstrumented.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// New constructs a Client. If cfg.PrivateKeyPEM is set, the dial request is
// signed per spec §6; otherwise the connection is attempted unauthenticated.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	c := &Client{cfg: cfg, logger: logger}
	if len(cfg.PrivateKeyPEM) > 0 {
		s := NewSigner(cfg.APIKeyID)
		if err := s.SetRSAPrivateKey(cfg.PrivateKeyPEM); err != nil {
			return nil, fmt.Errorf("kalshiws: %w", err)
		}
		c.signer = s
	}
	return c, nil
}

// Run dials, subscribes, and pumps decoded events onto out until the
// connection ends or ctx is cancelled.
func (c *Client) Run(ctx context.Context, out chan<- session.Event) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := c.subscribe(conn); err != nil {
		return fmt.Errorf("kalshiws: subscribe: %w", err)
	}

	if c.cfg.OnConnected != nil {
		c.cfg.OnConnected()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.pingLoop(gctx, conn) })
	g.Go(func() error { return c.readLoop(gctx, conn, out) })

	go func() {
		<-gctx.Done()
		conn.Close()
	}()

	return g.Wait()
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	header := http.Header{}
	if c.signer != nil {
		h, err := c.signer.Headers(http.MethodGet, c.cfg.WSPath, time.Now())
		if err != nil {
			return nil, fmt.Errorf("kalshiws: %w", err)
		}
		header = h
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(dialCtx, c.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, domain.ErrAuthRequired
		}
		return nil, fmt.Errorf("kalshiws: dial: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	return conn, nil
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	c.cmdID++
	cmd := wireSubscribeCmd{
		ID:  c.cmdID,
		Cmd: "subscribe",
		Params: wireSubscribeParams{
			Channels:      []string{"ticker", "orderbook_delta", "trade"},
			MarketTickers: c.cfg.MarketTickers,
		},
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("kalshiws: ping: %w: %v", domain.ErrUpstreamClosed, err)
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- session.Event) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kalshiws: read: %w: %v", domain.ErrUpstreamClosed, err)
		}

		ev, ok := c.decode(raw)
		if !ok {
			c.logger.Debug("dropping malformed or unrecognized upstream message")
			if c.metrics != nil {
				c.metrics.RecordMalformedMessage()
			}
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Client) decode(raw []byte) (session.Event, bool) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return session.Event{}, false
	}

	now := time.Now()

	switch env.Type {
	case "ticker":
		var w wireTicker
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return session.Event{}, false
		}
		msg := domain.TickerMsg{
			MarketTicker: w.MarketTicker,
			YesBid:       w.YesBid,
			YesAsk:       w.YesAsk,
			LastPrice:    w.LastPrice,
			Volume:       w.Volume,
			Volume24h:    w.Volume24h,
			OpenInterest: w.OpenInterest,
			Ts:           tsFromMillis(w.Ts, now),
		}
		return session.Event{Ticker: &msg, Raw: raw}, true

	case "orderbook_snapshot":
		var w wireOrderbookSnapshot
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return session.Event{}, false
		}
		msg := domain.OrderbookSnapshotMsg{
			MarketTicker: w.MarketTicker,
			Yes:          toPriceLevels(levelsToPairs(w.Yes)),
			No:           toPriceLevels(levelsToPairs(w.No)),
			Ts:           tsFromMillis(w.Ts, now),
		}
		return session.Event{Snapshot: &msg, Raw: raw}, true

	case "orderbook_delta":
		var w wireOrderbookDelta
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return session.Event{}, false
		}
		side := domain.SideYes
		if w.Side == "no" {
			side = domain.SideNo
		}
		msg := domain.OrderbookDeltaMsg{
			MarketTicker: w.MarketTicker,
			Price:        w.Price,
			Delta:        w.Delta,
			Side:         side,
			Ts:           tsFromMillis(w.Ts, now),
		}
		return session.Event{Delta: &msg, Raw: raw}, true

	case "trade":
		var w wireTrade
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return session.Event{}, false
		}
		msg := domain.TradeMsg{
			MarketTicker: w.MarketTicker,
			Count:        w.Count,
			YesPrice:     w.YesPrice,
			NoPrice:      w.NoPrice,
			TakerSide:    w.TakerSide,
			Ts:           tsFromMillis(w.Ts, now),
		}
		return session.Event{Trade: &msg, Raw: raw}, true

	case "subscribed", "error":
		var w wireControl
		_ = json.Unmarshal(env.Msg, &w)
		msg := domain.ControlMsg{Type: env.Type, Message: w.Message}
		return session.Event{Control: &msg, Raw: raw}, true

	default:
		return session.Event{}, false
	}
}

func toPriceLevels(pairs []priceSize) []domain.PriceLevel {
	out := make([]domain.PriceLevel, len(pairs))
	for i, p := range pairs {
		out[i] = domain.PriceLevel{Price: p.Price, Size: p.Size}
	}
	return out
}
