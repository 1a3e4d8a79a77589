// Package ws implements the subscriber transport (spec §6, "Subscriber
// snapshot stream (exposed)"): a single WebSocket connection per session
// that receives the tagged-record stream a session.Orchestrator produces.
//
// Grounded on alanyoungcy-polymarketbot's internal/server/ws/hub.go
// writePump/readPump/ping-pong skeleton, simplified from the teacher's
// many-client Redis-backed fan-out hub down to exactly one subscriber per
// session, matching this spec's "one subscribing client per session" model.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Subscriber is the session.Sink implementation backing one WebSocket
// connection. Write failures (the connection going away mid-session) call
// cancel, which the caller wires to the session's context so the session
// treats it as a cancellation (spec §7 "Subscriber gone / send fails:
// treat as session cancel").
type Subscriber struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
	cancel context.CancelFunc

	done chan struct{}
}

// NewSubscriber upgrades the request and starts the read/write pumps.
// cancel is called once, either when the connection closes or a write
// fails.
func NewSubscriber(w http.ResponseWriter, r *http.Request, logger *slog.Logger, cancel context.CancelFunc) (*Subscriber, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	s := &Subscriber{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.writePump()
	go s.readPump()

	return s, nil
}

// Done is closed once the subscriber's connection has ended.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) push(msgType string, payload any) {
	data, err := json.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		s.logger.Error("ws: marshal envelope failed", slog.String("type", msgType), slog.String("error", err.Error()))
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn("ws: dropping message, subscriber send buffer full", slog.String("type", msgType))
	}
}

// Status implements session.Sink.
func (s *Subscriber) Status(status domain.SessionStatus, message string) {
	s.push("status", statusPayload{Status: status, Message: message})
}

// Meta implements session.Sink.
func (s *Subscriber) Meta(event, gameID string, markets, resolvedEvents []string) {
	s.push("meta", metaPayload{Event: event, GameID: gameID, Markets: markets, ResolvedEvents: resolvedEvents})
}

// Ticker implements session.Sink.
func (s *Subscriber) Ticker(updates map[string]domain.TickerMsg) {
	data := make(map[string]tickerDTO, len(updates))
	for k, v := range updates {
		data[k] = newTickerDTO(v)
	}
	s.push("ticker", tickerPayload{Data: data})
}

// Raw implements session.Sink.
func (s *Subscriber) Raw(messages [][]byte) {
	s.push("raw", rawPayload{Messages: messages})
}

// Stats implements session.Sink.
func (s *Subscriber) Stats(ts time.Time, markets map[string]domain.EnrichedStats) {
	data := make(map[string]enrichedStatsDTO, len(markets))
	for k, v := range markets {
		data[k] = newEnrichedStatsDTO(v)
	}
	s.push("stats", statsPayload{Ts: ts.UnixMilli(), Markets: data})
}

// Signals implements session.Sink.
func (s *Subscriber) Signals(ts time.Time, signals []domain.Signal, ladders []domain.Ladder) {
	sigs := make([]signalDTO, len(signals))
	for i, sg := range signals {
		sigs[i] = newSignalDTO(sg)
	}
	lads := make([]ladderDTO, len(ladders))
	for i, l := range ladders {
		lads[i] = newLadderDTO(l)
	}
	s.push("signals", signalsPayload{Ts: ts.UnixMilli(), Signals: sigs, Ladders: lads})
}

// Error implements session.Sink.
func (s *Subscriber) Error(message string, requiresAuth bool) {
	s.push("error", errorPayload{Message: message, RequiresAuth: requiresAuth})
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("ws: write failed, cancelling session", slog.String("error", err.Error()))
				s.cancel()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.cancel()
				return
			}
		}
	}
}

// readPump drains (and discards) inbound frames purely to process pong
// keepalives and detect the connection closing; the subscriber stream is
// one-way per spec §6.
func (s *Subscriber) readPump() {
	defer func() {
		close(s.done)
		s.cancel()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
