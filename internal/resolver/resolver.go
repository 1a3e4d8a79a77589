// Package resolver implements the REST resolver (spec §6, "Resolver
// (consumed)"): resolve(event_ticker) -> {gameId, primaryEvent,
// enrichedMarkets[], resolvedEvents[]}. It is the session's only REST
// collaborator — everything after resolution flows over the upstream feed
// transport instead.
//
// Grounded on alanyoungcy-polymarketbot's internal/platform/kalshi/client.go
// (doSignedRequest/signRequest/checkStatus), extended with an event-scoped
// markets listing and a thin classifier that turns a market's series
// ticker into the group_type the parser needs as context.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
	"github.com/alanyoungcy/analyticscore/internal/feed/kalshiws"
)

// Config carries the REST resolver's connection parameters.
type Config struct {
	BaseURL       string // e.g. "https://api.elections.kalshi.com/trade-api/v2"
	APIKeyID      string
	PrivateKeyPEM []byte
	HTTPTimeout   time.Duration
}

// DefaultConfig returns the teacher's REST client timeout.
func DefaultConfig() Config {
	return Config{HTTPTimeout: 30 * time.Second}
}

// Resolver turns an event ticker into the session's starting market set.
type Resolver struct {
	cfg        Config
	signer     *kalshiws.Signer
	httpClient *http.Client
}

// New constructs a Resolver. If cfg.PrivateKeyPEM is set, requests are
// signed per spec §6; otherwise the resolver calls the REST API
// unauthenticated (some deployments expose market listings publicly).
func New(cfg Config) (*Resolver, error) {
	r := &Resolver{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
	if len(cfg.PrivateKeyPEM) > 0 {
		s := kalshiws.NewSigner(cfg.APIKeyID)
		if err := s.SetRSAPrivateKey(cfg.PrivateKeyPEM); err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
		r.signer = s
	}
	return r, nil
}

// marketDTO is the subset of the REST API's market representation the
// resolver needs. Field names mirror the teacher's KalshiMarket.
type marketDTO struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
}

type eventDTO struct {
	EventTicker string      `json:"event_ticker"`
	Title       string      `json:"title"`
	Markets     []marketDTO `json:"markets"`
}

// Resolve fetches the event and its open markets, classifies each market's
// group_type from its ticker, and returns the session's starting
// ResolveResult. Returns domain.ErrResolverFailed if the event has no open
// markets, domain.ErrNotFound if the event itself doesn't exist, and
// domain.ErrAuthRequired on a 401/403.
func (r *Resolver) Resolve(ctx context.Context, eventTicker string) (domain.ResolveResult, error) {
	ev, err := r.getEvent(ctx, eventTicker)
	if err != nil {
		return domain.ResolveResult{}, err
	}

	markets, err := r.getMarketsForEvent(ctx, eventTicker)
	if err != nil {
		return domain.ResolveResult{}, err
	}

	enriched := make([]domain.ResolvedMarket, 0, len(markets))
	for _, m := range markets {
		if m.Status != "" && m.Status != "open" {
			continue
		}
		enriched = append(enriched, domain.ResolvedMarket{
			Ticker:      m.Ticker,
			Title:       m.Title,
			EventTicker: m.EventTicker,
			GroupType:   classifyGroupType(m.Ticker),
		})
	}

	if len(enriched) == 0 {
		return domain.ResolveResult{}, fmt.Errorf("resolver: event %s: %w", eventTicker, domain.ErrResolverFailed)
	}

	return domain.ResolveResult{
		GameID:          eventTicker,
		PrimaryEvent:    ev.Title,
		EnrichedMarkets: enriched,
		ResolvedEvents:  []string{eventTicker},
	}, nil
}

// classifyGroupType derives a market's group_type from its series prefix
// (the ticker segment before the first '-'), e.g. "KXNFLSPREAD-..." ->
// spread, "KXNFLTOTAL-..." -> total. Anything else is "winner" when the
// series looks like a head-to-head game market, else "other" (spec §3:
// group_type in {winner, spread, total, other}).
func classifyGroupType(ticker string) domain.GroupType {
	series := ticker
	if i := strings.Index(ticker, "-"); i >= 0 {
		series = ticker[:i]
	}
	series = strings.ToUpper(series)

	switch {
	case strings.Contains(series, "SPREAD"):
		return domain.GroupTypeSpread
	case strings.Contains(series, "TOTAL"):
		return domain.GroupTypeTotal
	case strings.Contains(series, "GAME"), strings.Contains(series, "WIN"):
		return domain.GroupTypeWinner
	default:
		return domain.GroupTypeOther
	}
}

func (r *Resolver) getEvent(ctx context.Context, eventTicker string) (eventDTO, error) {
	path := "/events/" + url.PathEscape(eventTicker)
	body, err := r.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return eventDTO{}, err
	}

	var resp struct {
		Event eventDTO `json:"event"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return eventDTO{}, fmt.Errorf("resolver: decode event: %w", err)
	}
	return resp.Event, nil
}

func (r *Resolver) getMarketsForEvent(ctx context.Context, eventTicker string) ([]marketDTO, error) {
	params := url.Values{}
	params.Set("event_ticker", eventTicker)
	params.Set("status", "open")

	path := "/markets?" + params.Encode()
	body, err := r.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Markets []marketDTO `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("resolver: decode markets: %w", err)
	}
	return resp.Markets, nil
}

// doRequest signs and sends a request against path (which may carry a
// query string). It signs the full path including the query string, the
// same message the teacher's signRequest builds for its own paginated
// GetMarkets calls.
func (r *Resolver) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("resolver: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if r.signer != nil {
		h, err := r.signer.Headers(method, path, time.Now())
		if err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
		for k, v := range h {
			req.Header[k] = v
		}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("resolver: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("resolver: %w", domain.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("resolver: %w", domain.ErrAuthRequired)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("resolver: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

