package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func TestClassifyGroupType(t *testing.T) {
	cases := map[string]domain.GroupType{
		"KXNFLSPREAD-26JAN04BALPIT-BAL3": domain.GroupTypeSpread,
		"KXNFLTOTAL-26JAN04BALPIT-O45":   domain.GroupTypeTotal,
		"KXNFLGAME-26JAN04BALPIT-BAL":    domain.GroupTypeWinner,
		"KXSOMETHINGELSE-XYZ":            domain.GroupTypeOther,
	}
	for ticker, want := range cases {
		if got := classifyGroupType(ticker); got != want {
			t.Errorf("classifyGroupType(%q) = %v, want %v", ticker, got, want)
		}
	}
}

func TestResolve_BuildsResultFromEventAndMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.URL.Path == "/events/NFL-GAME-1":
			json.NewEncoder(w).Encode(map[string]any{
				"event": map[string]any{"event_ticker": "NFL-GAME-1", "title": "Ravens at Steelers"},
			})
		case req.URL.Path == "/markets":
			if req.URL.Query().Get("event_ticker") != "NFL-GAME-1" {
				t.Errorf("expected event_ticker filter, got %s", req.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"markets": []map[string]any{
					{"ticker": "KXNFLSPREAD-G-BAL3", "event_ticker": "NFL-GAME-1", "title": "BAL wins by 3", "status": "open"},
					{"ticker": "KXNFLSPREAD-G-PIT3", "event_ticker": "NFL-GAME-1", "title": "PIT wins by 3", "status": "open"},
					{"ticker": "KXNFLSPREAD-G-OLD1", "event_ticker": "NFL-GAME-1", "title": "stale", "status": "closed"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := r.Resolve(context.Background(), "NFL-GAME-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GameID != "NFL-GAME-1" || res.PrimaryEvent != "Ravens at Steelers" {
		t.Fatalf("unexpected header fields: %+v", res)
	}
	if len(res.EnrichedMarkets) != 2 {
		t.Fatalf("expected 2 open markets, got %d: %+v", len(res.EnrichedMarkets), res.EnrichedMarkets)
	}
	for _, m := range res.EnrichedMarkets {
		if m.GroupType != domain.GroupTypeSpread {
			t.Errorf("ticker %s: group_type = %v, want spread", m.Ticker, m.GroupType)
		}
	}
}

func TestResolve_NoOpenMarketsIsResolverFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/events/EMPTY":
			json.NewEncoder(w).Encode(map[string]any{"event": map[string]any{"event_ticker": "EMPTY", "title": "empty"}})
		case "/markets":
			json.NewEncoder(w).Encode(map[string]any{"markets": []map[string]any{}})
		}
	}))
	defer srv.Close()

	r, _ := New(Config{BaseURL: srv.URL})
	_, err := r.Resolve(context.Background(), "EMPTY")
	if err == nil {
		t.Fatal("expected error for event with no open markets")
	}
	if !errors.Is(err, domain.ErrResolverFailed) {
		t.Fatalf("expected ErrResolverFailed, got %v", err)
	}
}
