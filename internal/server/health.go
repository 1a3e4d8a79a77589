package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Readiness backs /healthz: ready once the resolver has succeeded and the
// upstream feed is connected (SPEC_FULL.md §12, grounded in the teacher's
// internal/server/handler/health.go but extended from a trivial liveness
// check into an actual readiness gate).
type Readiness struct {
	resolved atomic.Bool
	feedUp   atomic.Bool
}

func (r *Readiness) SetResolved(v bool)      { r.resolved.Store(v) }
func (r *Readiness) SetFeedConnected(v bool) { r.feedUp.Store(v) }

func (r *Readiness) ready() bool {
	return r.resolved.Load() && r.feedUp.Load()
}

func (r *Readiness) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		if !r.ready() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"resolved":       r.resolved.Load(),
			"feed_connected": r.feedUp.Load(),
		})
	}
}
