package server

import (
	"context"
	"net/http"
	"time"
)

// probeTimeout bounds how long each dependency probe may take during a
// readiness check.
const probeTimeout = 5 * time.Second

// Pinger is a named dependency that can be probed for readiness. The vector
// index and the recipe store implement it directly.
type Pinger interface {
	// Ping returns nil when the dependency is reachable and usable.
	Ping(ctx context.Context) error
	// Name identifies the dependency in readiness responses.
	Name() string
}

// MultiPinger groups several Pingers under one name. Ping returns the first
// failure, probing in order.
type MultiPinger struct {
	// GroupName identifies the group in readiness responses.
	GroupName string
	// Pingers are probed in order.
	Pingers []Pinger
}

func (m *MultiPinger) Ping(ctx context.Context) error {
	for _, p := range m.Pingers {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiPinger) Name() string { return m.GroupName }

// readyCheck is the per-dependency result in a readiness response.
type readyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// readyResponse is the body of GET /api/ready.
type readyResponse struct {
	Status string       `json:"status"`
	Checks []readyCheck `json:"checks,omitempty"`
}

// handleReady handles GET /api/ready: probe every configured dependency and
// report per-dependency status. Any failing probe yields 503 so load
// balancers stop routing traffic here until the dependency recovers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ready"}
	status := http.StatusOK

	for _, p := range s.pingers {
		check := readyCheck{Name: p.Name(), Status: "ok"}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Ping(ctx)
		cancel()

		if err != nil {
			check.Status = "failed"
			check.Error = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			s.log.Warn("readiness probe failed", "dependency", p.Name(), "error", err)
		}

		resp.Checks = append(resp.Checks, check)
	}

	writeJSON(w, status, resp)
}
