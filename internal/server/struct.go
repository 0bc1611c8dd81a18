package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veganai/chefai-go/internal/pipeline"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. It must
	// cover a full generation round-trip including retries.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metrics. If nil a
	// fresh registry is created and served at GET /metrics.
	MetricsRegistry *prometheus.Registry
}

// asker is the interface handleAsk calls to answer a question.
// *pipeline.Pipeline satisfies it; tests inject a fake.
type asker interface {
	Ask(ctx context.Context, question string) (*pipeline.Answer, error)
}

// Server is the HTTP server that exposes the answer pipeline.
type Server struct {
	// asker answers questions; the pipeline in production, a fake in tests.
	asker asker
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's cooking question.
	Question string `json:"question"`
}

// askTiming is the per-stage latency breakdown in an askResponse.
type askTiming struct {
	// EmbeddingSeconds is the time spent embedding the question.
	EmbeddingSeconds float64 `json:"embedding_seconds"`
	// SearchSeconds is the time spent querying the vector index.
	SearchSeconds float64 `json:"search_seconds"`
	// GenerationSeconds is the time spent generating the answer.
	GenerationSeconds float64 `json:"generation_seconds"`
	// TotalSeconds is wall time from receipt to completion.
	TotalSeconds float64 `json:"total_seconds"`
}

// askResponse is the JSON response for POST /api/ask.
type askResponse struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources are the retrieved fragments the answer was grounded on,
	// truncated for display.
	Sources []string `json:"sources"`
	// Timing is the per-stage latency breakdown.
	Timing askTiming `json:"timing"`
}

// errorResponse is the JSON body for failed /api/ask requests.
type errorResponse struct {
	// Error is the human-readable failure message.
	Error string `json:"error"`
	// Stage is the pipeline stage that failed, when known.
	Stage string `json:"stage,omitempty"`
	// Class is the error classification (configuration, embedding,
	// retrieval, generation).
	Class string `json:"class,omitempty"`
}
