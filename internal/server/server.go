// Package server implements the HTTP server that exposes the answer pipeline
// via a small JSON API. The server is started by the `chefai serve` CLI
// command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veganai/chefai-go/internal/logging"
	"github.com/veganai/chefai-go/internal/pipeline"
	"github.com/veganai/chefai-go/internal/rag"
)

// sourcePreviewLen is how many characters of each retrieved fragment are
// echoed back in /api/ask responses.
const sourcePreviewLen = 100

// New constructs a Server from the provided pipeline and config.
func New(p asker, cfg *Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("server: pipeline must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Generation with retries can take a while.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	registry := cfg.MetricsRegistry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		asker:   p,
		cfg:     cfg,
		log:     log,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(registry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: CHEFAI_API_KEY not set — API authentication disabled")
	}

	protected := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.instrument(name, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/ask", protected("ask", s.handleAsk))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleAsk handles POST /api/ask requests: run the question through the
// pipeline and return the answer with its sources and timing.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.askRequestsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ans, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		outcome := "error"
		resp := errorResponse{Error: err.Error()}
		status := http.StatusBadGateway

		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			resp.Stage = string(stageErr.Stage)
			resp.Class = stageErr.Stage.Class()
			if stageErr.Stage == pipeline.StageReceived {
				status = http.StatusBadRequest
			}
			s.metrics.askStageDuration.WithLabelValues(string(stageErr.Stage)).Observe(stageErr.Elapsed.Seconds())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			status = http.StatusGatewayTimeout
		}

		s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		writeJSON(w, status, resp)
		return
	}

	s.metrics.askRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.askDurationSeconds.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	s.observeStages(&ans.Timing)

	writeJSON(w, http.StatusOK, askResponse{
		Answer:  ans.Answer,
		Sources: sourcePreviews(ans.Sources),
		Timing: askTiming{
			EmbeddingSeconds:  ans.Timing.Embedding.Seconds(),
			SearchSeconds:     ans.Timing.Search.Seconds(),
			GenerationSeconds: ans.Timing.Generation.Seconds(),
			TotalSeconds:      ans.Timing.Total.Seconds(),
		},
	})
}

// observeStages records the per-stage latency histogram for a completed
// request.
func (s *Server) observeStages(t *pipeline.Timing) {
	s.metrics.askStageDuration.WithLabelValues(string(pipeline.StageEmbedding)).Observe(t.Embedding.Seconds())
	s.metrics.askStageDuration.WithLabelValues(string(pipeline.StageSearching)).Observe(t.Search.Seconds())
	s.metrics.askStageDuration.WithLabelValues(string(pipeline.StageGenerating)).Observe(t.Generation.Seconds())
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sourcePreviews truncates each retrieved fragment for display.
func sourcePreviews(docs []rag.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, truncate(d.Content, sourcePreviewLen))
	}
	return out
}

// truncate cuts s to at most n runes, appending "..." when shortened.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
