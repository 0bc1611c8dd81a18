package embedder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veganai/chefai-go/internal/retry"
)

// fastRetry keeps test backoff delays negligible.
var fastRetry = retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

// embedAPIStub is a minimal OpenAI embeddings endpoint. Each call pops the
// next status from statuses; a 200 returns one vector per input text.
func embedAPIStub(t *testing.T, statuses []int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		status := statuses[len(statuses)-1]
		if int(n) <= len(statuses) {
			status = statuses[n-1]
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"backend says no"}}`))
			return
		}

		var req openaiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("stub: decode request: %v", err)
		}
		type datum struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			data[i] = datum{Embedding: []float32{1, 0, 0}, Index: i}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func newTestEmbedder(url string) *OpenAIEmbedder {
	return NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "text-embedding-3-small",
		Timeout: time.Second,
		Retry:   fastRetry,
	})
}

func Test_OpenAIEmbedder_BatchOrderPreserved(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := embedAPIStub(t, []int{http.StatusOK}, &calls)
	t.Cleanup(srv.Close)

	e := newTestEmbedder(srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("want 3 vectors, got %d", len(vecs))
	}
	for i, v := range vecs {
		if len(v) != 3 {
			t.Errorf("vector %d has length %d, want 3", i, len(v))
		}
	}
	if calls.Load() != 1 {
		t.Errorf("want 1 API call, got %d", calls.Load())
	}
}

func Test_OpenAIEmbedder_RateLimitRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := embedAPIStub(t, []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK}, &calls)
	t.Cleanup(srv.Close)

	e := newTestEmbedder(srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("embed after transient failures: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("want 1 vector, got %d", len(vecs))
	}
	if calls.Load() != 3 {
		t.Errorf("want 3 attempts (2 rate-limited + 1 ok), got %d", calls.Load())
	}
}

func Test_OpenAIEmbedder_ServerErrorExhaustsBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := embedAPIStub(t, []int{http.StatusInternalServerError}, &calls)
	t.Cleanup(srv.Close)

	e := newTestEmbedder(srv.URL)
	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("want error after exhausting retry budget")
	}
	if calls.Load() != 3 {
		t.Errorf("want 3 attempts, got %d", calls.Load())
	}
}

func Test_OpenAIEmbedder_AuthFailureNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := embedAPIStub(t, []int{http.StatusUnauthorized}, &calls)
	t.Cleanup(srv.Close)

	e := newTestEmbedder(srv.URL)
	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("want error for auth failure")
	}
	if calls.Load() != 1 {
		t.Errorf("auth failure must not be retried: want 1 attempt, got %d", calls.Load())
	}
}

func Test_OpenAIEmbedder_TimeoutRetriedThenSurfaced(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Drain the body so the server starts its background read and can
		// cancel r.Context() when the client gives up; otherwise srv.Close
		// deadlocks waiting on this handler.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done() // hold until the per-attempt deadline fires
	}))
	t.Cleanup(srv.Close)

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "text-embedding-3-small",
		Timeout: 20 * time.Millisecond,
		Retry:   fastRetry,
	})

	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("want timeout error")
	}
	if calls.Load() != 3 {
		t.Errorf("timeouts are transient: want 3 attempts, got %d", calls.Load())
	}
}
