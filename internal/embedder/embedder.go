// Package embedder provides implementations of the rag.Embedder interface
// for converting text into dense vector embeddings. Each implementation
// talks to a different backend (OpenAI, Azure OpenAI, Ollama) via plain
// HTTP — no additional SDK dependencies are required.
//
// Every backend applies the shared retry policy: each attempt is bounded by
// a timeout, transient failures (timeouts, rate limits, 5xx, network errors)
// are retried with backoff up to the configured budget, and permanent
// failures (bad input, auth) surface immediately.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/veganai/chefai-go/internal/retry"
)

// apiError carries the HTTP status of a failed embedding API call so the
// retry layer can classify it without parsing message text.
type apiError struct {
	// status is the HTTP status code returned by the backend.
	status int
	// msg is the backend-provided error message, or "HTTP <status>".
	msg string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.msg, e.status)
}

// classify maps an attempt error onto the retry policy: transient errors are
// returned unchanged (and will be retried), permanent ones are marked so the
// retry loop stops immediately.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var api *apiError
	if errors.As(err, &api) {
		// 429 and server-side failures are worth retrying; everything else
		// in the 4xx range (bad request, auth) will not improve on retry.
		if api.status == 429 || api.status >= 500 {
			return err
		}
		return retry.Permanent(err)
	}

	// Per-attempt timeouts and network-level failures are transient.
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		// Caller abandoned the request — retrying is pointless.
		return retry.Permanent(err)
	}

	// Anything else (marshal/decode failures, malformed responses) is
	// treated as permanent: the same request would fail the same way.
	return retry.Permanent(err)
}

// embedWithRetry runs one embedding attempt function under the shared retry
// policy, bounding each attempt with the perAttempt timeout.
func embedWithRetry(ctx context.Context, cfg retry.Config, perAttempt time.Duration, attempt func(ctx context.Context) ([][]float32, error)) ([][]float32, error) {
	var out [][]float32

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		defer cancel()

		res, err := attempt(attemptCtx)
		if err != nil {
			return classify(err)
		}
		out = res
		return nil
	}

	if err := retry.Do(ctx, cfg, op); err != nil {
		return nil, err
	}
	return out, nil
}
