// Package generation wraps a chat model with the answer-generation policy:
// per-attempt timeouts, bounded retries for transient provider faults, and a
// non-empty-answer guarantee.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/veganai/chefai-go/internal/retry"
)

// DefaultTimeout bounds a single generation attempt.
const DefaultTimeout = 60 * time.Second

// Engine produces answers from composed prompts.
type Engine struct {
	// model is the underlying chat model.
	model model.BaseChatModel

	// timeout bounds each generation attempt.
	timeout time.Duration

	// retryCfg bounds retries of transient provider faults.
	retryCfg retry.Config
}

// New creates an Engine. A zero timeout falls back to DefaultTimeout; a zero
// retry config falls back to the package defaults.
func New(m model.BaseChatModel, timeout time.Duration, retryCfg retry.Config) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("generation: chat model must not be nil")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{model: m, timeout: timeout, retryCfg: retryCfg}, nil
}

// Generate runs the model on the given messages and returns the answer text.
// Transient provider faults (timeouts, rate limits, upstream unavailability)
// are retried within the engine's budget; anything else fails immediately.
func (e *Engine) Generate(ctx context.Context, msgs []*schema.Message) (string, error) {
	var answer string
	err := retry.Do(ctx, e.retryCfg, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		out, err := e.model.Generate(attemptCtx, msgs)
		if err != nil {
			return classify(err)
		}
		if out == nil || strings.TrimSpace(out.Content) == "" {
			return retry.Permanent(fmt.Errorf("model returned an empty answer"))
		}
		answer = out.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}
	return answer, nil
}

// classify marks an error permanent unless it looks like a transient
// provider condition worth retrying.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return retry.Permanent(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return err
	}

	// Provider SDKs flatten HTTP failures into error strings; recognize the
	// usual transient shapes.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit", "429", "500", "502", "503", "504",
		"timeout", "temporarily unavailable", "overloaded", "connection refused",
	} {
		if strings.Contains(msg, marker) {
			return err
		}
	}
	return retry.Permanent(err)
}
