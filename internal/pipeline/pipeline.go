// Package pipeline orchestrates a question through the answer stages:
// embed the question, search the index, compose the prompt, generate the
// answer. Each stage is timed; a failure carries the stage it happened in.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veganai/chefai-go/internal/composer"
	"github.com/veganai/chefai-go/internal/logging"
	"github.com/veganai/chefai-go/internal/rag"
)

// Stage identifies where a request is in its lifecycle.
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageEmbedding  Stage = "EMBEDDING"
	StageSearching  Stage = "SEARCHING"
	StageComposing  Stage = "COMPOSING"
	StageGenerating Stage = "GENERATING"
	StageCompleted  Stage = "COMPLETED"
)

// Class maps a stage to its error classification.
func (s Stage) Class() string {
	switch s {
	case StageReceived:
		return "configuration"
	case StageEmbedding:
		return "embedding"
	case StageSearching:
		return "retrieval"
	case StageComposing, StageGenerating:
		return "generation"
	default:
		return "internal"
	}
}

// StageError reports a pipeline failure together with the stage that failed
// and how long the request had been running.
type StageError struct {
	// Stage is where the failure happened.
	Stage Stage

	// Elapsed is the total request time up to the failure.
	Elapsed time.Duration

	// Err is the underlying failure.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Timing records per-stage latency for one request. Composition is pure
// string work and is folded into Total.
type Timing struct {
	// Embedding is the time spent embedding the question.
	Embedding time.Duration

	// Search is the time spent querying the vector index.
	Search time.Duration

	// Generation is the time spent in the generation engine, retries
	// included.
	Generation time.Duration

	// Total is wall time from receipt to completion.
	Total time.Duration
}

// Answer is a completed response.
type Answer struct {
	// Answer is the generated text.
	Answer string

	// Sources are the retrieved documents the answer was grounded on,
	// in descending similarity order.
	Sources []rag.Document

	// Timing is the per-stage latency breakdown.
	Timing Timing
}

// Generator produces an answer from a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt *composer.Prompt) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt *composer.Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt *composer.Prompt) (string, error) {
	return f(ctx, prompt)
}

// retriever is the slice of rag.DefaultRetriever the pipeline needs: the
// embed and search halves separately, so each stage gets its own timing.
type retriever interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	Search(ctx context.Context, embedding []float32, topK int) ([]rag.Document, error)
}

// Config assembles a Pipeline.
type Config struct {
	// Retriever resolves questions to context documents.
	Retriever *rag.DefaultRetriever

	// Composer renders prompts.
	Composer *composer.Composer

	// Generator produces the final answer.
	Generator Generator

	// TopK is how many documents to retrieve per question. Zero means
	// rag.DefaultTopK.
	TopK int
}

// Pipeline answers questions.
type Pipeline struct {
	retriever retriever
	composer  *composer.Composer
	generator Generator
	topK      int
}

// New validates the config and builds a Pipeline.
func New(cfg *Config) (*Pipeline, error) {
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("pipeline: retriever must not be nil")
	}
	if cfg.Composer == nil {
		return nil, fmt.Errorf("pipeline: composer must not be nil")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("pipeline: generator must not be nil")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}
	return &Pipeline{
		retriever: cfg.Retriever,
		composer:  cfg.Composer,
		generator: cfg.Generator,
		topK:      topK,
	}, nil
}

// Ask runs one question through every stage and returns the answer with its
// timing breakdown. On failure it returns a *StageError naming the stage
// that failed; no partial answer is ever returned.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return nil, &StageError{
			Stage:   StageReceived,
			Elapsed: time.Since(start),
			Err:     fmt.Errorf("question must not be empty"),
		}
	}

	logger.Debug("question received", "top_k", p.topK)

	embedStart := time.Now()
	vec, err := p.retriever.EmbedQuery(ctx, question)
	embedDur := time.Since(embedStart)
	if err != nil {
		return nil, p.fail(logger, StageEmbedding, start, err)
	}

	searchStart := time.Now()
	docs, err := p.retriever.Search(ctx, vec, p.topK)
	searchDur := time.Since(searchStart)
	if err != nil {
		return nil, p.fail(logger, StageSearching, start, err)
	}

	prompt := p.composer.Compose(docs, question)

	genStart := time.Now()
	text, err := p.generator.Generate(ctx, prompt)
	genDur := time.Since(genStart)
	if err != nil {
		return nil, p.fail(logger, StageGenerating, start, err)
	}

	total := time.Since(start)
	logger.Info("question answered",
		"sources", len(docs),
		"embedding_ms", embedDur.Milliseconds(),
		"search_ms", searchDur.Milliseconds(),
		"generation_ms", genDur.Milliseconds(),
		"total_ms", total.Milliseconds())

	return &Answer{
		Answer:  text,
		Sources: docs,
		Timing: Timing{
			Embedding:  embedDur,
			Search:     searchDur,
			Generation: genDur,
			Total:      total,
		},
	}, nil
}

// fail logs and wraps a stage failure.
func (p *Pipeline) fail(logger *slog.Logger, stage Stage, start time.Time, err error) *StageError {
	elapsed := time.Since(start)
	logger.Error("stage failed",
		"stage", string(stage),
		"class", stage.Class(),
		"elapsed_ms", elapsed.Milliseconds(),
		"error", err)
	return &StageError{Stage: stage, Elapsed: elapsed, Err: err}
}
