package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/veganai/chefai-go/internal/composer"
	"github.com/veganai/chefai-go/internal/embedder"
	"github.com/veganai/chefai-go/internal/generation"
	"github.com/veganai/chefai-go/internal/index"
	"github.com/veganai/chefai-go/internal/ingestion"
	"github.com/veganai/chefai-go/internal/pipeline"
	"github.com/veganai/chefai-go/internal/provider"
	"github.com/veganai/chefai-go/internal/rag"
	"github.com/veganai/chefai-go/internal/recipes"
)

// timePrecision is the rounding applied to durations printed by the CLI.
const timePrecision = time.Millisecond

// embeddingBackend resolves the embedding backend name the same way the
// embedder factory does: EMBEDDING_PROVIDER first, then MODEL_PROVIDER,
// then openai.
func embeddingBackend() string {
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		return v
	}
	return getEnvOrDefault("MODEL_PROVIDER", "openai")
}

// buildIndex opens the configured vector index backend. The index is tied to
// the resolved embedding model so vectors from different models never mix.
func buildIndex(ctx context.Context) (rag.VectorIndex, error) {
	backend := embeddingBackend()

	return index.New(ctx, &index.Config{
		Backend:    os.Getenv("INDEX_BACKEND"),
		Path:       os.Getenv("INDEX_PATH"),
		Model:      embedder.ModelName(backend),
		Dimensions: embedder.DefaultDimensions(backend),
		Qdrant: index.QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "chefai"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		},
	})
}

// buildRetriever assembles the embedder, vector index, and retriever. The
// returned index must be closed by the caller.
func buildRetriever(ctx context.Context) (*rag.DefaultRetriever, rag.VectorIndex, error) {
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, err
	}

	idx, err := buildIndex(ctx)
	if err != nil {
		return nil, nil, err
	}

	retriever, err := rag.NewRetriever(emb, idx, getEnvInt("RETRIEVAL_TOP_K", 0))
	if err != nil {
		_ = idx.Close()
		return nil, nil, err
	}
	return retriever, idx, nil
}

// buildIngestionPipeline assembles the embedder, vector index, and ingestion
// pipeline with chunk sizes from the environment. The returned index must be
// closed by the caller.
func buildIngestionPipeline(ctx context.Context) (rag.VectorIndex, *ingestion.Pipeline, error) {
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, err
	}

	idx, err := buildIndex(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := ingestion.NewPipeline(emb, idx, &ingestion.Config{
		ChunkSize:          getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 0),
		RecipeChunkSize:    getEnvInt("RECIPE_CHUNK_SIZE", 0),
		RecipeChunkOverlap: getEnvInt("RECIPE_CHUNK_OVERLAP", 0),
	})
	if err != nil {
		_ = idx.Close()
		return nil, nil, err
	}
	return idx, p, nil
}

// buildGenerator constructs the chat model from the environment and wraps it
// in the generation engine, adapted to the pipeline's Generator interface.
func buildGenerator(ctx context.Context) (pipeline.Generator, error) {
	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := generation.New(chatModel, 0, embedder.RetryFromEnv())
	if err != nil {
		return nil, err
	}

	return pipeline.GeneratorFunc(func(ctx context.Context, prompt *composer.Prompt) (string, error) {
		return engine.Generate(ctx, prompt.Messages())
	}), nil
}

// openRecipeStore opens the recipe database at RECIPES_DB (default:
// ~/.chefai/recipes.db) with the dedupe mode from RECIPES_DEDUPE.
func openRecipeStore() (*recipes.Store, error) {
	path := os.Getenv("RECIPES_DB")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("commands: could not resolve home directory: %w", err)
		}
		dir := filepath.Join(home, ".chefai")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("commands: could not create %s: %w", dir, err)
		}
		path = filepath.Join(dir, "recipes.db")
	}

	dedupe, err := recipes.ParseDedupeKey(os.Getenv("RECIPES_DEDUPE"))
	if err != nil {
		return nil, err
	}
	return recipes.Open(path, dedupe)
}

// preview cuts s to at most n runes for terminal display, appending "..."
// when shortened.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// getEnvOrDefault returns the environment variable value or fallback if unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the environment variable parsed as an int, or fallback
// if unset or unparseable.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
