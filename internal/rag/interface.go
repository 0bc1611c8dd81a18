// Package rag defines the interfaces for the retrieval-augmented answering
// core: vector indexing, embedding, and retrieval. Concrete implementations
// (SQLite, Qdrant, OpenAI, Ollama) satisfy these interfaces so the pipeline
// layer never depends on a specific backend.
package rag

import (
	"context"
)

// Document represents one indexed or retrieved knowledge fragment.
type Document struct {
	// ID is the stable identifier for this fragment, derived from its
	// source and ordinal position at ingestion time.
	ID string

	// Content is the raw text of the fragment.
	Content string

	// Source identifies the origin of the fragment (file path or recipe id).
	Source string

	// Metadata holds string key-value pairs carried from the source record
	// (cuisine, difficulty, prep time, cook time, chunk ordinal).
	Metadata map[string]string

	// Score is the cosine similarity assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed.
	Score float32
}

// VectorIndex is the interface for durably storing and searching fragment
// embeddings. Implementations must support concurrent Query calls from
// multiple goroutines; Upsert is expected to run out-of-band relative to
// query traffic.
type VectorIndex interface {
	// Upsert stores a batch of documents with their pre-computed embeddings.
	// The embeddings slice must be parallel to docs — embeddings[i] is the
	// vector for docs[i]. Documents whose ID already exists in the index are
	// left in place unchanged (append-only ingestion).
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Query returns the k documents most similar to the given embedding,
	// ordered by descending cosine similarity with ties broken by insertion
	// order. An empty index yields an empty slice, not an error. A vector of
	// the wrong dimensionality yields ErrDimensionMismatch.
	Query(ctx context.Context, embedding []float32, k int) ([]Document, error)

	// Size returns the number of documents currently stored.
	Size(ctx context.Context) (int, error)

	// Close releases any resources held by the index.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines, bound each
// attempt with a timeout, and retry transient backend failures within a
// configured budget before surfacing an error.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the answer pipeline to fetch
// relevant context for a question. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant documents for the query.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}
