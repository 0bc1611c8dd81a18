package rag

import (
	"context"
	"fmt"
)

// DefaultTopK is the number of fragments retrieved per question when the
// caller does not specify one.
const DefaultTopK = 2

// DefaultRetriever implements the Retriever interface by combining an
// Embedder and a VectorIndex. It embeds the query at retrieval time and
// delegates similarity search to the index.
//
// The two halves are also exposed separately (EmbedQuery, Search) so the
// answer pipeline can time the embedding and search stages independently.
type DefaultRetriever struct {
	// embedder converts query text to a dense vector.
	embedder Embedder

	// index performs the vector similarity search.
	index VectorIndex

	// defaultTopK is the number of results to return when the caller passes 0.
	defaultTopK int
}

// NewRetriever constructs a DefaultRetriever from the given Embedder and
// VectorIndex. defaultTopK sets the fallback result count when Retrieve is
// called with topK=0.
func NewRetriever(embedder Embedder, index VectorIndex, defaultTopK int) (*DefaultRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("rag: index must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &DefaultRetriever{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
	}, nil
}

// EmbedQuery converts the query text into its embedding vector.
// An embedder failure propagates unchanged — no partial results.
func (r *DefaultRetriever) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("rag: embedder returned empty result for query")
	}
	return embeddings[0], nil
}

// Search returns the top-k documents most similar to the given embedding.
// If topK is 0 the default configured at construction time is used; topK
// larger than the index size returns all available documents.
func (r *DefaultRetriever) Search(ctx context.Context, embedding []float32, topK int) ([]Document, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}
	docs, err := r.index.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}
	return docs, nil
}

// Retrieve embeds the query and returns the top-k most relevant documents.
func (r *DefaultRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	embedding, err := r.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, embedding, topK)
}
