package rag

import (
	"context"
	"errors"
	"testing"
)

// fakeEmbedder returns canned vectors or a canned error.
type fakeEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[:len(texts)], nil
}

// fakeIndex records the query it received and returns canned documents.
type fakeIndex struct {
	docs      []Document
	err       error
	lastK     int
	lastQuery []float32
}

func (f *fakeIndex) Upsert(context.Context, []Document, [][]float32) error { return nil }

func (f *fakeIndex) Query(_ context.Context, embedding []float32, k int) ([]Document, error) {
	f.lastQuery = embedding
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.docs) {
		k = len(f.docs)
	}
	return f.docs[:k], nil
}

func (f *fakeIndex) Size(context.Context) (int, error) { return len(f.docs), nil }
func (f *fakeIndex) Close() error                      { return nil }

func Test_Retriever_EmbedsThenSearches(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{vectors: [][]float32{{0.1, 0.2}}}
	idx := &fakeIndex{docs: []Document{{ID: "a", Content: "chickpea curry"}}}

	r, err := NewRetriever(emb, idx, 0)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "how do I cook chickpeas?", 1)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "a" {
		t.Errorf("want doc a, got %+v", docs)
	}
	if idx.lastK != 1 {
		t.Errorf("want k=1 passed to index, got %d", idx.lastK)
	}
	if len(idx.lastQuery) != 2 {
		t.Errorf("want query vector forwarded to index, got %v", idx.lastQuery)
	}
}

func Test_Retriever_DefaultTopKApplied(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{vectors: [][]float32{{1}}}
	idx := &fakeIndex{docs: []Document{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	r, err := NewRetriever(emb, idx, 0)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if idx.lastK != DefaultTopK {
		t.Errorf("want default k=%d, got %d", DefaultTopK, idx.lastK)
	}
	if len(docs) != DefaultTopK {
		t.Errorf("want %d docs, got %d", DefaultTopK, len(docs))
	}
}

func Test_Retriever_EmbeddingErrorPropagates(t *testing.T) {
	t.Parallel()

	embErr := errors.New("embedding service timeout")
	emb := &fakeEmbedder{err: embErr}
	idx := &fakeIndex{docs: []Document{{ID: "a"}}}

	r, err := NewRetriever(emb, idx, 2)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "q", 2)
	if !errors.Is(err, embErr) {
		t.Fatalf("want embedding error propagated, got %v", err)
	}
	if docs != nil {
		t.Errorf("want no partial results on embedding failure, got %v", docs)
	}
	if idx.lastQuery != nil {
		t.Error("index must not be queried when embedding fails")
	}
}

func Test_Retriever_NilDependenciesRejected(t *testing.T) {
	t.Parallel()

	if _, err := NewRetriever(nil, &fakeIndex{}, 1); err == nil {
		t.Error("want error for nil embedder")
	}
	if _, err := NewRetriever(&fakeEmbedder{}, nil, 1); err == nil {
		t.Error("want error for nil index")
	}
}
