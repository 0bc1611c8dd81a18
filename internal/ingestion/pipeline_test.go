package ingestion

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veganai/chefai-go/internal/index"
	"github.com/veganai/chefai-go/internal/rag"
	"github.com/veganai/chefai-go/internal/recipes"
)

const testDims = 16

// hashEmbedder embeds deterministically by hashing words into buckets.
type hashEmbedder struct {
	calls int
	fail  error
}

func (e *hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, testDims)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(w))
			vec[h.Sum32()%testDims]++
		}
		out[i] = vec
	}
	return out, nil
}

func newTestIndex(t *testing.T) rag.VectorIndex {
	t.Helper()
	idx, err := index.OpenSQLite(&index.SQLiteConfig{
		Path:       filepath.Join(t.TempDir(), "index.db"),
		Model:      "word-hash",
		Dimensions: testDims,
	})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func Test_Ingest_StoresRetrievableChunks(t *testing.T) {
	t.Parallel()

	emb := &hashEmbedder{}
	idx := newTestIndex(t)
	p, err := NewPipeline(emb, idx, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	ctx := context.Background()
	n, err := p.Ingest(ctx, []Source{
		{Name: "pasta.txt", Text: "Boil water. Add pasta. Cook 10 minutes."},
	}, nil)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if n == 0 {
		t.Fatal("Ingest() stored 0 chunks")
	}

	size, err := idx.Size(ctx)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != n {
		t.Errorf("index size = %d, want %d", size, n)
	}

	// The question shares words with the ingested text, so the chunk must
	// come back as the top hit.
	vecs, err := emb.Embed(ctx, []string{"how long do i cook the pasta"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	docs, err := idx.Query(ctx, vecs[0], 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Content, "10 minutes") {
		t.Errorf("retrieved %+v, want the pasta chunk", docs)
	}
	if docs[0].Source != "pasta.txt" {
		t.Errorf("Source = %q", docs[0].Source)
	}
}

func Test_Ingest_Idempotent(t *testing.T) {
	t.Parallel()

	emb := &hashEmbedder{}
	idx := newTestIndex(t)
	p, _ := NewPipeline(emb, idx, nil)
	ctx := context.Background()

	src := []Source{{Name: "doc.txt", Text: "Same document, same chunk IDs."}}
	if _, err := p.Ingest(ctx, src, nil); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	sizeBefore, _ := idx.Size(ctx)

	if _, err := p.Ingest(ctx, src, nil); err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	sizeAfter, _ := idx.Size(ctx)

	if sizeAfter != sizeBefore {
		t.Errorf("re-ingestion grew index from %d to %d", sizeBefore, sizeAfter)
	}
}

func Test_Ingest_EmbeddingFailureStops(t *testing.T) {
	t.Parallel()

	emb := &hashEmbedder{fail: errors.New("api down")}
	idx := newTestIndex(t)
	p, _ := NewPipeline(emb, idx, nil)
	ctx := context.Background()

	n, err := p.Ingest(ctx, []Source{{Name: "doc.txt", Text: "some text"}}, nil)
	if err == nil {
		t.Fatal("Ingest() succeeded, want error")
	}
	if n != 0 {
		t.Errorf("Ingest() reported %d chunks stored on failure", n)
	}
	size, _ := idx.Size(ctx)
	if size != 0 {
		t.Errorf("index size = %d after failed ingest, want 0", size)
	}
}

func Test_IngestFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Soak the cashews overnight."), 0o600); err != nil {
		t.Fatal(err)
	}

	emb := &hashEmbedder{}
	idx := newTestIndex(t)
	p, _ := NewPipeline(emb, idx, nil)

	var msgs []string
	n, err := p.IngestFiles(context.Background(), []string{path}, func(m string) { msgs = append(msgs, m) })
	if err != nil {
		t.Fatalf("IngestFiles() error = %v", err)
	}
	if n != 1 {
		t.Errorf("IngestFiles() = %d chunks, want 1", n)
	}
	if len(msgs) == 0 {
		t.Error("no progress messages reported")
	}
}

func Test_IngestRecipes(t *testing.T) {
	t.Parallel()

	store, err := recipes.Open(filepath.Join(t.TempDir(), "recipes.db"), recipes.DedupeTitle)
	if err != nil {
		t.Fatalf("recipes.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	r := &recipes.Recipe{
		Title:        "Vegan Chickpea Curry",
		Ingredients:  "chickpeas, onion, tomatoes",
		Instructions: "Cook everything. Simmer for 15 minutes.",
		Metadata:     map[string]string{"cuisine": "Indian"},
	}
	if _, err := store.Add(ctx, r); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	emb := &hashEmbedder{}
	idx := newTestIndex(t)
	p, _ := NewPipeline(emb, idx, nil)

	n, err := p.IngestRecipes(ctx, store, nil)
	if err != nil {
		t.Fatalf("IngestRecipes() error = %v", err)
	}
	if n == 0 {
		t.Fatal("IngestRecipes() stored 0 chunks")
	}

	vecs, _ := emb.Embed(ctx, []string{"chickpea curry"})
	docs, err := idx.Query(ctx, vecs[0], 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatal("no documents retrieved")
	}
	if !strings.Contains(docs[0].Content, "RECIPE: Vegan Chickpea Curry") {
		t.Errorf("chunk missing rendered recipe header:\n%s", docs[0].Content)
	}
	if docs[0].Metadata["title"] != "Vegan Chickpea Curry" || docs[0].Metadata["cuisine"] != "Indian" {
		t.Errorf("chunk metadata = %v", docs[0].Metadata)
	}
}

func Test_Ingest_SkipsEmptySource(t *testing.T) {
	t.Parallel()

	emb := &hashEmbedder{}
	idx := newTestIndex(t)
	p, _ := NewPipeline(emb, idx, nil)

	n, err := p.Ingest(context.Background(), []Source{{Name: "empty.txt", Text: "   "}}, nil)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Ingest() = %d chunks for empty source, want 0", n)
	}
	if emb.calls != 0 {
		t.Error("embedder called for empty source")
	}
}
