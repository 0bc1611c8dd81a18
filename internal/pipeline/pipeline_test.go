package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/veganai/chefai-go/internal/chunker"
	"github.com/veganai/chefai-go/internal/composer"
	"github.com/veganai/chefai-go/internal/index"
	"github.com/veganai/chefai-go/internal/rag"
)

// wordEmbedder is a deterministic embedder: each word hashes into a bucket,
// so texts sharing words get similar vectors. Good enough for retrieval
// ranking in tests without any model.
type wordEmbedder struct {
	calls int
	fail  error
	slow  time.Duration
}

const testDims = 32

func (e *wordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	if e.slow > 0 {
		select {
		case <-time.After(e.slow):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, testDims)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(w, ".,!?")))
			vec[h.Sum32()%testDims]++
		}
		out[i] = vec
	}
	return out, nil
}

// failingIndex injects a search failure.
type failingIndex struct{ err error }

func (f *failingIndex) Upsert(context.Context, []rag.Document, [][]float32) error { return nil }
func (f *failingIndex) Query(context.Context, []float32, int) ([]rag.Document, error) {
	return nil, f.err
}
func (f *failingIndex) Size(context.Context) (int, error) { return 0, nil }
func (f *failingIndex) Close() error                      { return nil }

// capturingGenerator records the prompt it was called with.
type capturingGenerator struct {
	calls  int
	prompt *composer.Prompt
	answer string
	err    error
}

func (g *capturingGenerator) Generate(_ context.Context, p *composer.Prompt) (string, error) {
	g.calls++
	g.prompt = p
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// newTestIndex builds a real SQLite-backed index in a temp dir and ingests
// the given documents through the chunker and embedder.
func newTestIndex(t *testing.T, emb rag.Embedder, docs map[string]string) rag.VectorIndex {
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

	splitter, err := chunker.NewSplitter(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	ctx := context.Background()
	for source, text := range docs {
		chunks := splitter.Split(text)
		var (
			ds    []rag.Document
			texts []string
		)
		for _, c := range chunks {
			ds = append(ds, rag.Document{
				ID:      fmt.Sprintf("%s#%d", source, c.Ordinal),
				Content: c.Text,
				Source:  source,
			})
			texts = append(texts, c.Text)
		}
		vecs, err := emb.Embed(ctx, texts)
		if err != nil {
			t.Fatalf("Embed() error = %v", err)
		}
		if err := idx.Upsert(ctx, ds, vecs); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	return idx
}

func newTestPipeline(t *testing.T, emb rag.Embedder, idx rag.VectorIndex, gen Generator) *Pipeline {
	t.Helper()
	r, err := rag.NewRetriever(emb, idx, 0)
	if err != nil {
		t.Fatalf("NewRetriever() error = %v", err)
	}
	p, err := New(&Config{
		Retriever: r,
		Composer:  composer.New(""),
		Generator: gen,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func Test_Pipeline_AnswersFromIngestedDocument(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, map[string]string{
		"pasta.txt": "Boil water. Add pasta. Cook 10 minutes.",
	})
	gen := &capturingGenerator{answer: "You cook it for 10 minutes, obviously."}
	p := newTestPipeline(t, emb, idx, gen)

	question := "How long do I cook the pasta?"
	ans, err := p.Ask(context.Background(), question)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if ans.Answer != gen.answer {
		t.Errorf("Answer = %q", ans.Answer)
	}
	if len(ans.Sources) == 0 {
		t.Fatal("no sources returned")
	}
	found := false
	for _, s := range ans.Sources {
		if strings.Contains(s.Content, "10 minutes") {
			found = true
		}
	}
	if !found {
		t.Errorf("retrieved sources missing \"10 minutes\": %+v", ans.Sources)
	}
	if !strings.Contains(gen.prompt.System, composer.DefaultPersona) {
		t.Error("composed prompt missing persona instruction")
	}
	if gen.prompt.User != question {
		t.Errorf("composed question = %q, want verbatim %q", gen.prompt.User, question)
	}
}

func Test_Pipeline_EmptyIndexStillGenerates(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, nil)
	gen := &capturingGenerator{answer: "No idea, my cookbook is empty."}
	p := newTestPipeline(t, emb, idx, gen)

	ans, err := p.Ask(context.Background(), "What is seitan?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if len(ans.Sources) != 0 {
		t.Errorf("Sources = %d, want 0 for empty index", len(ans.Sources))
	}
	if !strings.HasSuffix(gen.prompt.System, "Context: ") {
		t.Errorf("prompt context should be empty:\n%s", gen.prompt.System)
	}
}

func Test_Pipeline_RetrievesAtMostTopK(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, map[string]string{
		"a.txt": "Tofu scramble with turmeric.",
		"b.txt": "Tofu stir fry with soy sauce.",
		"c.txt": "Tofu curry with coconut milk.",
	})
	gen := &capturingGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, idx, gen)

	ans, err := p.Ask(context.Background(), "tofu")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(ans.Sources) != rag.DefaultTopK {
		t.Errorf("Sources = %d, want default top-k %d", len(ans.Sources), rag.DefaultTopK)
	}
}

func Test_Pipeline_EmptyQuestionFailsBeforeEmbedding(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, nil)
	gen := &capturingGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, idx, gen)
	embedCallsBefore := emb.calls

	_, err := p.Ask(context.Background(), "   ")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Ask() error = %v, want *StageError", err)
	}
	if stageErr.Stage != StageReceived {
		t.Errorf("Stage = %s, want RECEIVED", stageErr.Stage)
	}
	if emb.calls != embedCallsBefore {
		t.Error("embedder called for empty question")
	}
	if gen.calls != 0 {
		t.Error("generator called for empty question")
	}
}

func Test_Pipeline_EmbeddingFailureNamesStage(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, nil)
	emb.fail = errors.New("embedding api down")
	gen := &capturingGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, idx, gen)

	_, err := p.Ask(context.Background(), "question")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Ask() error = %v, want *StageError", err)
	}
	if stageErr.Stage != StageEmbedding {
		t.Errorf("Stage = %s, want EMBEDDING", stageErr.Stage)
	}
	if stageErr.Stage.Class() != "embedding" {
		t.Errorf("Class() = %s", stageErr.Stage.Class())
	}
	if gen.calls != 0 {
		t.Error("generator called after embedding failure")
	}
}

func Test_Pipeline_SearchFailureNamesStage(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	gen := &capturingGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, &failingIndex{err: errors.New("index gone")}, gen)

	_, err := p.Ask(context.Background(), "question")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Ask() error = %v, want *StageError", err)
	}
	if stageErr.Stage != StageSearching {
		t.Errorf("Stage = %s, want SEARCHING", stageErr.Stage)
	}
	if stageErr.Stage.Class() != "retrieval" {
		t.Errorf("Class() = %s", stageErr.Stage.Class())
	}
}

func Test_Pipeline_GenerationFailureYieldsNoAnswer(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, map[string]string{"a.txt": "Some context."})
	gen := &capturingGenerator{err: errors.New("model unavailable")}
	p := newTestPipeline(t, emb, idx, gen)

	ans, err := p.Ask(context.Background(), "question")
	if ans != nil {
		t.Errorf("Ask() returned partial answer %+v on failure", ans)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Ask() error = %v, want *StageError", err)
	}
	if stageErr.Stage != StageGenerating {
		t.Errorf("Stage = %s, want GENERATING", stageErr.Stage)
	}
	if stageErr.Elapsed <= 0 {
		t.Error("StageError.Elapsed not recorded")
	}
}

func Test_Pipeline_TimingCoversStages(t *testing.T) {
	t.Parallel()

	emb := &wordEmbedder{}
	idx := newTestIndex(t, emb, map[string]string{"a.txt": "Some context."})
	emb.slow = 15 * time.Millisecond
	gen := &capturingGenerator{answer: "ok"}
	p := newTestPipeline(t, emb, idx, gen)

	ans, err := p.Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if ans.Timing.Embedding < 10*time.Millisecond {
		t.Errorf("Embedding timing = %v, want at least the embedder delay", ans.Timing.Embedding)
	}
	if ans.Timing.Total < ans.Timing.Embedding+ans.Timing.Search+ans.Timing.Generation {
		t.Errorf("Total %v is less than the sum of stage timings %v + %v + %v",
			ans.Timing.Total, ans.Timing.Embedding, ans.Timing.Search, ans.Timing.Generation)
	}
}
