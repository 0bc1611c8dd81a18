// Package ingestion implements the document ingestion pipeline. It renders
// sources to text, chunks the content, embeds each chunk, and upserts the
// results into the vector index. This pipeline is invoked by the
// `chefai ingest` and `chefai seed` CLI commands.
package ingestion

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/veganai/chefai-go/internal/chunker"
	"github.com/veganai/chefai-go/internal/rag"
	"github.com/veganai/chefai-go/internal/recipes"
)

// Source describes one text document to be ingested.
type Source struct {
	// Name labels the document; it is recorded as Document.Source and
	// feeds the deterministic chunk IDs.
	Name string

	// Text is the document content.
	Text string

	// Metadata is attached to every chunk of this document.
	Metadata map[string]string
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of bytes per chunk for plain files.
	// Defaults to chunker.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the number of bytes shared between consecutive
	// chunks for plain files. Defaults to chunker.DefaultOverlap if zero.
	ChunkOverlap int

	// RecipeChunkSize is the chunk size for rendered recipes. Recipes are
	// self-contained, so larger chunks keep a whole recipe together.
	// Defaults to 1000 if zero.
	RecipeChunkSize int

	// RecipeChunkOverlap is the overlap for rendered recipes.
	// Defaults to 100 if zero.
	RecipeChunkOverlap int
}

// Pipeline orchestrates the render → chunk → embed → upsert flow.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// index persists the embedded chunks.
	index rag.VectorIndex

	// fileSplitter chunks plain documents.
	fileSplitter *chunker.Splitter

	// recipeSplitter chunks rendered recipes.
	recipeSplitter *chunker.Splitter
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, index rag.VectorIndex, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("ingestion: index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap <= 0 {
		overlap = chunker.DefaultOverlap
	}
	recipeSize := cfg.RecipeChunkSize
	if recipeSize <= 0 {
		recipeSize = 1000
	}
	recipeOverlap := cfg.RecipeChunkOverlap
	if recipeOverlap <= 0 {
		recipeOverlap = 100
	}

	fileSplitter, err := chunker.NewSplitter(chunkSize, overlap)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}
	recipeSplitter, err := chunker.NewSplitter(recipeSize, recipeOverlap)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	return &Pipeline{
		embedder:       embedder,
		index:          index,
		fileSplitter:   fileSplitter,
		recipeSplitter: recipeSplitter,
	}, nil
}

// Ingest chunks, embeds, and stores all provided sources with the plain-file
// splitter. It processes sources sequentially and returns the total number
// of chunks stored along with the first error encountered. Progress is
// reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source, progress func(msg string)) (int, error) {
	return p.ingest(ctx, sources, p.fileSplitter, progress)
}

func (p *Pipeline) ingest(ctx context.Context, sources []Source, splitter *chunker.Splitter, progress func(msg string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}

	total := 0
	for _, src := range sources {
		chunks := splitter.Split(strings.TrimSpace(src.Text))
		if len(chunks) == 0 {
			progress(fmt.Sprintf("skipping %s (empty)", src.Name))
			continue
		}
		progress(fmt.Sprintf("chunked %s into %d chunks", src.Name, len(chunks)))

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("ingestion: embedding failed for %s: %w", src.Name, err)
		}

		docs := make([]rag.Document, 0, len(chunks))
		for i, c := range chunks {
			meta := map[string]string{"chunk_index": strconv.Itoa(c.Ordinal)}
			for k, v := range src.Metadata {
				meta[k] = v
			}
			docs = append(docs, rag.Document{
				ID:       chunkID(src.Name, c.Ordinal),
				Content:  texts[i],
				Source:   src.Name,
				Metadata: meta,
			})
		}

		if err := p.index.Upsert(ctx, docs, embeddings); err != nil {
			return total, fmt.Errorf("ingestion: upsert failed for %s: %w", src.Name, err)
		}

		total += len(chunks)
		progress(fmt.Sprintf("ingested %d chunks from %s", len(chunks), src.Name))
	}

	return total, nil
}

// IngestFiles reads the given paths and ingests each file as one source
// named by its base filename.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string, progress func(msg string)) (int, error) {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("ingestion: read %s: %w", path, err)
		}
		sources = append(sources, Source{Name: filepath.Base(path), Text: string(data)})
	}
	return p.Ingest(ctx, sources, progress)
}

// IngestRecipes renders every recipe in the store and ingests the rendered
// documents with the recipe splitter.
func (p *Pipeline) IngestRecipes(ctx context.Context, store *recipes.Store, progress func(msg string)) (int, error) {
	all, err := store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingestion: %w", err)
	}

	sources := make([]Source, 0, len(all))
	for i := range all {
		r := &all[i]
		sources = append(sources, Source{
			Name: fmt.Sprintf("recipe:%d", r.ID),
			Text: r.Document(),
			Metadata: map[string]string{
				"recipe_id":     strconv.FormatInt(r.ID, 10),
				"title":         r.Title,
				"cuisine":       r.Metadata["cuisine"],
				"difficulty":    r.Metadata["difficulty"],
				"created_by_ai": strconv.FormatBool(r.CreatedByAI),
			},
		})
	}
	return p.ingest(ctx, sources, p.recipeSplitter, progress)
}

// chunkID generates a deterministic ID for a document chunk based on its
// source name and chunk ordinal.
func chunkID(source string, ordinal int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", source, ordinal)))
	return fmt.Sprintf("%x", h[:16])
}
