package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/veganai/chefai-go/internal/logging"
)

// NewIngestCmd constructs the `chefai ingest` command, which chunks, embeds,
// and indexes recipe documents or plain text files into the vector index.
func NewIngestCmd() *cobra.Command {
	var fromRecipes bool

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest recipes or text files into the vector index",
		Long: `Chunk, embed, and index content into the vector index so it can be
retrieved when answering questions.

Two sources are supported:
  - files passed as arguments (plain text, chunked at 500 chars with 50 overlap)
  - the recipe database via --recipes (rendered recipe documents, chunked at
    1000 chars with 100 overlap)

Ingestion is idempotent: chunk IDs are derived from source name and position,
and already-indexed chunks are left in place.

Required environment variables depend on the embedding backend:
  EMBEDDING_PROVIDER   ollama, openai, azure (default: inherits MODEL_PROVIDER)
  INDEX_BACKEND        sqlite (default) or qdrant
  INDEX_PATH           SQLite index location (default: ~/.chefai/index.db)

Examples:
  chefai ingest --recipes
  chefai ingest notes/tofu-pressing.txt notes/umami.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			if !fromRecipes && len(args) == 0 {
				return fmt.Errorf("ingest: pass files to ingest, or --recipes for the recipe database")
			}

			idx, p, err := buildIngestionPipeline(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = idx.Close() }()

			progress := func(msg string) { log.Info(msg) }
			total := 0

			if fromRecipes {
				store, err := openRecipeStore()
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				defer func() { _ = store.Close() }()

				n, err := p.IngestRecipes(ctx, store, progress)
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				total += n
			}

			if len(args) > 0 {
				n, err := p.IngestFiles(ctx, args, progress)
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				total += n
			}

			size, err := idx.Size(ctx)
			if err != nil {
				log.Warn("ingest: could not read index size", slog.Any("error", err))
			} else {
				log.Info("ingestion complete", slog.Int("chunks_added", total), slog.Int("index_size", size))
			}

			fmt.Printf("Ingested %d chunks.\n", total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromRecipes, "recipes", false, "Ingest all recipes from the recipe database")

	return cmd
}
