package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veganai/chefai-go/internal/logging"
	"github.com/veganai/chefai-go/internal/recipes"
)

// NewSeedCmd constructs the `chefai seed` command, which populates the
// recipe database with the built-in starter collection.
func NewSeedCmd() *cobra.Command {
	var alsoIngest bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the recipe database with the starter collection",
		Long: `Insert the built-in starter collection of vegan recipes (Indian, Thai,
and Japanese) into the recipe database. Seeding is idempotent: recipes that
already exist under the configured dedupe mode are skipped.

With --ingest, the seeded recipes are immediately embedded and indexed so
they can be retrieved by 'chefai ask'.

Examples:
  chefai seed
  chefai seed --ingest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			store, err := openRecipeStore()
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer func() { _ = store.Close() }()

			added, err := recipes.SeedStore(ctx, store)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			total, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Printf("Seeded %d new recipes (%d total).\n", added, total)

			if !alsoIngest {
				return nil
			}

			idx, p, err := buildIngestionPipeline(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer func() { _ = idx.Close() }()

			n, err := p.IngestRecipes(ctx, store, func(msg string) { log.Info(msg) })
			if err != nil {
				return fmt.Errorf("seed: ingestion failed: %w", err)
			}
			fmt.Printf("Indexed %d recipe chunks.\n", n)

			return nil
		},
	}

	cmd.Flags().BoolVar(&alsoIngest, "ingest", false, "Also embed and index the seeded recipes")

	return cmd
}
