package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veganai/chefai-go/internal/composer"
	"github.com/veganai/chefai-go/internal/pipeline"
)

// sourcePreviewLen is how many characters of each retrieved fragment are
// printed under "Sources".
const sourcePreviewLen = 100

// NewAskCmd constructs the `chefai ask` command, which runs a single cooking
// question through the full answer pipeline and prints the result.
func NewAskCmd() *cobra.Command {
	var persona string
	var topK int
	var showTiming bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask ChefAI a vegan cooking question",
		Long: `Ask ChefAI a natural language cooking question.

The question is embedded, matched against the recipe index, and answered by
the configured LLM using only the retrieved recipes as context. Run
'chefai seed' and 'chefai ingest --recipes' first to populate the index.

Examples:
  chefai ask "how do I make a creamy dal without cream?"
  chefai ask --top-k 4 "what goes into vegan pad thai sauce?"
  chefai ask --timing "is miso soup vegan?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			retriever, idx, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = idx.Close() }()

			generator, err := buildGenerator(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			p, err := pipeline.New(&pipeline.Config{
				Retriever: retriever,
				Composer:  composer.New(persona),
				Generator: generator,
				TopK:      topK,
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			ans, err := p.Ask(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(ans.Answer)

			if len(ans.Sources) > 0 {
				fmt.Println("\nSources:")
				for i, doc := range ans.Sources {
					fmt.Printf("  %d. %s\n", i+1, preview(doc.Content, sourcePreviewLen))
				}
			}

			if showTiming {
				fmt.Printf("\nTiming: embed %s, search %s, generate %s, total %s\n",
					ans.Timing.Embedding.Round(timePrecision),
					ans.Timing.Search.Round(timePrecision),
					ans.Timing.Generation.Round(timePrecision),
					ans.Timing.Total.Round(timePrecision),
				)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&persona, "persona", "", "Override the assistant persona (system prompt prefix)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of recipe fragments to retrieve (default: 2)")
	cmd.Flags().BoolVar(&showTiming, "timing", false, "Print the per-stage latency breakdown")

	return cmd
}
