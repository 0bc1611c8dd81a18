package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSearchCmd constructs the `chefai search` command, which runs a
// similarity search against the recipe index without invoking the LLM.
// Useful for inspecting what context a question would retrieve.
func NewSearchCmd() *cobra.Command {
	var topK int
	var full bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the recipe index without generating an answer",
		Long: `Run a similarity search against the recipe index and print the matching
fragments with their cosine similarity scores. No LLM call is made.

Examples:
  chefai search "coconut curry"
  chefai search --top-k 5 --full "fermented soybean"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			retriever, idx, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer func() { _ = idx.Close() }()

			docs, err := retriever.Retrieve(ctx, args[0], topK)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(docs) == 0 {
				fmt.Println("No matches. Is the index populated? Try 'chefai seed' then 'chefai ingest --recipes'.")
				return nil
			}

			for i, doc := range docs {
				content := doc.Content
				if !full {
					content = preview(content, sourcePreviewLen)
				}
				fmt.Printf("%d. [%.4f] %s\n", i+1, doc.Score, content)
				if title := doc.Metadata["title"]; title != "" {
					fmt.Printf("   recipe: %s\n", title)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of fragments to retrieve (default: 2)")
	cmd.Flags().BoolVar(&full, "full", false, "Print full fragment text instead of a preview")

	return cmd
}
