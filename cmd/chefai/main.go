// Command chefai is the entry point for the ChefAI vegan cooking assistant.
// It provides a CLI interface (via Cobra) and an optional HTTP server that
// exposes the question-answering pipeline as a JSON API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/veganai/chefai-go/cmd/chefai/commands"
)

func main() {
	// Load a local .env if present. Real environment variables win.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
