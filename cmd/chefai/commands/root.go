// Package commands defines all Cobra CLI commands for the chefai binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/veganai/chefai-go/internal/audit"
	"github.com/veganai/chefai-go/internal/config"
	"github.com/veganai/chefai-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chefai",
		Short: "ChefAI — your expert (and sarcastic) vegan cooking assistant",
		Long: `ChefAI is a local-first retrieval-augmented cooking assistant.

It answers vegan cooking questions grounded in an indexed recipe collection:
questions are embedded, matched against a durable vector index, and answered
by an LLM using only the retrieved recipes as context.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.chefai/config.yaml).
See 'chefai --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.chefai/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewSearchCmd(),
		NewIngestCmd(),
		NewSeedCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
