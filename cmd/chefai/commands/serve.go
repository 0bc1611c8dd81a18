package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/veganai/chefai-go/internal/composer"
	"github.com/veganai/chefai-go/internal/logging"
	"github.com/veganai/chefai-go/internal/pipeline"
	"github.com/veganai/chefai-go/internal/server"
	"github.com/veganai/chefai-go/internal/tracing"
)

// NewServeCmd constructs the `chefai serve` command, which starts the HTTP
// server exposing the answer pipeline as a JSON API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ChefAI HTTP server",
		Long: `Start the ChefAI HTTP server on localhost.

Endpoints:
  POST /api/ask     Answer a cooking question (Bearer auth when CHEFAI_API_KEY is set)
  GET  /api/health  Liveness probe
  GET  /api/ready   Readiness probe (checks the vector index and recipe database)
  GET  /metrics     Prometheus metrics

Examples:
  chefai serve
  chefai serve --port 9090
  MODEL_PROVIDER=ollama chefai serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			retriever, idx, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = idx.Close() }()

			generator, err := buildGenerator(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}

			p, err := pipeline.New(&pipeline.Config{
				Retriever: retriever,
				Composer:  composer.New(""),
				Generator: generator,
				TopK:      getEnvInt("RETRIEVAL_TOP_K", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			// The recipe database is probed alongside the index. Opening it
			// here keeps /api/ready honest about both storage dependencies.
			store, err := openRecipeStore()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = store.Close() }()

			var pingers []server.Pinger
			if pinger, ok := idx.(server.Pinger); ok {
				pingers = append(pingers, pinger)
			}
			pingers = append(pingers, store)

			if host == "" {
				host = getEnvOrDefault("SERVER_HOST", "127.0.0.1")
			}
			if port == 0 {
				port = getEnvInt("SERVER_PORT", 8080)
			}

			srv, err := server.New(p, &server.Config{
				Host:            host,
				Port:            port,
				Logger:          log,
				Pingers:         pingers,
				APIKey:          os.Getenv("CHEFAI_API_KEY"),
				MetricsRegistry: prometheus.NewRegistry(),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address to bind to (default: 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on (default: 8080)")

	return cmd
}
