package index

import (
	"context"
	"fmt"

	"github.com/veganai/chefai-go/internal/rag"
)

// Backend identifiers accepted by New.
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

// Config selects and configures a vector index backend.
type Config struct {
	// Backend is "sqlite" (default) or "qdrant".
	Backend string

	// Path is the database file location for the sqlite backend. Empty
	// means the default under ~/.chefai.
	Path string

	// Model is the embedding model identifier recorded with the index.
	Model string

	// Dimensions is the expected vector length.
	Dimensions int

	// Qdrant holds connection parameters for the qdrant backend.
	Qdrant QdrantConfig
}

// New creates the configured vector index backend.
func New(ctx context.Context, cfg *Config) (rag.VectorIndex, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		path := cfg.Path
		if path == "" {
			var err error
			path, err = DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		return OpenSQLite(&SQLiteConfig{
			Path:       path,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case BackendQdrant:
		qcfg := cfg.Qdrant
		if qcfg.Collection == "" {
			qcfg.Collection = "chefai"
		}
		if qcfg.VectorSize == 0 && cfg.Dimensions > 0 {
			qcfg.VectorSize = uint64(cfg.Dimensions)
		}
		return NewQdrantIndex(ctx, &qcfg)
	default:
		return nil, fmt.Errorf("index: unknown backend %q (supported: sqlite, qdrant)", cfg.Backend)
	}
}
