package rag

import "errors"

// Sentinel errors shared across the retrieval core. Components wrap these
// with fmt.Errorf("pkg: ...: %w", err) so callers can classify failures with
// errors.Is without parsing messages.
var (
	// ErrDimensionMismatch reports a query or upsert vector whose length
	// does not match the index dimensionality. This is a configuration
	// error: it is surfaced immediately and never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch reports an attempt to mix vectors from different
	// embedding models in one index. Similarity across models is undefined,
	// so the index rejects the operation outright.
	ErrModelMismatch = errors.New("index was built with a different embedding model")

	// ErrIndexCorrupt reports an index whose persisted state cannot be
	// decoded. The current request is aborted; the on-disk state is left
	// untouched for inspection.
	ErrIndexCorrupt = errors.New("index storage is corrupt")
)
