// Package index provides durable rag.VectorIndex implementations. The
// default backend persists entries in a local SQLite database and serves
// similarity queries from an in-memory snapshot, so concurrent readers never
// block each other and results are reproducible bit-for-bit across restarts.
// A Qdrant backend is available for deployments that already run one.
package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/veganai/chefai-go/internal/rag"
)

// Meta keys stored alongside the entries so an index can refuse vectors from
// a different embedding model or dimensionality.
const (
	metaModel      = "embedding_model"
	metaDimensions = "dimensions"
)

// SQLiteConfig holds the settings for opening a SQLiteIndex.
type SQLiteConfig struct {
	// Path is the database file location. Use ":memory:" in tests.
	Path string

	// Model is the embedding model identifier whose vectors this index
	// stores. Opening an index written by a different model is rejected.
	Model string

	// Dimensions is the expected vector length. Zero means "adopt from the
	// first upsert" (or from the stored metadata of an existing index).
	Dimensions int
}

// SQLiteIndex is a rag.VectorIndex backed by a local SQLite database.
// All entries are kept in memory in insertion order; Query walks the
// snapshot under a read lock, Upsert persists first and then extends the
// snapshot under the write lock.
type SQLiteIndex struct {
	// db is the underlying database connection pool.
	db *sql.DB

	// mu guards entries, dim, and model adoption.
	mu sync.RWMutex

	// entries is the in-memory snapshot, ordered by insertion (seq).
	entries []indexEntry

	// dim is the vector dimensionality, 0 until known.
	dim int

	// model is the embedding model recorded for this index.
	model string
}

// indexEntry pairs a stored document with its vector and insertion sequence.
type indexEntry struct {
	seq int64
	doc rag.Document
	vec []float32
}

// DefaultPath returns the default location for the vector index database,
// ~/.chefai/index.db, creating the directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("index: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".chefai")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("index: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "index.db"), nil
}

// OpenSQLite opens (or creates) a SQLiteIndex at the given path, runs the
// schema migration, validates the stored model metadata against cfg, and
// loads all entries into memory.
func OpenSQLite(cfg *SQLiteConfig) (*SQLiteIndex, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", cfg.Path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{db: db, model: cfg.Model, dim: cfg.Dimensions}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := idx.checkMeta(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := idx.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// migrate creates the schema if it does not already exist.
func (x *SQLiteIndex) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS index_meta (
    key    TEXT PRIMARY KEY,
    value  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT    NOT NULL UNIQUE,
    content    TEXT    NOT NULL,
    source     TEXT    NOT NULL,
    metadata   TEXT    NOT NULL,
    embedding  BLOB    NOT NULL,
    created_at INTEGER NOT NULL  -- Unix timestamp (seconds)
);
`
	if _, err := x.db.Exec(ddl); err != nil {
		return fmt.Errorf("index: migrate: %w", err)
	}
	return nil
}

// checkMeta reconciles the configured model/dimensions with what the index
// was created with. A fresh index adopts the configured values; an existing
// index rejects a different model or dimensionality outright.
func (x *SQLiteIndex) checkMeta() error {
	storedModel, okModel, err := x.getMeta(metaModel)
	if err != nil {
		return err
	}
	storedDim, okDim, err := x.getMeta(metaDimensions)
	if err != nil {
		return err
	}

	if okModel {
		if x.model != "" && storedModel != x.model {
			return fmt.Errorf("index: stored model %q vs configured %q: %w", storedModel, x.model, rag.ErrModelMismatch)
		}
		x.model = storedModel
	} else if x.model != "" {
		if err := x.setMeta(metaModel, x.model); err != nil {
			return err
		}
	}

	if okDim {
		dim, convErr := strconv.Atoi(storedDim)
		if convErr != nil || dim <= 0 {
			return fmt.Errorf("index: stored dimensions %q unreadable: %w", storedDim, rag.ErrIndexCorrupt)
		}
		if x.dim > 0 && dim != x.dim {
			return fmt.Errorf("index: stored dimensions %d vs configured %d: %w", dim, x.dim, rag.ErrDimensionMismatch)
		}
		x.dim = dim
	} else if x.dim > 0 {
		if err := x.setMeta(metaDimensions, strconv.Itoa(x.dim)); err != nil {
			return err
		}
	}

	return nil
}

// getMeta reads one index_meta value.
func (x *SQLiteIndex) getMeta(key string) (string, bool, error) {
	var value string
	err := x.db.QueryRow(`SELECT value FROM index_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: read meta %s: %w", key, err)
	}
	return value, true, nil
}

// setMeta writes one index_meta value.
func (x *SQLiteIndex) setMeta(key, value string) error {
	_, err := x.db.Exec(`INSERT INTO index_meta (key, value) VALUES (?, ?)
	    ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("index: write meta %s: %w", key, err)
	}
	return nil
}

// load reads all persisted entries into the in-memory snapshot, ordered by
// insertion sequence.
func (x *SQLiteIndex) load() error {
	rows, err := x.db.Query(`SELECT seq, id, content, source, metadata, embedding FROM entries ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("index: load: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var (
			e        indexEntry
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&e.seq, &e.doc.ID, &e.doc.Content, &e.doc.Source, &metaJSON, &blob); err != nil {
			return fmt.Errorf("index: load scan: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &e.doc.Metadata); err != nil {
			return fmt.Errorf("index: entry %s metadata: %v: %w", e.doc.ID, err, rag.ErrIndexCorrupt)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("index: entry %s embedding: %v: %w", e.doc.ID, err, rag.ErrIndexCorrupt)
		}
		if x.dim > 0 && len(vec) != x.dim {
			return fmt.Errorf("index: entry %s has %d dimensions, index has %d: %w", e.doc.ID, len(vec), x.dim, rag.ErrIndexCorrupt)
		}
		e.vec = vec
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("index: load rows: %w", err)
	}

	x.entries = entries
	return nil
}

// Upsert persists a batch of documents with their embeddings and extends the
// in-memory snapshot. Documents whose ID already exists are left in place
// unchanged (append-only ingestion across runs).
func (x *SQLiteIndex) Upsert(ctx context.Context, docs []rag.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("index: %d documents but %d embeddings", len(docs), len(embeddings))
	}
	if len(docs) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Adopt dimensionality from the first vector ever stored.
	if x.dim == 0 {
		x.dim = len(embeddings[0])
		if err := x.setMeta(metaDimensions, strconv.Itoa(x.dim)); err != nil {
			return err
		}
	}
	for i, vec := range embeddings {
		if len(vec) != x.dim {
			return fmt.Errorf("index: document %s vector has %d dimensions, index has %d: %w",
				docs[i].ID, len(vec), x.dim, rag.ErrDimensionMismatch)
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().Unix()
	var added []indexEntry
	for i, doc := range docs {
		metaJSON, err := json.Marshal(orEmpty(doc.Metadata))
		if err != nil {
			return fmt.Errorf("index: marshal metadata for %s: %w", doc.ID, err)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (id, content, source, metadata, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			doc.ID, doc.Content, doc.Source, string(metaJSON), encodeVector(embeddings[i]), now)
		if err != nil {
			return fmt.Errorf("index: insert %s: %w", doc.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("index: rows affected for %s: %w", doc.ID, err)
		}
		if n == 0 {
			// Existing ID — left in place.
			continue
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("index: last insert id for %s: %w", doc.ID, err)
		}
		added = append(added, indexEntry{seq: seq, doc: doc, vec: embeddings[i]})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit upsert: %w", err)
	}

	x.entries = append(x.entries, added...)
	return nil
}

// Query returns the k entries most similar to the given embedding, ordered
// by descending cosine similarity with ties broken by insertion order.
// An empty index returns an empty result; a wrong-length vector returns
// rag.ErrDimensionMismatch.
func (x *SQLiteIndex) Query(_ context.Context, embedding []float32, k int) ([]rag.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(embedding) != x.dim {
		return nil, fmt.Errorf("index: query vector has %d dimensions, index has %d: %w",
			len(embedding), x.dim, rag.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	type scored struct {
		pos   int
		score float32
	}
	results := make([]scored, len(x.entries))
	for i := range x.entries {
		results[i] = scored{pos: i, score: cosine(embedding, x.entries[i].vec)}
	}

	// Stable sort preserves snapshot order (insertion order) among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	docs := make([]rag.Document, k)
	for i := 0; i < k; i++ {
		doc := x.entries[results[i].pos].doc
		doc.Score = results[i].score
		docs[i] = doc
	}
	return docs, nil
}

// Size returns the number of stored entries.
func (x *SQLiteIndex) Size(context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Ping reports whether the underlying database is reachable. Used by the
// server's readiness probe.
func (x *SQLiteIndex) Ping(ctx context.Context) error {
	if err := x.db.PingContext(ctx); err != nil {
		return fmt.Errorf("index: ping: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (x *SQLiteIndex) Name() string { return "index" }

// Close closes the underlying database.
func (x *SQLiteIndex) Close() error {
	if err := x.db.Close(); err != nil {
		return fmt.Errorf("index: close: %w", err)
	}
	return nil
}

// cosine computes cosine similarity with float64 accumulation so the result
// does not depend on summation quirks of shorter floats.
func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// encodeVector serialises a vector as little-endian float32 bits. The fixed
// byte layout keeps query results reproducible across restarts.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}

// orEmpty replaces a nil metadata map with an empty one so stored JSON is
// always an object.
func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
