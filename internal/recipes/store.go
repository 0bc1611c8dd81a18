// Package recipes manages the recipe catalog: a SQLite-backed store that the
// ingestion pipeline reads from, plus a seed set of vegan recipes for first
// runs. Recipes render to a fixed plain-text document layout before chunking
// so retrieval sees titles, metadata, ingredients and instructions together.
package recipes

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// DedupeKey selects what makes two recipes "the same" when adding.
type DedupeKey string

const (
	// DedupeTitle skips recipes whose title already exists (default).
	DedupeTitle DedupeKey = "title"

	// DedupeContent skips recipes whose ingredients and instructions both
	// already exist under any title.
	DedupeContent DedupeKey = "content"

	// DedupeNone always adds.
	DedupeNone DedupeKey = "none"
)

// ParseDedupeKey validates a dedupe mode string, defaulting empty to title.
func ParseDedupeKey(s string) (DedupeKey, error) {
	switch DedupeKey(s) {
	case "":
		return DedupeTitle, nil
	case DedupeTitle, DedupeContent, DedupeNone:
		return DedupeKey(s), nil
	default:
		return "", fmt.Errorf("recipes: unknown dedupe mode %q (supported: title, content, none)", s)
	}
}

// Recipe is one catalog entry.
type Recipe struct {
	// ID is the database row ID, zero until stored.
	ID int64

	// Title is the recipe name.
	Title string

	// Ingredients is the free-text ingredient list.
	Ingredients string

	// Instructions is the free-text preparation steps.
	Instructions string

	// CreatedByAI marks recipes generated rather than curated.
	CreatedByAI bool

	// Metadata holds descriptive fields (cuisine, difficulty, prep_time,
	// cook_time). Missing fields render as "Unknown".
	Metadata map[string]string

	// CreatedAt is when the recipe was stored.
	CreatedAt time.Time
}

// metaOr returns a metadata field or "Unknown" when absent.
func (r *Recipe) metaOr(key string) string {
	if v, ok := r.Metadata[key]; ok && v != "" {
		return v
	}
	return "Unknown"
}

// Document renders the recipe into the plain-text layout indexed for
// retrieval. The layout is stable: changing it invalidates chunk IDs and
// forces re-ingestion.
func (r *Recipe) Document() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RECIPE: %s\n\n", r.Title)
	fmt.Fprintf(&b, "CUISINE: %s\n", r.metaOr("cuisine"))
	fmt.Fprintf(&b, "DIFFICULTY: %s\n", r.metaOr("difficulty"))
	fmt.Fprintf(&b, "PREP TIME: %s\n", r.metaOr("prep_time"))
	fmt.Fprintf(&b, "COOK TIME: %s\n\n", r.metaOr("cook_time"))
	fmt.Fprintf(&b, "INGREDIENTS:\n%s\n\n", r.Ingredients)
	fmt.Fprintf(&b, "INSTRUCTIONS:\n%s", r.Instructions)
	return b.String()
}

// contentHash fingerprints ingredients plus instructions for content dedupe.
func (r *Recipe) contentHash() string {
	sum := sha256.Sum256([]byte(r.Ingredients + "\x00" + r.Instructions))
	return hex.EncodeToString(sum[:])
}

// Store is a SQLite-backed recipe catalog.
type Store struct {
	// db is the underlying database connection pool.
	db *sql.DB

	// dedupe selects the duplicate detection mode for Add.
	dedupe DedupeKey
}

// Open opens (or creates) a recipe store at the given path.
func Open(path string, dedupe DedupeKey) (*Store, error) {
	if dedupe == "" {
		dedupe = DedupeTitle
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("recipes: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dedupe: dedupe}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS recipes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    title         TEXT    NOT NULL,
    ingredients   TEXT    NOT NULL,
    instructions  TEXT    NOT NULL,
    created_by_ai INTEGER NOT NULL DEFAULT 0,
    metadata      TEXT    NOT NULL,
    content_hash  TEXT    NOT NULL,
    created_at    INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_recipes_title ON recipes(title);
CREATE INDEX IF NOT EXISTS idx_recipes_content_hash ON recipes(content_hash);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("recipes: migrate: %w", err)
	}
	return nil
}

// exists reports whether a recipe matching the dedupe key is already stored.
func (s *Store) exists(ctx context.Context, r *Recipe) (bool, error) {
	var (
		query string
		arg   string
	)
	switch s.dedupe {
	case DedupeNone:
		return false, nil
	case DedupeContent:
		query = `SELECT COUNT(*) FROM recipes WHERE content_hash = ?`
		arg = r.contentHash()
	default:
		query = `SELECT COUNT(*) FROM recipes WHERE title = ?`
		arg = r.Title
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return false, fmt.Errorf("recipes: duplicate check for %q: %w", r.Title, err)
	}
	return n > 0, nil
}

// Add stores a recipe unless the configured dedupe key matches an existing
// one. It reports whether the recipe was added.
func (s *Store) Add(ctx context.Context, r *Recipe) (bool, error) {
	if strings.TrimSpace(r.Title) == "" {
		return false, fmt.Errorf("recipes: recipe title must not be empty")
	}

	dup, err := s.exists(ctx, r)
	if err != nil {
		return false, err
	}
	if dup {
		return false, nil
	}

	metaJSON, err := json.Marshal(orEmptyMeta(r.Metadata))
	if err != nil {
		return false, fmt.Errorf("recipes: marshal metadata for %q: %w", r.Title, err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (title, ingredients, instructions, created_by_ai, metadata, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Ingredients, r.Instructions, boolToInt(r.CreatedByAI),
		string(metaJSON), r.contentHash(), now.Unix())
	if err != nil {
		return false, fmt.Errorf("recipes: insert %q: %w", r.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("recipes: last insert id for %q: %w", r.Title, err)
	}
	r.ID = id
	r.CreatedAt = now
	return true, nil
}

// All returns every stored recipe in insertion order.
func (s *Store) All(ctx context.Context) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, ingredients, instructions, created_by_ai, metadata, created_at
		 FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("recipes: list: %w", err)
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var (
			r        Recipe
			ai       int
			metaJSON string
			created  int64
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Ingredients, &r.Instructions, &ai, &metaJSON, &created); err != nil {
			return nil, fmt.Errorf("recipes: list scan: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("recipes: recipe %d metadata: %w", r.ID, err)
		}
		r.CreatedByAI = ai != 0
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipes: list rows: %w", err)
	}
	return out, nil
}

// Count returns the number of stored recipes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("recipes: count: %w", err)
	}
	return n, nil
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("recipes: ping: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (s *Store) Name() string { return "recipes" }

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("recipes: close: %w", err)
	}
	return nil
}

func orEmptyMeta(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
