// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Card loads run as batched INSERTs inside a single
// transaction; SQLite has no dedicated bulk-load API, but a transaction keeps
// performance acceptable for this batch size.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver registration

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
)

const insertBatchSize = 500

func init() {
	storage.Register("sqlite", func(ctx context.Context, dsn string, opts storage.Options) (storage.Repository, error) {
		return Open(ctx, dsn, opts)
	})
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite store at dsn. With Options.MustExist the
// database file must already exist and contain the cards table; otherwise
// storage.ErrStoreNotFound is returned so read-only callers can tell the user
// to run the pipeline.
func Open(ctx context.Context, dsn string, opts storage.Options) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, &storage.SchemaError{Op: "open", Err: fmt.Errorf("sqlite DSN must not be empty")}
	}
	if opts.MustExist && !isMemoryDSN(dsn) {
		if _, err := os.Stat(filePathFromDSN(dsn)); err != nil {
			return nil, storage.ErrStoreNotFound
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &storage.SchemaError{Op: "open", Err: err}
	}
	// The pipeline is single-writer and the foreign_keys pragma is
	// per-connection; one pooled connection keeps it in force everywhere.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &storage.SchemaError{Op: "ping", Err: err}
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, &storage.SchemaError{Op: "pragma", Err: err}
	}

	r := &Repository{db: db}
	if opts.MustExist {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'cards'`).Scan(&n)
		if err != nil || n == 0 {
			db.Close()
			return nil, storage.ErrStoreNotFound
		}
	}
	return r, nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error { return r.db.Close() }

// DB exposes the underlying handle for tests.
func (r *Repository) DB() *sql.DB { return r.db }

// EnsureSchema creates tables, indices and views. Every statement is
// idempotent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return &storage.SchemaError{Op: "create schema", Err: err}
		}
	}
	return nil
}

// ReplaceCards performs the full-reload load inside one transaction: cards
// are truncated, expansions are upserted by unique name (insert-if-absent,
// never updated), and the new cards are inserted in batches referencing the
// resolved expansion ids. Either every write becomes visible or none does.
func (r *Repository) ReplaceCards(ctx context.Context, cards []transform.CleanCard, progress storage.ProgressFunc) (storage.LoadResult, error) {
	var res storage.LoadResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, &storage.LoadError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cards"); err != nil {
		return res, &storage.LoadError{Op: "clear cards", Err: err}
	}

	expansions := distinctExpansions(cards)
	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO expansions (name, generation) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return res, &storage.LoadError{Op: "prepare expansion upsert", Err: err}
	}
	defer upsert.Close()
	for _, e := range expansions {
		if _, err := upsert.ExecContext(ctx, e.name, e.generation); err != nil {
			return res, &storage.LoadError{Op: "upsert expansion", Err: err}
		}
	}

	ids, err := expansionIDs(ctx, tx)
	if err != nil {
		return res, &storage.LoadError{Op: "resolve expansion ids", Err: err}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (expansion_id, pokemon_name, card_type, card_number,
		 set_total, price, is_rare, rarity_level, rarity_score, price_category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return res, &storage.LoadError{Op: "prepare card insert", Err: err}
	}
	defer insert.Close()

	for i, c := range cards {
		id, ok := ids[c.ExpansionName]
		if !ok {
			return res, &storage.LoadError{Op: "insert card",
				Err: fmt.Errorf("no expansion id for %q", c.ExpansionName)}
		}
		isRare := 0
		if c.IsRare {
			isRare = 1
		}
		if _, err := insert.ExecContext(ctx, id, c.PokemonName, c.CardType,
			c.CardNumber, c.SetTotal, c.Price, isRare, string(c.RarityLevel),
			c.RarityScore, c.PriceCategory); err != nil {
			return res, &storage.LoadError{Op: "insert card", Err: err}
		}
		if progress != nil && ((i+1)%insertBatchSize == 0 || i+1 == len(cards)) {
			progress(i+1, len(cards))
		}
	}

	if err := tx.Commit(); err != nil {
		return res, &storage.LoadError{Op: "commit", Err: err}
	}
	res.CardsLoaded = len(cards)
	res.ExpansionsLoaded = len(expansions)
	return res, nil
}

// RecordRun appends one etl_metadata row. It runs outside any load
// transaction so failed runs are still recorded.
func (r *Repository) RecordRun(ctx context.Context, meta storage.RunMetadata) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO etl_metadata (run_at, cards_loaded, expansions_loaded, duration_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.RunAt.UTC().Format(time.RFC3339),
		meta.CardsLoaded, meta.ExpansionsLoaded,
		meta.Duration.Milliseconds(), meta.Status, meta.Error)
	if err != nil {
		return &storage.LoadError{Op: "record run", Err: err}
	}
	return nil
}

// Cards returns vw_card_details rows matching the filter, ordered by card id.
func (r *Repository) Cards(ctx context.Context, f storage.Filter) ([]storage.CardDetail, error) {
	where, args := f.WhereClause(storage.QuestionPlaceholder)
	q := `SELECT card_id, pokemon_name, card_type, card_number, set_total,
	       price, is_rare, rarity_level, rarity_score, price_category,
	       expansion_name, generation
	 FROM vw_card_details` + where + ` ORDER BY card_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query card details: %w", err)
	}
	defer rows.Close()

	var out []storage.CardDetail
	for rows.Next() {
		var d storage.CardDetail
		if err := rows.Scan(&d.CardID, &d.PokemonName, &d.CardType,
			&d.CardNumber, &d.SetTotal, &d.Price, &d.IsRare, &d.RarityLevel,
			&d.RarityScore, &d.PriceCategory, &d.ExpansionName, &d.Generation); err != nil {
			return nil, fmt.Errorf("scan card detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Statistics returns the single vw_statistics row.
func (r *Repository) Statistics(ctx context.Context) (storage.Statistics, error) {
	var s storage.Statistics
	err := r.db.QueryRowContext(ctx,
		`SELECT total_cards, unique_pokemon, total_expansions, avg_price,
		        min_price, max_price, rare_cards
		 FROM vw_statistics`).Scan(
		&s.TotalCards, &s.UniquePokemon, &s.TotalExpansions,
		&s.AvgPrice, &s.MinPrice, &s.MaxPrice, &s.RareCards)
	if err != nil {
		return s, fmt.Errorf("query statistics: %w", err)
	}
	return s, nil
}

// PricesByGeneration returns vw_prices_by_generation rows.
func (r *Repository) PricesByGeneration(ctx context.Context) ([]storage.GenerationPrice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT generation, card_count, avg_price, min_price, max_price
		 FROM vw_prices_by_generation`)
	if err != nil {
		return nil, fmt.Errorf("query prices by generation: %w", err)
	}
	defer rows.Close()

	var out []storage.GenerationPrice
	for rows.Next() {
		var g storage.GenerationPrice
		if err := rows.Scan(&g.Generation, &g.CardCount, &g.AvgPrice, &g.MinPrice, &g.MaxPrice); err != nil {
			return nil, fmt.Errorf("scan generation prices: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// RarityDistribution returns vw_rarity_distribution rows in tier order.
func (r *Repository) RarityDistribution(ctx context.Context) ([]storage.RarityShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rarity_level, card_count, percentage FROM vw_rarity_distribution`)
	if err != nil {
		return nil, fmt.Errorf("query rarity distribution: %w", err)
	}
	defer rows.Close()

	var out []storage.RarityShare
	for rows.Next() {
		var s storage.RarityShare
		if err := rows.Scan(&s.RarityLevel, &s.CardCount, &s.Percentage); err != nil {
			return nil, fmt.Errorf("scan rarity share: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type expansion struct {
	name       string
	generation string
}

// distinctExpansions extracts unique expansion name/generation pairs in
// first-seen order.
func distinctExpansions(cards []transform.CleanCard) []expansion {
	seen := make(map[string]struct{}, len(cards))
	var out []expansion
	for _, c := range cards {
		if _, ok := seen[c.ExpansionName]; ok {
			continue
		}
		seen[c.ExpansionName] = struct{}{}
		out = append(out, expansion{name: c.ExpansionName, generation: c.Generation})
	}
	return out
}

func expansionIDs(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT expansion_id, name FROM expansions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// isMemoryDSN reports whether the DSN refers to an in-memory database.
func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// filePathFromDSN strips the file: scheme and query parameters so the path
// can be stat'ed.
func filePathFromDSN(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}
