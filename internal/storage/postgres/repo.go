// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. The card load runs DELETE + expansion upsert + COPY inside one
// transaction, so a run's writes become visible all-or-nothing.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, dsn string, opts storage.Options) (storage.Repository, error) {
		return Open(ctx, dsn, opts)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// Open connects a pgx pool for the DSN. With Options.MustExist, the cards
// table must already be present; a fresh database maps to
// storage.ErrStoreNotFound so read-only callers get the "run the pipeline
// first" state instead of a query failure.
func Open(ctx context.Context, dsn string, opts storage.Options) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &storage.SchemaError{Op: "parse dsn", Err: err}
	}
	cfg.MaxConns = 4
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &storage.SchemaError{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &storage.SchemaError{Op: "ping", Err: err}
	}

	if opts.MustExist {
		var reg *string
		if err := pool.QueryRow(ctx, `SELECT to_regclass('cards')::text`).Scan(&reg); err != nil || reg == nil {
			pool.Close()
			if err != nil {
				return nil, &storage.SchemaError{Op: "check schema", Err: err}
			}
			return nil, storage.ErrStoreNotFound
		}
	}
	return &Repository{pool: pool}, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates tables, indices and views.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return &storage.SchemaError{Op: "create schema", Err: err}
		}
	}
	return nil
}

var cardCopyColumns = []string{
	"expansion_id", "pokemon_name", "card_type", "card_number", "set_total",
	"price", "is_rare", "rarity_level", "rarity_score", "price_category",
}

// ReplaceCards truncates cards, upserts expansions by name, and bulk loads
// the new cards via COPY, all in one transaction.
func (r *Repository) ReplaceCards(ctx context.Context, cards []transform.CleanCard, progress storage.ProgressFunc) (storage.LoadResult, error) {
	var res storage.LoadResult

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return res, &storage.LoadError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cards`); err != nil {
		return res, &storage.LoadError{Op: "clear cards", Err: err}
	}

	expansions := distinctExpansions(cards)
	for _, e := range expansions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO expansions (name, generation) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			e.name, e.generation); err != nil {
			return res, &storage.LoadError{Op: "upsert expansion", Err: err}
		}
	}

	ids, err := expansionIDs(ctx, tx)
	if err != nil {
		return res, &storage.LoadError{Op: "resolve expansion ids", Err: err}
	}

	rows := make([][]any, 0, len(cards))
	for _, c := range cards {
		id, ok := ids[c.ExpansionName]
		if !ok {
			return res, &storage.LoadError{Op: "copy cards",
				Err: fmt.Errorf("no expansion id for %q", c.ExpansionName)}
		}
		rows = append(rows, []any{
			id, c.PokemonName, c.CardType, c.CardNumber, c.SetTotal,
			c.Price, c.IsRare, string(c.RarityLevel), c.RarityScore, c.PriceCategory,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"cards"}, cardCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return res, &storage.LoadError{Op: "copy cards", Err: err}
	}
	if progress != nil {
		progress(int(n), len(cards))
	}

	if err := tx.Commit(ctx); err != nil {
		return res, &storage.LoadError{Op: "commit", Err: err}
	}
	res.CardsLoaded = int(n)
	res.ExpansionsLoaded = len(expansions)
	return res, nil
}

// RecordRun appends one etl_metadata row outside any load transaction.
func (r *Repository) RecordRun(ctx context.Context, meta storage.RunMetadata) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO etl_metadata (run_at, cards_loaded, expansions_loaded, duration_ms, status, error)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		meta.RunAt.UTC(), meta.CardsLoaded, meta.ExpansionsLoaded,
		meta.Duration.Milliseconds(), meta.Status, meta.Error)
	if err != nil {
		return &storage.LoadError{Op: "record run", Err: err}
	}
	return nil
}

// Cards returns vw_card_details rows matching the filter.
func (r *Repository) Cards(ctx context.Context, f storage.Filter) ([]storage.CardDetail, error) {
	where, args := f.WhereClause(storage.DollarPlaceholder)
	q := `SELECT card_id, pokemon_name, card_type, card_number, set_total,
	       price, is_rare, rarity_level, rarity_score, price_category,
	       expansion_name, generation
	 FROM vw_card_details` + where + ` ORDER BY card_id`

	rows, err := r.pool.Query(ctx, q, args...)
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
	err := r.pool.QueryRow(ctx,
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
	rows, err := r.pool.Query(ctx,
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
	rows, err := r.pool.Query(ctx,
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

func expansionIDs(ctx context.Context, tx pgx.Tx) (map[string]int32, error) {
	rows, err := tx.Query(ctx, `SELECT expansion_id, name FROM expansions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]int32)
	for rows.Next() {
		var (
			id   int32
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}
