// Package storage contains the store-agnostic contracts of the load stage:
// the Repository interface, the run-metadata model, the read-side filter
// builder, and a driver registry that concrete backends (sqlite, postgres)
// register themselves with.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
)

// Run status values recorded in etl_metadata.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunMetadata is one append-only log entry per pipeline execution. It is
// written for successful and failed runs alike.
type RunMetadata struct {
	RunAt            time.Time
	CardsLoaded      int
	ExpansionsLoaded int
	Duration         time.Duration
	Status           string
	Error            string
}

// LoadResult summarizes a completed card load.
type LoadResult struct {
	CardsLoaded      int
	ExpansionsLoaded int
}

// ProgressFunc reports bulk-insert progress as (rows done, rows total).
type ProgressFunc func(done, total int)

// CardDetail is one row of vw_card_details: a card joined to its expansion.
type CardDetail struct {
	CardID        int64
	PokemonName   string
	CardType      string
	CardNumber    string
	SetTotal      int
	Price         float64
	IsRare        bool
	RarityLevel   string
	RarityScore   int
	PriceCategory string
	ExpansionName string
	Generation    string
}

// Statistics is the single row of vw_statistics.
type Statistics struct {
	TotalCards      int64
	UniquePokemon   int64
	TotalExpansions int64
	AvgPrice        float64
	MinPrice        float64
	MaxPrice        float64
	RareCards       int64
}

// GenerationPrice is one row of vw_prices_by_generation.
type GenerationPrice struct {
	Generation string
	CardCount  int64
	AvgPrice   float64
	MinPrice   float64
	MaxPrice   float64
}

// RarityShare is one row of vw_rarity_distribution. Percentage is computed
// against the total card count, rounded to 2 decimal places.
type RarityShare struct {
	RarityLevel string
	CardCount   int64
	Percentage  float64
}

// Repository is the storage contract the pipeline and the read-only
// presentation boundary program against.
//
// Write side: EnsureSchema creates tables, indices and views idempotently;
// ReplaceCards performs the full-reload card load inside one transaction
// (expansions are upserted by unique name, cards truncated then re-inserted);
// RecordRun appends one etl_metadata row and must work even after a failed
// load.
//
// Read side: the query methods are read-only parameterized selects against
// the precomputed views.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	ReplaceCards(ctx context.Context, cards []transform.CleanCard, progress ProgressFunc) (LoadResult, error)
	RecordRun(ctx context.Context, meta RunMetadata) error

	Cards(ctx context.Context, f Filter) ([]CardDetail, error)
	Statistics(ctx context.Context) (Statistics, error)
	PricesByGeneration(ctx context.Context) ([]GenerationPrice, error)
	RarityDistribution(ctx context.Context) ([]RarityShare, error)

	Close() error
}

// Options modifies how a repository is opened.
type Options struct {
	// MustExist requires the store to already exist and be populated; used by
	// the read-only commands so a missing store is reported as
	// ErrStoreNotFound instead of silently creating an empty database.
	MustExist bool
}

// Factory opens a concrete Repository for a DSN.
type Factory func(ctx context.Context, dsn string, opts Options) (Repository, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]Factory{}
)

// Register installs (or replaces) the factory for a driver name. It is called
// from backend packages' init() functions.
func Register(driver string, f Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[driver] = f
}

// Open locates the factory registered for driver and opens the repository.
func Open(ctx context.Context, driver, dsn string, opts Options) (Repository, error) {
	driversMu.RLock()
	f, ok := drivers[driver]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no driver registered for %q", driver)
	}
	return f(ctx, dsn, opts)
}
