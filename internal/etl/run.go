// Package etl orchestrates one end-to-end pipeline run: raw backup, CSV
// extract, transform, audit copy, and the transactional database load.
package etl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/config"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/extract"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/metrics"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/util"
)

// Summary describes a completed run.
type Summary struct {
	Report      *transform.Report
	Load        storage.LoadResult
	Duration    time.Duration
	BackupPath  string
	CleanedPath string
}

// Run executes the pipeline against an already-opened repository. Row-level
// problems are tolerated and surface in the summary report; stage-level
// failures abort the run. Every run that reaches the load stage leaves one
// etl_metadata row behind, success or not.
func Run(ctx context.Context, cfg config.Config, repo storage.Repository, progress storage.ProgressFunc) (*Summary, error) {
	start := time.Now()
	sum := &Summary{}

	// Schema first, so failed runs can still append their etl_metadata row.
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	if cfg.BackupDir != "" {
		dst := filepath.Join(cfg.BackupDir,
			fmt.Sprintf("pokemon_cards_%s.csv", start.Format("20060102_150405")))
		if err := extract.BackupRaw(cfg.InputPath, dst); err != nil {
			recordFailure(ctx, cfg, repo, start, err)
			return nil, fmt.Errorf("backup raw input: %w", err)
		}
		sum.BackupPath = dst
		util.DebugLog("raw input backed up to %s", dst)
	}

	extractStart := time.Now()
	reader := extract.NewReader(extract.Options{})
	raw, skipped, err := reader.ReadFile(cfg.InputPath)
	metrics.RecordStage(cfg.Metrics.Job, "extract", err, time.Since(extractStart))
	if err != nil {
		recordFailure(ctx, cfg, repo, start, err)
		return nil, fmt.Errorf("extract %s: %w", cfg.InputPath, err)
	}
	if skipped > 0 {
		util.WarnLog("skipped %d malformed rows in %s", skipped, cfg.InputPath)
	}
	util.InfoLog("extracted %s rows from %s", humanize.Comma(int64(len(raw))), cfg.InputPath)
	metrics.RecordCards(cfg.Metrics.Job, "read", int64(len(raw)))

	transformStart := time.Now()
	cards, report, err := transform.Run(raw)
	metrics.RecordStage(cfg.Metrics.Job, "transform", err, time.Since(transformStart))
	sum.Report = report
	if err != nil {
		recordFailure(ctx, cfg, repo, start, err)
		return sum, fmt.Errorf("transform batch: %w", err)
	}
	metrics.RecordCards(cfg.Metrics.Job, "rejected", int64(report.RejectedCount))
	metrics.RecordCards(cfg.Metrics.Job, "price_warnings", int64(report.PriceWarningCount))
	metrics.RecordCards(cfg.Metrics.Job, "duplicates", int64(report.DuplicateCount))
	for _, rej := range report.Rejected {
		util.DebugLog("rejected line %d: %s", rej.Line, rej.Reason)
	}
	util.InfoLog("transform kept %s of %s rows (%d rejected, %d duplicates, %d price warnings)",
		humanize.Comma(int64(report.OutputCount)), humanize.Comma(int64(report.InputCount)),
		report.RejectedCount, report.DuplicateCount, report.PriceWarningCount)

	if cfg.CleanedPath != "" {
		if err := extract.WriteCleaned(cfg.CleanedPath, cards); err != nil {
			recordFailure(ctx, cfg, repo, start, err)
			return sum, fmt.Errorf("write cleaned batch: %w", err)
		}
		sum.CleanedPath = cfg.CleanedPath
		util.DebugLog("cleaned batch written to %s", cfg.CleanedPath)
	}

	loadStart := time.Now()
	res, err := repo.ReplaceCards(ctx, cards, progress)
	metrics.RecordStage(cfg.Metrics.Job, "load", err, time.Since(loadStart))
	if err != nil {
		recordFailure(ctx, cfg, repo, start, err)
		return sum, fmt.Errorf("load cards: %w", err)
	}
	sum.Load = res
	sum.Duration = time.Since(start)
	metrics.RecordCards(cfg.Metrics.Job, "loaded", int64(res.CardsLoaded))
	metrics.RecordRuns(cfg.Metrics.Job, storage.StatusSuccess)

	meta := storage.RunMetadata{
		RunAt:            start,
		CardsLoaded:      res.CardsLoaded,
		ExpansionsLoaded: res.ExpansionsLoaded,
		Duration:         sum.Duration,
		Status:           storage.StatusSuccess,
	}
	if err := repo.RecordRun(ctx, meta); err != nil {
		util.WarnLog("record run metadata: %v", err)
	}

	if err := verify(ctx, repo, res); err != nil {
		return sum, fmt.Errorf("post-load verification: %w", err)
	}

	util.SuccessLog("loaded %s cards across %s expansions in %s",
		humanize.Comma(int64(res.CardsLoaded)),
		humanize.Comma(int64(res.ExpansionsLoaded)),
		sum.Duration.Round(time.Millisecond))
	return sum, nil
}

// verify cross-checks the statistics view against the load result so a load
// that silently dropped rows fails the run instead of going unnoticed.
func verify(ctx context.Context, repo storage.Repository, res storage.LoadResult) error {
	stats, err := repo.Statistics(ctx)
	if err != nil {
		return err
	}
	if int(stats.TotalCards) != res.CardsLoaded {
		return fmt.Errorf("store reports %d cards, load inserted %d", stats.TotalCards, res.CardsLoaded)
	}
	util.InfoLog("store check: %d cards, %d rare, avg price %.2f, max price %.2f",
		stats.TotalCards, stats.RareCards, stats.AvgPrice, stats.MaxPrice)
	return nil
}

// recordFailure appends an error row to etl_metadata. Failures here are
// logged, not returned: the original error matters more.
func recordFailure(ctx context.Context, cfg config.Config, repo storage.Repository, start time.Time, cause error) {
	metrics.RecordRuns(cfg.Metrics.Job, storage.StatusError)
	meta := storage.RunMetadata{
		RunAt:    start,
		Duration: time.Since(start),
		Status:   storage.StatusError,
		Error:    cause.Error(),
	}
	if err := repo.RecordRun(ctx, meta); err != nil {
		util.WarnLog("record run metadata: %v", err)
	}
}
