package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/config"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/etl"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/metrics"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/metrics/prompush"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	_ "github.com/ElGTahur/pokemon-tcg-analysis/internal/storage/all"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/util"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: extract, clean, and load",
	Long: `Run reads the raw card CSV, backs it up, cleans and de-duplicates the
batch, writes a cleaned audit copy, and reloads the database in a single
transaction. A metadata row describing the run is appended whether the
run succeeds or fails.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringP("input", "i", "", "raw card CSV to ingest")
	runCmd.Flags().String("cleaned", "", "path for the cleaned CSV audit copy (empty to disable)")
	runCmd.Flags().String("backup-dir", "", "directory for raw input backups (empty to disable)")
	runCmd.Flags().String("metrics-gateway", "", "Prometheus Pushgateway URL (empty to disable metrics)")
	runCmd.Flags().String("metrics-job", "", "Pushgateway job name")

	viper.BindPFlag("input", runCmd.Flags().Lookup("input"))
	viper.BindPFlag("cleaned", runCmd.Flags().Lookup("cleaned"))
	viper.BindPFlag("backup-dir", runCmd.Flags().Lookup("backup-dir"))
	viper.BindPFlag("metrics-gateway", runCmd.Flags().Lookup("metrics-gateway"))
	viper.BindPFlag("metrics-job", runCmd.Flags().Lookup("metrics-job"))

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := config.FromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.InputPath); err != nil {
		return fmt.Errorf("input file not found: %s", cfg.InputPath)
	}

	if cfg.Metrics.GatewayURL != "" {
		backend, err := prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.GatewayURL)
		if err != nil {
			return fmt.Errorf("configure metrics: %w", err)
		}
		metrics.SetBackend(backend)
		defer func() {
			if err := metrics.Flush(); err != nil {
				util.WarnLog("push metrics: %v", err)
			}
		}()
	}

	util.InfoLog("Opening %s store: %s", cfg.Storage.Driver, cfg.Storage.DSN)
	repo, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, storage.Options{})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	sum, err := etl.Run(ctx, cfg, repo, loadProgress())
	if err != nil {
		return err
	}

	if !util.Quiet() && sum.Report != nil && sum.Report.RejectedCount > 0 {
		util.WarnLog("%d rows rejected; re-run with --verbose for line-level detail",
			sum.Report.RejectedCount)
	}
	return nil
}

// loadProgress renders a bulk-insert progress bar on interactive runs and
// stays silent otherwise.
func loadProgress() storage.ProgressFunc {
	if util.Quiet() {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Loading cards"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
}
