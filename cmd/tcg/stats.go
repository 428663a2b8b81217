package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/config"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	_ "github.com/ElGTahur/pokemon-tcg-analysis/internal/storage/all"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics from the loaded store",
	Long: `Stats prints the precomputed analysis views: overall collection
statistics, price aggregates per generation, and the rarity tier
distribution. It reads an existing store and never modifies it.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := config.FromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, storage.Options{MustExist: true})
	if err != nil {
		if errors.Is(err, storage.ErrStoreNotFound) {
			return fmt.Errorf("no card data at %s: run `tcg run` first", cfg.Storage.DSN)
		}
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	stats, err := repo.Statistics(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Collection")
	fmt.Printf("  Cards:       %s\n", humanize.Comma(stats.TotalCards))
	fmt.Printf("  Pokemon:     %s\n", humanize.Comma(stats.UniquePokemon))
	fmt.Printf("  Expansions:  %s\n", humanize.Comma(stats.TotalExpansions))
	fmt.Printf("  Rare cards:  %s\n", humanize.Comma(stats.RareCards))
	fmt.Printf("  Price:       avg %.2f, min %.2f, max %.2f\n",
		stats.AvgPrice, stats.MinPrice, stats.MaxPrice)

	gens, err := repo.PricesByGeneration(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\nPrices by generation")
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  GENERATION\tCARDS\tAVG\tMIN\tMAX")
	for _, g := range gens {
		fmt.Fprintf(w, "  %s\t%d\t%.2f\t%.2f\t%.2f\n",
			g.Generation, g.CardCount, g.AvgPrice, g.MinPrice, g.MaxPrice)
	}
	w.Flush()

	shares, err := repo.RarityDistribution(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\nRarity distribution")
	w = tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  RARITY\tCARDS\tSHARE")
	for _, s := range shares {
		fmt.Fprintf(w, "  %s\t%d\t%.2f%%\n", s.RarityLevel, s.CardCount, s.Percentage)
	}
	return w.Flush()
}
