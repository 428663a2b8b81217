package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/config"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	_ "github.com/ElGTahur/pokemon-tcg-analysis/internal/storage/all"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered card details as CSV",
	Long: `Export queries the card details view with the given filters and writes
the matching rows as CSV to stdout, or to a file with --out. All filters
combine with AND; omitted filters match everything.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Float64("min-price", 0, "minimum price (inclusive)")
	exportCmd.Flags().Float64("max-price", 0, "maximum price (inclusive)")
	exportCmd.Flags().StringSlice("type", nil, "card types to include (repeatable)")
	exportCmd.Flags().StringSlice("rarity", nil, "rarity tiers to include (repeatable)")
	exportCmd.Flags().String("generation", "", "generation label to match")
	exportCmd.Flags().String("expansion", "", "expansion name to match")
	exportCmd.Flags().String("name", "", "case-insensitive substring of the Pokemon name")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}

var exportHeader = []string{
	"card_id", "pokemon_name", "card_type", "card_number", "set_total",
	"price", "is_rare", "rarity_level", "rarity_score", "price_category",
	"expansion_name", "generation",
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := config.FromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := filterFromFlags(cmd)
	if err != nil {
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

	cards, err := repo.Cards(ctx, f)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
		defer util.InfoLog("exported %d cards to %s", len(cards), path)
	}

	w := csv.NewWriter(out)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, c := range cards {
		row := []string{
			strconv.FormatInt(c.CardID, 10),
			c.PokemonName,
			c.CardType,
			c.CardNumber,
			strconv.Itoa(c.SetTotal),
			strconv.FormatFloat(c.Price, 'f', 2, 64),
			strconv.FormatBool(c.IsRare),
			c.RarityLevel,
			strconv.Itoa(c.RarityScore),
			c.PriceCategory,
			c.ExpansionName,
			c.Generation,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func filterFromFlags(cmd *cobra.Command) (storage.Filter, error) {
	var f storage.Filter

	if cmd.Flags().Changed("min-price") {
		v, err := cmd.Flags().GetFloat64("min-price")
		if err != nil {
			return f, err
		}
		f.MinPrice = &v
	}
	if cmd.Flags().Changed("max-price") {
		v, err := cmd.Flags().GetFloat64("max-price")
		if err != nil {
			return f, err
		}
		f.MaxPrice = &v
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, fmt.Errorf("min-price %.2f exceeds max-price %.2f", *f.MinPrice, *f.MaxPrice)
	}

	f.CardTypes, _ = cmd.Flags().GetStringSlice("type")
	f.RarityLevels, _ = cmd.Flags().GetStringSlice("rarity")
	f.Generation, _ = cmd.Flags().GetString("generation")
	f.Expansion, _ = cmd.Flags().GetString("expansion")
	f.NameSearch, _ = cmd.Flags().GetString("name")
	return f, nil
}
