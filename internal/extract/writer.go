package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
)

// cleanedHeader mirrors the CleanCard fields in the order persisted to the
// audit file.
var cleanedHeader = []string{
	"pokemon_name", "card_type", "generation", "expansion_name",
	"card_number", "set_total", "price", "rarity_level", "rarity_score",
	"is_rare", "price_category",
}

// WriteCleaned writes the cleaned batch as a CSV audit file mirroring the
// CleanCard fields. The file is for inspection and debugging only; the store
// never reads it back.
func WriteCleaned(path string, cards []transform.CleanCard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cleaned file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cleanedHeader); err != nil {
		return fmt.Errorf("write cleaned header: %w", err)
	}
	for _, c := range cards {
		row := []string{
			c.PokemonName,
			c.CardType,
			c.Generation,
			c.ExpansionName,
			c.CardNumber,
			strconv.Itoa(c.SetTotal),
			strconv.FormatFloat(c.Price, 'f', 2, 64),
			string(c.RarityLevel),
			strconv.Itoa(c.RarityScore),
			strconv.FormatBool(c.IsRare),
			c.PriceCategory,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write cleaned row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush cleaned file: %w", err)
	}
	return nil
}

// BackupRaw copies the raw input verbatim to dst, creating parent
// directories as needed.
func BackupRaw(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open raw input: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy raw input: %w", err)
	}
	return out.Sync()
}
