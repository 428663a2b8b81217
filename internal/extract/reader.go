// Package extract implements the file boundary of the pipeline: reading the
// raw delimited card file into typed records, and writing the raw backup and
// cleaned audit files.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/util"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// canonical column keys the reader resolves headers onto.
const (
	colPokemon    = "pokemon"
	colExpansion  = "expansion"
	colCardType   = "card_type"
	colCardNumber = "card_number"
	colPrice      = "price"
	colRarity     = "rarity"
)

// headerAliases resolves known source header spellings to canonical keys.
// The source file labels the expansion column "Generation" and the price
// column "Price Ł"; both quirks are handled here so the rest of the pipeline
// never sees them.
var headerAliases = map[string]string{
	"pokemon":      colPokemon,
	"pokemon name": colPokemon,
	"name":         colPokemon,
	"generation":   colExpansion,
	"expansion":    colExpansion,
	"set":          colExpansion,
	"card type":    colCardType,
	"type":         colCardType,
	"card number":  colCardNumber,
	"number":       colCardNumber,
	"price":        colPrice,
	"price ł":      colPrice,
	"price £":      colPrice,
	"rarity":       colRarity,
	"rarity level": colRarity,
}

// Options configures the reader. Zero values give sensible defaults.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// HeaderMap adds source-specific header spellings on top of the builtin
	// aliases, mapping raw header text to one of the canonical column keys.
	HeaderMap map[string]string
}

// Reader parses the raw card CSV into RawRecords. It is safe to reuse across
// inputs but is not concurrency-safe.
type Reader struct{ opt Options }

// NewReader constructs a Reader with the provided Options.
func NewReader(opt Options) *Reader { return &Reader{opt: opt} }

// Read consumes the delimited input and returns the raw records plus the
// number of rows skipped due to parse errors or width mismatches. Malformed
// rows soft-fail: they are logged, counted, and the batch continues.
//
// The header row is required, and must contain at least the pokemon,
// expansion, card type, and price columns; anything else is an input-shape
// error, not a row problem.
func (r *Reader) Read(in io.Reader) ([]transform.RawRecord, int, error) {
	cr := csv.NewReader(in)
	if r.opt.Comma != 0 {
		cr.Comma = r.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := r.resolveHeader(header)
	if err != nil {
		return nil, 0, err
	}

	cell := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out     []transform.RawRecord
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			util.DebugLog("skipping row %d: %v", line, err)
			skipped++
			continue
		}
		if len(row) != len(header) {
			util.DebugLog("skipping row %d: expected %d fields, got %d", line, len(header), len(row))
			skipped++
			continue
		}
		out = append(out, transform.RawRecord{
			Line:       line,
			Pokemon:    cell(row, colPokemon),
			Expansion:  cell(row, colExpansion),
			CardType:   cell(row, colCardType),
			CardNumber: cell(row, colCardNumber),
			Price:      cell(row, colPrice),
			Rarity:     cell(row, colRarity),
		})
	}
	return out, skipped, nil
}

// ReadFile opens path and delegates to Read.
func (r *Reader) ReadFile(path string) ([]transform.RawRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return r.Read(f)
}

// resolveHeader maps header cells to canonical column indexes and validates
// that the minimal required shape is present.
func (r *Reader) resolveHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, raw := range header {
		c := strings.TrimSpace(raw)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		key := strings.ToLower(strings.Join(strings.Fields(c), " "))
		if r.opt.HeaderMap != nil {
			if m, ok := r.opt.HeaderMap[c]; ok && m != "" {
				key = m
			}
		}
		if canonical, ok := headerAliases[key]; ok {
			key = canonical
		}
		if _, taken := idx[key]; !taken {
			idx[key] = i
		}
	}
	for _, required := range []string{colPokemon, colExpansion, colCardType, colPrice} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("input header missing required column %q", required)
		}
	}
	return idx, nil
}
