package transform

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser folds pokemon names into a consistent Title Case form.
var titleCaser = cases.Title(language.English)

// cardTypeAliases maps folded raw card-type strings onto the closed
// normalized set. Folding is lowercase with punctuation collapsed to spaces,
// so "Reverse-Holo", "reverse holofoil" and "REVERSE HOLO" all hit the same
// entry.
var cardTypeAliases = map[string]string{
	"standard":         TypeStandard,
	"normal":           TypeStandard,
	"regular":          TypeStandard,
	"holo":             TypeHolofoil,
	"holofoil":         TypeHolofoil,
	"holo foil":        TypeHolofoil,
	"reverse":          TypeReverseHolofoil,
	"reverse holo":     TypeReverseHolofoil,
	"reverse holofoil": TypeReverseHolofoil,
	"reverse foil":     TypeReverseHolofoil,
	"full art":         TypeFullArt,
	"fullart":          TypeFullArt,
	"promo":            TypePromo,
	"promotional":      TypePromo,
}

// currencyStripper removes currency symbols and thousands separators before
// the price is parsed. The source data uses "Ł" for pound sterling.
var currencyStripper = strings.NewReplacer(
	"Ł", "", "£", "", "$", "", "€", "", ",", "", " ", "", " ", "",
)

var cardNumberRe = regexp.MustCompile(`(?i)^\s*([A-Z]*\d+)\s*OF\s*(\d+)\s*$`)

// Normalize cleans a single raw row into a partially filled CleanCard:
// name, card type, expansion name, card number, set total, and price. Rarity
// and generation fields are filled by the later pipeline stages.
//
// A row with an empty pokemon name after trimming is rejected with a
// *ValidationError. An unparseable or negative price keeps the row, defaults
// the price to 0 and returns a price-parse warning entry.
func Normalize(r RawRecord) (CleanCard, []Warning, error) {
	var warns []Warning

	name := CleanName(r.Pokemon)
	if name == "" {
		return CleanCard{}, nil, &ValidationError{
			Line:   r.Line,
			Field:  "pokemon_name",
			Reason: "empty after trimming",
		}
	}

	price, ok := ParsePrice(r.Price)
	if !ok {
		warns = append(warns, Warning{
			Line:   r.Line,
			Kind:   WarnPriceParse,
			Field:  "price",
			Detail: "unparseable value " + strconv.Quote(r.Price) + ", defaulted to 0",
		})
	}

	number, total := parseCardNumber(r.CardNumber)

	expansion := collapseSpaces(r.Expansion)
	if expansion == "" {
		expansion = GenerationUnknown
	}

	return CleanCard{
		PokemonName:   name,
		CardType:      NormalizeCardType(r.CardType),
		ExpansionName: expansion,
		CardNumber:    number,
		SetTotal:      total,
		Price:         price,
		PriceCategory: PriceCategory(price),
	}, warns, nil
}

// CleanName trims, collapses internal whitespace, and title-cases a name.
func CleanName(s string) string {
	s = collapseSpaces(s)
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

// NormalizeCardType maps a raw card-type string onto the closed set; values
// that match no alias map to Unknown rather than being rejected.
func NormalizeCardType(s string) string {
	folded := foldToken(s)
	if folded == "" {
		return TypeUnknown
	}
	if t, ok := cardTypeAliases[folded]; ok {
		return t
	}
	return TypeUnknown
}

// ParsePrice strips currency symbols and separators and parses the remainder
// as a non-negative real number. The second return is false when the value
// could not be parsed (or was negative) and 0 was substituted.
func ParsePrice(s string) (float64, bool) {
	cleaned := currencyStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// PriceCategory buckets a price into the display category used by the
// dashboard views.
func PriceCategory(price float64) string {
	switch {
	case price >= 50:
		return "Very High (>50)"
	case price >= 20:
		return "High (20-50)"
	case price >= 10:
		return "Medium (10-20)"
	case price >= 5:
		return "Low (5-10)"
	case price >= 1:
		return "Very Low (1-5)"
	default:
		return "Basic (<1)"
	}
}

// parseCardNumber splits "4 OF 102" style values into the card number and
// the set total. Values in any other shape are kept verbatim with a zero
// total; an absent value yields an empty number.
func parseCardNumber(s string) (string, int) {
	s = collapseSpaces(s)
	if s == "" {
		return "", 0
	}
	m := cardNumberRe.FindStringSubmatch(s)
	if m == nil {
		return s, 0
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		total = 0
	}
	return strings.ToUpper(m[1]), total
}

// collapseSpaces trims and squeezes internal runs of whitespace to one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldToken lowercases and normalizes punctuation/whitespace for alias and
// token lookups.
func foldToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", ".", " ", "/", " ").Replace(s)
	return collapseSpaces(s)
}
