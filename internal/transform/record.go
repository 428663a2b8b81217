// Package transform implements the cleaning and enrichment stage of the
// card pipeline: field normalization, rarity classification, generation
// resolution, and de-duplication over a full batch of records.
package transform

// RawRecord is one untyped row as read from the source file. Every field is
// the raw cell text; no invariants are guaranteed. Line is the 1-based source
// line used in diagnostics.
type RawRecord struct {
	Line       int
	Pokemon    string
	Expansion  string
	CardType   string
	CardNumber string
	Price      string
	Rarity     string
}

// CleanCard is a fully cleaned and enriched card record. Invariants:
// PokemonName is non-empty, Price >= 0, RarityScore increases strictly with
// the rarity tier rank, and IsRare is true exactly when RarityLevel is at or
// above the rare threshold tier.
type CleanCard struct {
	PokemonName   string
	CardType      string
	ExpansionName string
	Generation    string
	CardNumber    string
	SetTotal      int
	Price         float64
	RarityLevel   Rarity
	RarityScore   int
	IsRare        bool
	PriceCategory string
}

// Rarity is an ordered tier describing a card's scarcity.
type Rarity string

const (
	RarityCommon   Rarity = "Common"
	RarityUncommon Rarity = "Uncommon"
	RarityRare     Rarity = "Rare"
	RarityHoloRare Rarity = "Holo-Rare"
	RarityUltra    Rarity = "Ultra-Rare"
)

// rarityRanks orders the tiers; the rank doubles as the numeric rarity score.
var rarityRanks = map[Rarity]int{
	RarityCommon:   1,
	RarityUncommon: 2,
	RarityRare:     3,
	RarityHoloRare: 4,
	RarityUltra:    5,
}

// Rank returns the ordinal position of the tier (Common=1 .. Ultra-Rare=5).
// Unknown tiers rank 0.
func (r Rarity) Rank() int {
	return rarityRanks[r]
}

// RarityLevels lists all tiers in ascending order of scarcity.
func RarityLevels() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityHoloRare, RarityUltra}
}

// Card type values in the closed normalized set.
const (
	TypeStandard        = "Standard"
	TypeHolofoil        = "Holofoil"
	TypeReverseHolofoil = "Reverse Holofoil"
	TypeFullArt         = "Full Art"
	TypePromo           = "Promo"
	TypeUnknown         = "Unknown"
)

// GenerationUnknown is the label assigned when no expansion pattern matches.
const GenerationUnknown = "Unknown"
