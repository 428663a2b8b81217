package transform

import "strings"

// rarityTokens is the fixed, ordered token table. Entries are checked in
// order, so more specific tokens must come before tokens they contain
// ("uncommon" before "common", "rare holo" before "rare").
var rarityTokens = []struct {
	token string
	tier  Rarity
}{
	{"secret rare", RarityUltra},
	{"ultra rare", RarityUltra},
	{"secret", RarityUltra},
	{"ultra", RarityUltra},
	{"rare holo", RarityHoloRare},
	{"holo rare", RarityHoloRare},
	{"holofoil rare", RarityHoloRare},
	{"holo", RarityHoloRare},
	{"uncommon", RarityUncommon},
	{"rare", RarityRare},
	{"common", RarityCommon},
}

// rareThreshold is the tier at or above which a card counts as rare.
const rareThreshold = RarityRare

// ClassifyRarity derives (rarity_level, rarity_score, is_rare) from the raw
// rarity token and the cleaned price.
//
// An explicit token always overrides price-based inference. When the token is
// absent or matches nothing, the tier is inferred from fixed price
// breakpoints: >=50 Ultra-Rare, >=20 Holo-Rare, >=10 Rare, >=5 Uncommon,
// else Common.
//
// IsRare is a pure function of the resulting tier (rank >= Rare); the score
// equals the tier rank, so it increases strictly with the tier ordering.
func ClassifyRarity(token string, price float64) (Rarity, int, bool) {
	tier, ok := tierFromToken(token)
	if !ok {
		tier = tierFromPrice(price)
	}
	return tier, tier.Rank(), tier.Rank() >= rareThreshold.Rank()
}

func tierFromToken(token string) (Rarity, bool) {
	folded := foldToken(token)
	if folded == "" {
		return "", false
	}
	for _, e := range rarityTokens {
		if strings.Contains(folded, e.token) {
			return e.tier, true
		}
	}
	return "", false
}

func tierFromPrice(price float64) Rarity {
	switch {
	case price >= 50:
		return RarityUltra
	case price >= 20:
		return RarityHoloRare
	case price >= 10:
		return RarityRare
	case price >= 5:
		return RarityUncommon
	default:
		return RarityCommon
	}
}
