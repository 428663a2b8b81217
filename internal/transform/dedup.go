package transform

import (
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// Dedup removes duplicate logical records from a cleaned batch. Two cards are
// duplicates when they agree on the identity key (pokemon_name,
// expansion_name, card_type, card_number).
//
// Keep-rule: among duplicates the card with the highest price survives; ties
// break toward the first-seen occurrence.
//
// The returned batch preserves first-seen key order, so Dedup is idempotent:
// applying it to its own output is a no-op. The second return is the number
// of rows dropped.
func Dedup(cards []CleanCard) ([]CleanCard, int) {
	if len(cards) < 2 {
		return cards, 0
	}

	type slot struct {
		card  CleanCard
		first int // first-seen position of the key, fixes output order
	}

	winners := make(map[uint64]slot, len(cards))
	for i, c := range cards {
		k := identityKey(c)
		prev, seen := winners[k]
		if !seen {
			winners[k] = slot{card: c, first: i}
			continue
		}
		if c.Price > prev.card.Price {
			prev.card = c
			winners[k] = prev
		}
	}

	out := make([]CleanCard, 0, len(winners))
	order := make([]slot, 0, len(winners))
	for _, s := range winners {
		order = append(order, s)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].first < order[j].first })
	for _, s := range order {
		out = append(out, s.card)
	}
	return out, len(cards) - len(out)
}

// identityKey hashes the composed identity fields. Fields are joined with an
// unlikely separator so ("ab","c") and ("a","bc") cannot collide textually.
func identityKey(c CleanCard) uint64 {
	var b strings.Builder
	b.WriteString(c.PokemonName)
	b.WriteByte('\x1f')
	b.WriteString(c.ExpansionName)
	b.WriteByte('\x1f')
	b.WriteString(c.CardType)
	b.WriteByte('\x1f')
	b.WriteString(c.CardNumber)
	return xxh3.HashString(b.String())
}
