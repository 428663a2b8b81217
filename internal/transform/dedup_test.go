package transform

import (
	"reflect"
	"testing"
)

func card(name, expansion, typ, number string, price float64) CleanCard {
	return CleanCard{
		PokemonName:   name,
		ExpansionName: expansion,
		CardType:      typ,
		CardNumber:    number,
		Price:         price,
	}
}

func TestDedupKeepsHighestPrice(t *testing.T) {
	a := card("Pikachu", "Base Set", TypeHolofoil, "58", 12.50)
	b := card("Pikachu", "Base Set", TypeHolofoil, "58", 9.00)
	got, dropped := Dedup([]CleanCard{b, a})
	want := []CleanCard{a}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestDedupTieBreaksFirstSeen(t *testing.T) {
	first := card("Mew", "Fossil", TypePromo, "8", 5.00)
	first.SetTotal = 62 // distinguishes the two copies
	second := card("Mew", "Fossil", TypePromo, "8", 5.00)
	got, _ := Dedup([]CleanCard{first, second})
	if len(got) != 1 || got[0].SetTotal != 62 {
		t.Fatalf("got %#v, want the first-seen copy", got)
	}
}

func TestDedupDistinctKeysSurvive(t *testing.T) {
	in := []CleanCard{
		card("Pikachu", "Base Set", TypeHolofoil, "58", 12.50),
		card("Pikachu", "Base Set", TypeStandard, "58", 12.50),
		card("Pikachu", "Jungle", TypeHolofoil, "60", 3.00),
	}
	got, dropped := Dedup(in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %#v, want input unchanged", got)
	}
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
}

func TestDedupIdempotent(t *testing.T) {
	in := []CleanCard{
		card("Pikachu", "Base Set", TypeHolofoil, "58", 9.00),
		card("Pikachu", "Base Set", TypeHolofoil, "58", 12.50),
		card("Charizard", "Base Set", TypeHolofoil, "4", 150.00),
		card("Mew", "Fossil", TypePromo, "8", 5.00),
	}
	once, _ := Dedup(in)
	twice, dropped := Dedup(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed output: %#v vs %#v", once, twice)
	}
	if dropped != 0 {
		t.Fatalf("second pass dropped %d rows, want 0", dropped)
	}
}
