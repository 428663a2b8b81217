package transform

import (
	"errors"
	"testing"
)

func TestRunEndToEndRow(t *testing.T) {
	in := []RawRecord{{
		Line:       2,
		Pokemon:    "Charizard",
		Expansion:  "Base Set",
		CardType:   "Holofoil",
		CardNumber: "4",
		Price:      "$150.00",
		Rarity:     "Rare Holo",
	}}
	out, rep, err := Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	c := out[0]
	if c.PokemonName != "Charizard" {
		t.Errorf("pokemon_name = %q", c.PokemonName)
	}
	if c.CardType != TypeHolofoil {
		t.Errorf("card_type = %q", c.CardType)
	}
	if c.Price != 150.00 {
		t.Errorf("price = %v", c.Price)
	}
	if c.RarityLevel != RarityHoloRare {
		t.Errorf("rarity_level = %q, want %q", c.RarityLevel, RarityHoloRare)
	}
	if !c.IsRare {
		t.Errorf("is_rare = false, want true")
	}
	if c.Generation != "Generation 1" {
		t.Errorf("generation = %q, want Generation 1", c.Generation)
	}
	if rep.OutputCount != 1 || rep.RejectedCount != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	_, _, err := Run(nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestRunAllRejected(t *testing.T) {
	in := []RawRecord{
		{Line: 2, Pokemon: "  "},
		{Line: 3, Pokemon: ""},
	}
	_, rep, err := Run(in)
	if !errors.Is(err, ErrAllRejected) {
		t.Fatalf("err = %v, want ErrAllRejected", err)
	}
	if rep.RejectedCount != 2 || len(rep.Rejected) != 2 {
		t.Fatalf("report = %+v, want 2 rejections", rep)
	}
}

func TestRunPartialFailureTolerance(t *testing.T) {
	in := []RawRecord{
		{Line: 2, Pokemon: "Pikachu", Expansion: "Base Set", CardType: "Holofoil", CardNumber: "58", Price: "12.50"},
		{Line: 3, Pokemon: "", Price: "1.00"},                            // rejected: empty name
		{Line: 4, Pokemon: "Eevee", Expansion: "Jungle", Price: "oops"},  // kept: price defaults to 0
		{Line: 5, Pokemon: "Pikachu", Expansion: "Base Set", CardType: "Holofoil", CardNumber: "58", Price: "9.00"}, // duplicate
	}
	out, rep, err := Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.InputCount != 4 {
		t.Errorf("input_count = %d", rep.InputCount)
	}
	if rep.RejectedCount != 1 {
		t.Errorf("rejected_count = %d, want 1", rep.RejectedCount)
	}
	if rep.PriceWarningCount != 1 {
		t.Errorf("price_warning_count = %d, want 1", rep.PriceWarningCount)
	}
	if rep.DuplicateCount != 1 {
		t.Errorf("duplicate_count = %d, want 1", rep.DuplicateCount)
	}
	if rep.OutputCount != 2 || len(out) != 2 {
		t.Errorf("output_count = %d, len(out) = %d, want 2", rep.OutputCount, len(out))
	}
	// The surviving Pikachu is the higher-priced of the two duplicates.
	for _, c := range out {
		if c.PokemonName == "Pikachu" && c.Price != 12.50 {
			t.Errorf("kept duplicate has price %v, want 12.50", c.Price)
		}
	}
}

func TestRunPriceInvariant(t *testing.T) {
	in := []RawRecord{
		{Line: 2, Pokemon: "A", Price: "3.20"},
		{Line: 3, Pokemon: "B", Price: "-1"},
		{Line: 4, Pokemon: "C", Price: "garbage"},
	}
	out, rep, err := Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range out {
		if c.Price < 0 {
			t.Errorf("card %q has negative price %v", c.PokemonName, c.Price)
		}
	}
	if rep.PriceWarningCount != 2 {
		t.Errorf("price_warning_count = %d, want 2", rep.PriceWarningCount)
	}
}
