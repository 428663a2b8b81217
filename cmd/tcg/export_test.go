package main

import (
	"testing"
)

func TestFilterFromFlags(t *testing.T) {
	cmd := exportCmd
	for _, arg := range []string{"min-price", "max-price", "generation", "name"} {
		t.Cleanup(func() { cmd.Flags().Lookup(arg).Changed = false })
	}

	if err := cmd.Flags().Set("min-price", "5"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("generation", "Generation 1"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("name", "chu"); err != nil {
		t.Fatal(err)
	}

	f, err := filterFromFlags(cmd)
	if err != nil {
		t.Fatalf("filterFromFlags: %v", err)
	}
	if f.MinPrice == nil || *f.MinPrice != 5 {
		t.Errorf("MinPrice = %v, want 5", f.MinPrice)
	}
	if f.MaxPrice != nil {
		t.Errorf("MaxPrice = %v, want nil (flag unset)", f.MaxPrice)
	}
	if f.Generation != "Generation 1" || f.NameSearch != "chu" {
		t.Errorf("Generation/NameSearch = %q/%q", f.Generation, f.NameSearch)
	}
}

func TestFilterFromFlags_PriceRangeInverted(t *testing.T) {
	cmd := exportCmd
	t.Cleanup(func() {
		cmd.Flags().Lookup("min-price").Changed = false
		cmd.Flags().Lookup("max-price").Changed = false
	})

	if err := cmd.Flags().Set("min-price", "50"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("max-price", "10"); err != nil {
		t.Fatal(err)
	}

	if _, err := filterFromFlags(cmd); err == nil {
		t.Fatal("expected error for inverted price range")
	}
}
