package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/storage"
	"github.com/ElGTahur/pokemon-tcg-analysis/internal/transform"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.db")
	repo, err := Open(context.Background(), path, storage.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func sampleCards() []transform.CleanCard {
	return []transform.CleanCard{
		{
			PokemonName: "Charizard", CardType: transform.TypeHolofoil,
			ExpansionName: "Base Set", Generation: "Generation 1",
			CardNumber: "4", SetTotal: 102, Price: 150.00,
			RarityLevel: transform.RarityHoloRare, RarityScore: 4, IsRare: true,
			PriceCategory: "Very High (>50)",
		},
		{
			PokemonName: "Pikachu", CardType: transform.TypeStandard,
			ExpansionName: "Base Set", Generation: "Generation 1",
			CardNumber: "58", SetTotal: 102, Price: 2.50,
			RarityLevel: transform.RarityCommon, RarityScore: 1, IsRare: false,
			PriceCategory: "Very Low (1-5)",
		},
		{
			PokemonName: "Mewtwo", CardType: transform.TypeHolofoil,
			ExpansionName: "Legendary Treasures", Generation: "Generation 5",
			CardNumber: "54", SetTotal: 113, Price: 22.00,
			RarityLevel: transform.RarityUltra, RarityScore: 5, IsRare: true,
			PriceCategory: "High (20-50)",
		},
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	repo := openTestRepo(t)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestReplaceCardsLoads(t *testing.T) {
	repo := openTestRepo(t)
	res, err := repo.ReplaceCards(context.Background(), sampleCards(), nil)
	if err != nil {
		t.Fatalf("ReplaceCards: %v", err)
	}
	if res.CardsLoaded != 3 || res.ExpansionsLoaded != 2 {
		t.Fatalf("result = %+v, want 3 cards / 2 expansions", res)
	}

	cards, err := repo.Cards(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("len(cards) = %d, want 3", len(cards))
	}
	got := cards[0]
	if got.PokemonName != "Charizard" || got.ExpansionName != "Base Set" ||
		got.Generation != "Generation 1" || !got.IsRare || got.Price != 150.00 {
		t.Fatalf("first card = %+v", got)
	}
}

func TestReplaceCardsRerunIsStable(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	var expansions, dupNames, cardCount int
	db := repo.DB()
	if err := db.QueryRow(`SELECT COUNT(*) FROM expansions`).Scan(&expansions); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM (SELECT name FROM expansions GROUP BY name HAVING COUNT(*) > 1)`).
		Scan(&dupNames); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if expansions != 2 || dupNames != 0 {
		t.Fatalf("expansions = %d (dup names %d), want 2 unique", expansions, dupNames)
	}
	if cardCount != 3 {
		t.Fatalf("cards = %d after rerun, want 3", cardCount)
	}
}

func TestExpansionDeleteCascades(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.DB().Exec(`DELETE FROM expansions WHERE name = 'Base Set'`); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := repo.DB().QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("cards after cascade = %d, want 1", n)
	}
}

func TestCardsFilter(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
		t.Fatal(err)
	}

	min := 10.0
	cards, err := repo.Cards(ctx, storage.Filter{
		MinPrice:   &min,
		CardTypes:  []string{transform.TypeHolofoil},
		NameSearch: "char",
	})
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 1 || cards[0].PokemonName != "Charizard" {
		t.Fatalf("filtered cards = %+v, want only Charizard", cards)
	}

	cards, err = repo.Cards(ctx, storage.Filter{Generation: "Generation 5"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].PokemonName != "Mewtwo" {
		t.Fatalf("generation filter = %+v, want only Mewtwo", cards)
	}
}

func TestStatisticsView(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
		t.Fatal(err)
	}
	s, err := repo.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if s.TotalCards != 3 || s.UniquePokemon != 3 || s.TotalExpansions != 2 {
		t.Fatalf("stats = %+v", s)
	}
	if s.RareCards != 2 {
		t.Fatalf("rare_cards = %d, want 2", s.RareCards)
	}
	if s.MaxPrice != 150.00 || s.MinPrice != 2.50 {
		t.Fatalf("price bounds = %v..%v", s.MinPrice, s.MaxPrice)
	}
}

func TestRarityDistributionSumsTo100(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
		t.Fatal(err)
	}
	shares, err := repo.RarityDistribution(ctx)
	if err != nil {
		t.Fatalf("RarityDistribution: %v", err)
	}
	if len(shares) == 0 {
		t.Fatal("no rarity shares")
	}
	var sum float64
	for _, s := range shares {
		sum += s.Percentage
	}
	if math.Abs(sum-100.0) > 0.05 {
		t.Fatalf("percentages sum to %v, want ~100.00", sum)
	}
}

func TestPricesByGeneration(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceCards(ctx, sampleCards(), nil); err != nil {
		t.Fatal(err)
	}
	rows, err := repo.PricesByGeneration(ctx)
	if err != nil {
		t.Fatalf("PricesByGeneration: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	for _, g := range rows {
		if g.Generation == "Generation 1" && g.CardCount != 2 {
			t.Fatalf("Generation 1 card_count = %d, want 2", g.CardCount)
		}
	}
}

func TestRecordRunAppends(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	runs := []storage.RunMetadata{
		{RunAt: time.Now(), CardsLoaded: 3, ExpansionsLoaded: 2,
			Duration: 1200 * time.Millisecond, Status: storage.StatusSuccess},
		{RunAt: time.Now(), Status: storage.StatusError, Error: "load error during insert card: boom"},
	}
	for _, m := range runs {
		if err := repo.RecordRun(ctx, m); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	var n int
	if err := repo.DB().QueryRow(
		`SELECT COUNT(*) FROM etl_metadata WHERE status = 'error' AND error <> ''`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("error runs = %d, want 1", n)
	}
}

func TestOpenMustExistMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := Open(context.Background(), path, storage.Options{MustExist: true})
	if !errors.Is(err, storage.ErrStoreNotFound) {
		t.Fatalf("err = %v, want ErrStoreNotFound", err)
	}
}

func TestOpenMustExistEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.db")
	repo, err := Open(context.Background(), path, storage.Options{})
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()

	// File exists but has no schema yet.
	_, err = Open(context.Background(), path, storage.Options{MustExist: true})
	if !errors.Is(err, storage.ErrStoreNotFound) {
		t.Fatalf("err = %v, want ErrStoreNotFound", err)
	}
}
