// File path: internal/retriever/retriever_test.go
package retriever

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/store"
	"github.com/rofenac/fo76-ml-db/internal/vector"
)

type fakeProvider struct {
	embedCalls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return "answer", nil
}

func (p *fakeProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	p.embedCalls++
	vectors := make([][]float32, len(inputs))
	for i := range inputs {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type fakeIndex struct {
	results   []vector.SearchResult
	lastLimit int
	lastWhere map[string]any
	calls     int
	upserted  []vector.Doc
}

func (f *fakeIndex) Available() bool    { return true }
func (f *fakeIndex) Collection() string { return "fallout76" }

func (f *fakeIndex) Upsert(ctx context.Context, docs []vector.Doc, vectors [][]float32) error {
	f.upserted = append(f.upserted, docs...)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vec []float32, limit int, where map[string]any) ([]vector.SearchResult, error) {
	f.calls++
	f.lastLimit = limit
	f.lastWhere = where
	return f.results, nil
}

func newRetrieverStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := store.OpenWithConfig(store.Config{Path: path, LookupCacheSize: 8})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	seed := []string{
		`INSERT INTO weapons (id, name, weapon_type, weapon_class, damage) VALUES
                        (1, 'Combat Shotgun', 'Ranged', 'Shotgun', '60'),
                        (2, 'Pump Action Shotgun', 'Ranged', 'Shotgun', '55'),
                        (3, 'Gauss Shotgun', 'Ranged', 'Shotgun', '83'),
                        (4, 'The Fixer', 'Ranged', 'Rifle', '48')`,
		`INSERT INTO perks (id, name, special, min_level) VALUES (1, 'Shotgunner', 'Strength', 10)`,
		`INSERT INTO perk_ranks (perk_id, rank, description) VALUES
                        (1, 1, 'Shotguns do 10% more damage.'),
                        (1, 2, 'Shotguns do 15% more damage.')`,
		`INSERT INTO mutations (id, name, positive_effects) VALUES (1, 'Speed Demon', 'Faster movement and reload')`,
	}
	for _, stmt := range seed {
		_, err := s.DB().Exec(stmt)
		require.NoError(t, err)
	}
	return s
}

func TestVectorSearchParsesAndDeduplicates(t *testing.T) {
	index := &fakeIndex{results: []vector.SearchResult{
		{ID: "weapon_3", Distance: 0.1, Metadata: map[string]any{"type": "weapon", "name": "Gauss Shotgun"}},
		{ID: "perk_1_rank_1", Distance: 0.2, Metadata: map[string]any{"type": "perk"}},
		{ID: "perk_1_rank_2", Distance: 0.3, Metadata: map[string]any{"type": "perk"}},
		{ID: "bogus", Distance: 0.4},
	}}
	r := New(&fakeProvider{}, index, newRetrieverStore(t))

	hits, err := r.VectorSearch(context.Background(), "stealth shotgun synergy", 10)
	require.NoError(t, err)

	// Both perk rank entries collapse onto (perk, 1); the malformed id drops.
	require.Len(t, hits, 2)
	require.Equal(t, gamedata.VariantWeapon, hits[0].Variant)
	require.EqualValues(t, 3, hits[0].ID)
	require.Equal(t, "Gauss Shotgun", hits[0].Name)
	require.Equal(t, gamedata.VariantPerk, hits[1].Variant)
	require.EqualValues(t, 1, hits[1].ID)
}

func TestVectorSearchEmbedsOnce(t *testing.T) {
	provider := &fakeProvider{}
	r := New(provider, &fakeIndex{}, newRetrieverStore(t))

	_, err := r.VectorSearch(context.Background(), "anything", 5)
	require.NoError(t, err)
	require.Equal(t, 1, provider.embedCalls)
}

func TestCategorySearchIsCategoryComplete(t *testing.T) {
	// The index only knows about one shotgun; the catalog has three.
	index := &fakeIndex{results: []vector.SearchResult{
		{ID: "weapon_3", Distance: 0.05, Metadata: map[string]any{"type": "weapon", "name": "Gauss Shotgun"}},
		{ID: "weapon_4", Distance: 0.1, Metadata: map[string]any{"type": "weapon", "name": "The Fixer"}},
	}}
	r := New(&fakeProvider{}, index, newRetrieverStore(t))

	filter := gamedata.CategoryFilter{Variant: gamedata.VariantWeapon, Pattern: "%shotgun%"}
	result, err := r.CategorySearch(context.Background(), "recommend shotguns for stealth", filter, 10)
	require.NoError(t, err)
	require.True(t, result.CategoryComplete)

	// Every shotgun present, the rifle hit filtered out.
	require.Len(t, result.Hits, 3)
	ids := map[int64]bool{}
	for _, hit := range result.Hits {
		require.Equal(t, gamedata.VariantWeapon, hit.Variant)
		ids[hit.ID] = true
	}
	require.False(t, ids[4], "non-category hit must be excluded")

	// Ranked hit leads, unranked roster members carry infinite distance.
	require.EqualValues(t, 3, result.Hits[0].ID)
	require.Equal(t, 0.05, result.Hits[0].Distance)
	for _, hit := range result.Hits[1:] {
		require.True(t, math.IsInf(hit.Distance, 1))
	}
}

func TestCategorySearchUsesWideFilteredQuery(t *testing.T) {
	index := &fakeIndex{}
	r := New(&fakeProvider{}, index, newRetrieverStore(t))

	filter := gamedata.CategoryFilter{Variant: gamedata.VariantWeapon, Pattern: "%shotgun%"}
	_, err := r.CategorySearch(context.Background(), "best shotguns", filter, 5)
	require.NoError(t, err)
	require.Equal(t, categoryScanLimit, index.lastLimit)
	require.Equal(t, map[string]any{"type": "weapon"}, index.lastWhere)
}

func TestCategorySearchTruncatesRankedBlock(t *testing.T) {
	index := &fakeIndex{results: []vector.SearchResult{
		{ID: "weapon_1", Distance: 0.1, Metadata: map[string]any{"type": "weapon", "name": "Combat Shotgun"}},
		{ID: "weapon_2", Distance: 0.2, Metadata: map[string]any{"type": "weapon", "name": "Pump Action Shotgun"}},
		{ID: "weapon_3", Distance: 0.3, Metadata: map[string]any{"type": "weapon", "name": "Gauss Shotgun"}},
	}}
	r := New(&fakeProvider{}, index, newRetrieverStore(t))

	filter := gamedata.CategoryFilter{Variant: gamedata.VariantWeapon, Pattern: "%shotgun%"}
	result, err := r.CategorySearch(context.Background(), "best shotguns", filter, 2)
	require.NoError(t, err)

	// Two ranked, the third demoted to the unranked remainder, still present.
	require.Len(t, result.Hits, 3)
	require.EqualValues(t, 1, result.Hits[0].ID)
	require.EqualValues(t, 2, result.Hits[1].ID)
	require.True(t, math.IsInf(result.Hits[2].Distance, 1))
}

func TestCategorySearchRejectsNonWeaponVariant(t *testing.T) {
	r := New(&fakeProvider{}, &fakeIndex{}, newRetrieverStore(t))
	filter := gamedata.CategoryFilter{Variant: gamedata.VariantArmor, Pattern: "%heavy%"}
	_, err := r.CategorySearch(context.Background(), "best heavy armor", filter, 5)
	require.Error(t, err)
}

func TestEnrichGroupsAndOrders(t *testing.T) {
	r := New(&fakeProvider{}, &fakeIndex{}, newRetrieverStore(t))

	hits := []gamedata.Hit{
		{Variant: gamedata.VariantWeapon, ID: 3, Distance: 0.1},
		{Variant: gamedata.VariantPerk, ID: 1, Distance: 0.2},
		{Variant: gamedata.VariantWeapon, ID: 1, Distance: 0.3},
	}
	enriched, err := r.Enrich(context.Background(), hits, nil)
	require.NoError(t, err)

	require.Len(t, enriched.Weapons, 2)
	require.Equal(t, "Gauss Shotgun", enriched.Weapons[0].Name)
	require.Equal(t, "Combat Shotgun", enriched.Weapons[1].Name)

	require.Len(t, enriched.Perks, 2)
	require.Equal(t, 1, enriched.Perks[0].Rank)
	require.Equal(t, 2, enriched.Perks[1].Rank)

	require.Empty(t, enriched.Armor)
	require.Empty(t, enriched.Mutations)
}

func TestEnrichMergesNamedEntities(t *testing.T) {
	r := New(&fakeProvider{}, &fakeIndex{}, newRetrieverStore(t))

	hits := []gamedata.Hit{
		{Variant: gamedata.VariantWeapon, ID: 3, Distance: 0.1},
	}
	enriched, err := r.Enrich(context.Background(), hits, []string{"The Fixer", "Speed Demon", "Gauss Shotgun"})
	require.NoError(t, err)

	// Gauss Shotgun was already a hit and must not duplicate.
	require.Len(t, enriched.Weapons, 2)
	require.Equal(t, "Gauss Shotgun", enriched.Weapons[0].Name)
	require.Equal(t, "The Fixer", enriched.Weapons[1].Name)

	require.Len(t, enriched.Mutations, 1)
	require.Equal(t, "Speed Demon", enriched.Mutations[0].Name)
}

func TestReindexRoundTripsIDs(t *testing.T) {
	index := &fakeIndex{}
	r := New(&fakeProvider{}, index, newRetrieverStore(t))

	require.NoError(t, r.Reindex(context.Background()))

	// 4 weapons + 2 perk ranks + 1 mutation.
	require.Len(t, index.upserted, 7)
	for _, doc := range index.upserted {
		variant, id, ok := gamedata.ParseVectorID(doc.ID)
		require.True(t, ok, "unparseable id %q", doc.ID)
		require.True(t, variant.Valid())
		require.Positive(t, id)
		require.Equal(t, string(variant), doc.Metadata["type"])
		require.NotEmpty(t, doc.Text)
	}
}

func TestEnrichUnknownNameIsIgnored(t *testing.T) {
	r := New(&fakeProvider{}, &fakeIndex{}, newRetrieverStore(t))

	enriched, err := r.Enrich(context.Background(), nil, []string{"Definitely Not Real"})
	require.NoError(t, err)
	require.Equal(t, 0, enriched.Total())
}

func TestEnrichKeepsCachedRowsIntact(t *testing.T) {
	r := New(&fakeProvider{}, &fakeIndex{}, newRetrieverStore(t))
	ctx := context.Background()

	reversed := []gamedata.Hit{
		{Variant: gamedata.VariantWeapon, ID: 3, Distance: 0.1},
		{Variant: gamedata.VariantWeapon, ID: 1, Distance: 0.2},
	}
	first, err := r.Enrich(ctx, reversed, nil)
	require.NoError(t, err)
	require.Equal(t, "Gauss Shotgun", first.Weapons[0].Name)

	// Same id set, opposite rank order: the second question hits the lookup
	// cache and must see the original row order, not the first question's sort.
	forward := []gamedata.Hit{
		{Variant: gamedata.VariantWeapon, ID: 1, Distance: 0.1},
		{Variant: gamedata.VariantWeapon, ID: 3, Distance: 0.2},
	}
	second, err := r.Enrich(ctx, forward, nil)
	require.NoError(t, err)
	require.Equal(t, "Combat Shotgun", second.Weapons[0].Name)

	// The earlier result stays as it was delivered.
	require.Equal(t, "Gauss Shotgun", first.Weapons[0].Name)
}
