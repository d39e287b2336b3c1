// File path: internal/gamedata/types_test.go
package gamedata

import "testing"

func TestParseVectorID(t *testing.T) {
	cases := []struct {
		id      string
		variant Variant
		numeric int64
		ok      bool
	}{
		{"weapon_12", VariantWeapon, 12, true},
		{"armor_3", VariantArmor, 3, true},
		{"perk_7_rank_2", VariantPerk, 7, true},
		{"legendary_perk_4_rank_1", VariantLegendaryPerk, 4, true},
		{"mutation_9", VariantMutation, 9, true},
		{"consumable_5", VariantConsumable, 5, true},
		{"weapon_abc", "", 0, false},
		{"unknown_1", "", 0, false},
		{"", "", 0, false},
	}
	for _, tc := range cases {
		variant, numeric, ok := ParseVectorID(tc.id)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v, want %v", tc.id, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if variant != tc.variant || numeric != tc.numeric {
			t.Fatalf("%q: got (%s, %d), want (%s, %d)", tc.id, variant, numeric, tc.variant, tc.numeric)
		}
	}
}

func TestParseVectorIDLegendaryBeforePerk(t *testing.T) {
	variant, id, ok := ParseVectorID("legendary_perk_2_rank_3")
	if !ok || variant != VariantLegendaryPerk || id != 2 {
		t.Fatalf("legendary perk id misparsed: %s %d %v", variant, id, ok)
	}
}

func TestHitKey(t *testing.T) {
	hit := Hit{Variant: VariantWeapon, ID: 42}
	if hit.Key() != "weapon:42" {
		t.Fatalf("unexpected key %q", hit.Key())
	}
}

func TestCategoryFilterLabel(t *testing.T) {
	filter := CategoryFilter{Variant: VariantWeapon, Pattern: "%shotgun%"}
	if filter.Label() != "shotgun" {
		t.Fatalf("unexpected label %q", filter.Label())
	}
}

func TestEnrichedTotal(t *testing.T) {
	var nilEnriched *Enriched
	if nilEnriched.Total() != 0 {
		t.Fatal("nil Enriched should total 0")
	}
	e := &Enriched{
		Weapons: []Weapon{{ID: 1}},
		Perks:   []Perk{{PerkID: 1, Rank: 1}, {PerkID: 1, Rank: 2}},
	}
	if e.Total() != 3 {
		t.Fatalf("expected 3, got %d", e.Total())
	}
}
