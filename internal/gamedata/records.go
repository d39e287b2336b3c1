// File path: internal/gamedata/records.go
package gamedata

import (
	"fmt"
	"strings"
)

// Weapon is one row of v_weapons_with_perks, including the aggregated
// special-mechanics column (zero-to-many mechanics joined into one
// ";"-delimited field).
type Weapon struct {
	ID               int64  `db:"id"`
	Name             string `db:"weapon_name"`
	Type             string `db:"weapon_type"`
	Class            string `db:"weapon_class"`
	Damage           string `db:"damage"`
	RegularPerks     string `db:"regular_perks"`
	LegendaryPerks   string `db:"legendary_perks"`
	SpecialMechanics string `db:"special_mechanics"`
}

// Armor is one row of v_armor_complete.
type Armor struct {
	ID                  int64  `db:"id"`
	Name                string `db:"name"`
	ArmorType           string `db:"armor_type"`
	Class               string `db:"class"`
	Slot                string `db:"slot"`
	SetName             string `db:"set_name"`
	DamageResistance    string `db:"damage_resistance"`
	EnergyResistance    string `db:"energy_resistance"`
	RadiationResistance string `db:"radiation_resistance"`
}

// Perk is one rank row of v_perks_all_ranks. A perk recurs once per rank, so
// its identity key is (perk_id, rank).
type Perk struct {
	PerkID          int64  `db:"perk_id"`
	Name            string `db:"perk_name"`
	Special         string `db:"special"`
	MinLevel        int    `db:"min_level"`
	Race            string `db:"race"`
	Rank            int    `db:"rank"`
	RankDescription string `db:"rank_description"`
}

// LegendaryPerk is one rank row of v_legendary_perks_all_ranks.
type LegendaryPerk struct {
	LegendaryPerkID int64  `db:"legendary_perk_id"`
	Name            string `db:"perk_name"`
	Race            string `db:"race"`
	Rank            int    `db:"rank"`
	RankDescription string `db:"rank_description"`
}

// Mutation is one row of v_mutations_complete.
type Mutation struct {
	MutationID      int64  `db:"mutation_id"`
	Name            string `db:"mutation_name"`
	PositiveEffects string `db:"positive_effects"`
	NegativeEffects string `db:"negative_effects"`
	ExclusiveWith   string `db:"exclusive_with"`
	SuppressionPerk string `db:"suppression_perk"`
	EnhancementPerk string `db:"enhancement_perk"`
}

// Consumable is one row of v_consumables_complete.
type Consumable struct {
	ConsumableID     int64  `db:"consumable_id"`
	Name             string `db:"consumable_name"`
	Category         string `db:"category"`
	Effects          string `db:"effects"`
	SpecialModifiers string `db:"special_modifiers"`
}

// Enriched carries the full relational records resolved for one question,
// grouped by variant. Every group is always present; empty groups stay empty
// slices rather than disappearing.
type Enriched struct {
	Weapons        []Weapon
	Armor          []Armor
	Perks          []Perk
	LegendaryPerks []LegendaryPerk
	Mutations      []Mutation
	Consumables    []Consumable
}

// Total reports the number of records across all variants.
func (e *Enriched) Total() int {
	if e == nil {
		return 0
	}
	return len(e.Weapons) + len(e.Armor) + len(e.Perks) + len(e.LegendaryPerks) + len(e.Mutations) + len(e.Consumables)
}

// ContextLine serializes a weapon for the grounding prompt.
func (w Weapon) ContextLine() string {
	parts := []string{fmt.Sprintf("Weapon: %s", w.Name)}
	if w.Class != "" {
		parts = append(parts, "Class: "+w.Class)
	}
	if w.Type != "" {
		parts = append(parts, "Type: "+w.Type)
	}
	if w.Damage != "" {
		parts = append(parts, "Damage: "+w.Damage)
	}
	if w.RegularPerks != "" {
		parts = append(parts, "Affected by perks: "+strings.ReplaceAll(w.RegularPerks, ";", ","))
	}
	if w.LegendaryPerks != "" {
		parts = append(parts, "Legendary perks: "+strings.ReplaceAll(w.LegendaryPerks, ";", ","))
	}
	if w.SpecialMechanics != "" {
		parts = append(parts, "Special mechanics: "+w.SpecialMechanics)
	}
	return strings.Join(parts, ". ")
}

func (a Armor) ContextLine() string {
	parts := []string{fmt.Sprintf("Armor: %s", a.Name)}
	if a.ArmorType != "" {
		parts = append(parts, "Type: "+a.ArmorType)
	}
	if a.Class != "" {
		parts = append(parts, "Class: "+a.Class)
	}
	if a.Slot != "" {
		parts = append(parts, "Slot: "+a.Slot)
	}
	if a.SetName != "" {
		parts = append(parts, "Set: "+a.SetName)
	}
	var resist []string
	if a.DamageResistance != "" {
		resist = append(resist, "DR: "+a.DamageResistance)
	}
	if a.EnergyResistance != "" {
		resist = append(resist, "ER: "+a.EnergyResistance)
	}
	if a.RadiationResistance != "" {
		resist = append(resist, "RR: "+a.RadiationResistance)
	}
	if len(resist) > 0 {
		parts = append(parts, "Resistances: "+strings.Join(resist, ", "))
	}
	return strings.Join(parts, ". ")
}

func (p Perk) ContextLine() string {
	parts := []string{fmt.Sprintf("Perk: %s (rank %d)", p.Name, p.Rank)}
	if p.Special != "" {
		parts = append(parts, "SPECIAL: "+p.Special)
	}
	if p.Race != "" {
		parts = append(parts, "Race: "+p.Race)
	}
	if p.RankDescription != "" {
		parts = append(parts, "Effect: "+p.RankDescription)
	}
	return strings.Join(parts, ". ")
}

func (p LegendaryPerk) ContextLine() string {
	parts := []string{fmt.Sprintf("Legendary Perk: %s (rank %d)", p.Name, p.Rank)}
	if p.Race != "" {
		parts = append(parts, "Race: "+p.Race)
	}
	if p.RankDescription != "" {
		parts = append(parts, "Effect: "+p.RankDescription)
	}
	return strings.Join(parts, ". ")
}

func (m Mutation) ContextLine() string {
	parts := []string{fmt.Sprintf("Mutation: %s", m.Name)}
	if m.PositiveEffects != "" {
		parts = append(parts, "Positive: "+m.PositiveEffects)
	}
	if m.NegativeEffects != "" {
		parts = append(parts, "Negative: "+m.NegativeEffects)
	}
	if m.ExclusiveWith != "" {
		parts = append(parts, "Exclusive with: "+m.ExclusiveWith)
	}
	if m.SuppressionPerk != "" {
		parts = append(parts, "Suppressed by: "+m.SuppressionPerk)
	}
	if m.EnhancementPerk != "" {
		parts = append(parts, "Enhanced by: "+m.EnhancementPerk)
	}
	return strings.Join(parts, ". ")
}

func (c Consumable) ContextLine() string {
	parts := []string{fmt.Sprintf("Consumable: %s", c.Name)}
	if c.Category != "" {
		parts = append(parts, "Category: "+c.Category)
	}
	if c.Effects != "" {
		parts = append(parts, "Effects: "+c.Effects)
	}
	if c.SpecialModifiers != "" {
		parts = append(parts, "SPECIAL: "+c.SpecialModifiers)
	}
	return strings.Join(parts, ". ")
}
