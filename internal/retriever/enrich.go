// File path: internal/retriever/enrich.go
package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/gamedata"
)

// Enrich resolves hits into full relational records, one batched query per
// variant, and merges records matching explicitly named entities. Hit order
// is preserved within each variant; named-entity rows the hits missed are
// appended. Duplicates collapse on (variant, id), perks on (id, rank).
func (r *Retriever) Enrich(ctx context.Context, hits []gamedata.Hit, names []string) (*gamedata.Enriched, error) {
	idsByVariant := make(map[gamedata.Variant][]int64)
	rank := make(map[string]int, len(hits))
	for i, hit := range hits {
		if _, dup := rank[hit.Key()]; dup {
			continue
		}
		rank[hit.Key()] = i
		idsByVariant[hit.Variant] = append(idsByVariant[hit.Variant], hit.ID)
	}

	enriched := &gamedata.Enriched{}
	var err error
	if enriched.Weapons, err = r.store.WeaponsByIDs(ctx, idsByVariant[gamedata.VariantWeapon]); err != nil {
		return nil, fmt.Errorf("enrich weapons: %w", err)
	}
	if enriched.Armor, err = r.store.ArmorByIDs(ctx, idsByVariant[gamedata.VariantArmor]); err != nil {
		return nil, fmt.Errorf("enrich armor: %w", err)
	}
	if enriched.Perks, err = r.store.PerksByIDs(ctx, idsByVariant[gamedata.VariantPerk]); err != nil {
		return nil, fmt.Errorf("enrich perks: %w", err)
	}
	if enriched.LegendaryPerks, err = r.store.LegendaryPerksByIDs(ctx, idsByVariant[gamedata.VariantLegendaryPerk]); err != nil {
		return nil, fmt.Errorf("enrich legendary perks: %w", err)
	}
	if enriched.Mutations, err = r.store.MutationsByIDs(ctx, idsByVariant[gamedata.VariantMutation]); err != nil {
		return nil, fmt.Errorf("enrich mutations: %w", err)
	}
	if enriched.Consumables, err = r.store.ConsumablesByIDs(ctx, idsByVariant[gamedata.VariantConsumable]); err != nil {
		return nil, fmt.Errorf("enrich consumables: %w", err)
	}

	if err := r.mergeNamedEntities(ctx, enriched, names); err != nil {
		return nil, err
	}

	orderByRank(enriched, rank)
	return enriched, nil
}

// mergeNamedEntities looks every extracted name up across all variants and
// appends any record not already present. A name that matches nothing is
// silently dropped.
func (r *Retriever) mergeNamedEntities(ctx context.Context, enriched *gamedata.Enriched, names []string) error {
	if len(names) == 0 {
		return nil
	}
	logger := common.Logger()

	haveWeapon := make(map[int64]struct{}, len(enriched.Weapons))
	for _, w := range enriched.Weapons {
		haveWeapon[w.ID] = struct{}{}
	}
	haveArmor := make(map[int64]struct{}, len(enriched.Armor))
	for _, a := range enriched.Armor {
		haveArmor[a.ID] = struct{}{}
	}
	havePerk := make(map[[2]int64]struct{}, len(enriched.Perks))
	for _, p := range enriched.Perks {
		havePerk[[2]int64{p.PerkID, int64(p.Rank)}] = struct{}{}
	}
	haveLegendary := make(map[[2]int64]struct{}, len(enriched.LegendaryPerks))
	for _, p := range enriched.LegendaryPerks {
		haveLegendary[[2]int64{p.LegendaryPerkID, int64(p.Rank)}] = struct{}{}
	}
	haveMutation := make(map[int64]struct{}, len(enriched.Mutations))
	for _, m := range enriched.Mutations {
		haveMutation[m.MutationID] = struct{}{}
	}
	haveConsumable := make(map[int64]struct{}, len(enriched.Consumables))
	for _, c := range enriched.Consumables {
		haveConsumable[c.ConsumableID] = struct{}{}
	}

	for _, name := range names {
		matched := false
		weapons, err := r.store.WeaponsByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup weapon %q: %w", name, err)
		}
		for _, w := range weapons {
			matched = true
			if _, dup := haveWeapon[w.ID]; dup {
				continue
			}
			haveWeapon[w.ID] = struct{}{}
			enriched.Weapons = append(enriched.Weapons, w)
		}

		armor, err := r.store.ArmorByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup armor %q: %w", name, err)
		}
		for _, a := range armor {
			matched = true
			if _, dup := haveArmor[a.ID]; dup {
				continue
			}
			haveArmor[a.ID] = struct{}{}
			enriched.Armor = append(enriched.Armor, a)
		}

		perks, err := r.store.PerksByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup perk %q: %w", name, err)
		}
		for _, p := range perks {
			matched = true
			key := [2]int64{p.PerkID, int64(p.Rank)}
			if _, dup := havePerk[key]; dup {
				continue
			}
			havePerk[key] = struct{}{}
			enriched.Perks = append(enriched.Perks, p)
		}

		legendaries, err := r.store.LegendaryPerksByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup legendary perk %q: %w", name, err)
		}
		for _, p := range legendaries {
			matched = true
			key := [2]int64{p.LegendaryPerkID, int64(p.Rank)}
			if _, dup := haveLegendary[key]; dup {
				continue
			}
			haveLegendary[key] = struct{}{}
			enriched.LegendaryPerks = append(enriched.LegendaryPerks, p)
		}

		mutations, err := r.store.MutationsByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup mutation %q: %w", name, err)
		}
		for _, m := range mutations {
			matched = true
			if _, dup := haveMutation[m.MutationID]; dup {
				continue
			}
			haveMutation[m.MutationID] = struct{}{}
			enriched.Mutations = append(enriched.Mutations, m)
		}

		consumables, err := r.store.ConsumablesByNameSubstring(ctx, name)
		if err != nil {
			return fmt.Errorf("lookup consumable %q: %w", name, err)
		}
		for _, c := range consumables {
			matched = true
			if _, dup := haveConsumable[c.ConsumableID]; dup {
				continue
			}
			haveConsumable[c.ConsumableID] = struct{}{}
			enriched.Consumables = append(enriched.Consumables, c)
		}

		if !matched {
			logger.Debug("retriever: named entity matched nothing", "name", name)
		}
	}
	return nil
}

// orderByRank sorts each variant group by hit rank. Rows without a rank
// (named-entity additions) keep their relative order behind ranked rows.
func orderByRank(enriched *gamedata.Enriched, rank map[string]int) {
	pos := func(variant gamedata.Variant, id int64) int {
		if r, ok := rank[fmt.Sprintf("%s:%d", variant, id)]; ok {
			return r
		}
		return int(^uint(0) >> 1)
	}
	sort.SliceStable(enriched.Weapons, func(i, j int) bool {
		return pos(gamedata.VariantWeapon, enriched.Weapons[i].ID) < pos(gamedata.VariantWeapon, enriched.Weapons[j].ID)
	})
	sort.SliceStable(enriched.Armor, func(i, j int) bool {
		return pos(gamedata.VariantArmor, enriched.Armor[i].ID) < pos(gamedata.VariantArmor, enriched.Armor[j].ID)
	})
	sort.SliceStable(enriched.Perks, func(i, j int) bool {
		pi := pos(gamedata.VariantPerk, enriched.Perks[i].PerkID)
		pj := pos(gamedata.VariantPerk, enriched.Perks[j].PerkID)
		if pi != pj {
			return pi < pj
		}
		return enriched.Perks[i].Rank < enriched.Perks[j].Rank
	})
	sort.SliceStable(enriched.LegendaryPerks, func(i, j int) bool {
		pi := pos(gamedata.VariantLegendaryPerk, enriched.LegendaryPerks[i].LegendaryPerkID)
		pj := pos(gamedata.VariantLegendaryPerk, enriched.LegendaryPerks[j].LegendaryPerkID)
		if pi != pj {
			return pi < pj
		}
		return enriched.LegendaryPerks[i].Rank < enriched.LegendaryPerks[j].Rank
	})
	sort.SliceStable(enriched.Mutations, func(i, j int) bool {
		return pos(gamedata.VariantMutation, enriched.Mutations[i].MutationID) < pos(gamedata.VariantMutation, enriched.Mutations[j].MutationID)
	})
	sort.SliceStable(enriched.Consumables, func(i, j int) bool {
		return pos(gamedata.VariantConsumable, enriched.Consumables[i].ConsumableID) < pos(gamedata.VariantConsumable, enriched.Consumables[j].ConsumableID)
	})
}
