// File path: internal/store/queries.go
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/rofenac/fo76-ml-db/internal/gamedata"
)

// ErrNotReadOnly reports a generated statement that is not a bare SELECT.
var ErrNotReadOnly = errors.New("store: only SELECT statements are permitted")

func idsKey(prefix string, ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return prefix + ":" + strings.Join(parts, ",")
}

func selectIn[T any](ctx context.Context, db *sqlx.DB, query string, ids []int64) ([]T, error) {
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, fmt.Errorf("expand id list: %w", err)
	}
	var rows []T
	if err := db.SelectContext(ctx, &rows, db.Rebind(expanded), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// WeaponsByIDs resolves weapon rows for the given ids in one batched query.
func (s *Store) WeaponsByIDs(ctx context.Context, ids []int64) ([]gamedata.Weapon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("weapons:ids", ids), func() ([]gamedata.Weapon, error) {
		rows, err := selectIn[gamedata.Weapon](ctx, s.db,
			`SELECT id, weapon_name, weapon_type, weapon_class, damage, regular_perks, legendary_perks, special_mechanics
                         FROM v_weapons_with_perks WHERE id IN (?) ORDER BY weapon_name`, ids)
		if err != nil {
			return nil, fmt.Errorf("weapons by ids: %w", err)
		}
		return rows, nil
	})
}

// ArmorByIDs resolves armor rows for the given ids in one batched query.
func (s *Store) ArmorByIDs(ctx context.Context, ids []int64) ([]gamedata.Armor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("armor:ids", ids), func() ([]gamedata.Armor, error) {
		rows, err := selectIn[gamedata.Armor](ctx, s.db,
			`SELECT id, name, armor_type, class, slot, set_name, damage_resistance, energy_resistance, radiation_resistance
                         FROM v_armor_complete WHERE id IN (?) ORDER BY name`, ids)
		if err != nil {
			return nil, fmt.Errorf("armor by ids: %w", err)
		}
		return rows, nil
	})
}

// PerksByIDs resolves every rank of the given perks. A perk contributes one
// row per rank.
func (s *Store) PerksByIDs(ctx context.Context, ids []int64) ([]gamedata.Perk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("perks:ids", ids), func() ([]gamedata.Perk, error) {
		rows, err := selectIn[gamedata.Perk](ctx, s.db,
			`SELECT perk_id, perk_name, special, min_level, race, rank, rank_description
                         FROM v_perks_all_ranks WHERE perk_id IN (?) ORDER BY perk_name, rank`, ids)
		if err != nil {
			return nil, fmt.Errorf("perks by ids: %w", err)
		}
		return rows, nil
	})
}

// LegendaryPerksByIDs resolves every rank of the given legendary perks.
func (s *Store) LegendaryPerksByIDs(ctx context.Context, ids []int64) ([]gamedata.LegendaryPerk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("legendary_perks:ids", ids), func() ([]gamedata.LegendaryPerk, error) {
		rows, err := selectIn[gamedata.LegendaryPerk](ctx, s.db,
			`SELECT legendary_perk_id, perk_name, race, rank, rank_description
                         FROM v_legendary_perks_all_ranks WHERE legendary_perk_id IN (?) ORDER BY perk_name, rank`, ids)
		if err != nil {
			return nil, fmt.Errorf("legendary perks by ids: %w", err)
		}
		return rows, nil
	})
}

// MutationsByIDs resolves mutation rows for the given ids.
func (s *Store) MutationsByIDs(ctx context.Context, ids []int64) ([]gamedata.Mutation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("mutations:ids", ids), func() ([]gamedata.Mutation, error) {
		rows, err := selectIn[gamedata.Mutation](ctx, s.db,
			`SELECT mutation_id, mutation_name, positive_effects, negative_effects, exclusive_with, suppression_perk, enhancement_perk
                         FROM v_mutations_complete WHERE mutation_id IN (?) ORDER BY mutation_name`, ids)
		if err != nil {
			return nil, fmt.Errorf("mutations by ids: %w", err)
		}
		return rows, nil
	})
}

// ConsumablesByIDs resolves consumable rows for the given ids.
func (s *Store) ConsumablesByIDs(ctx context.Context, ids []int64) ([]gamedata.Consumable, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return getOrCompute(s.cache, idsKey("consumables:ids", ids), func() ([]gamedata.Consumable, error) {
		rows, err := selectIn[gamedata.Consumable](ctx, s.db,
			`SELECT consumable_id, consumable_name, category, effects, special_modifiers
                         FROM v_consumables_complete WHERE consumable_id IN (?) ORDER BY consumable_name`, ids)
		if err != nil {
			return nil, fmt.Errorf("consumables by ids: %w", err)
		}
		return rows, nil
	})
}

// WeaponsByClassPattern returns every weapon whose class matches the LIKE
// pattern. The result is deliberately unbounded: category-complete retrieval
// depends on this being the full class roster, not a page of it.
func (s *Store) WeaponsByClassPattern(ctx context.Context, pattern string) ([]gamedata.Weapon, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return nil, errors.New("class pattern required")
	}
	return getOrCompute(s.cache, "weapons:class:"+strings.ToLower(trimmed), func() ([]gamedata.Weapon, error) {
		var rows []gamedata.Weapon
		err := s.db.SelectContext(ctx, &rows,
			`SELECT id, weapon_name, weapon_type, weapon_class, damage, regular_perks, legendary_perks, special_mechanics
                         FROM v_weapons_with_perks WHERE LOWER(weapon_class) LIKE LOWER(?) ORDER BY weapon_name`, trimmed)
		if err != nil {
			return nil, fmt.Errorf("weapons by class: %w", err)
		}
		return rows, nil
	})
}

// WeaponsByNameSubstring resolves weapons whose name contains the fragment,
// case-insensitively. Named-entity lookups route through here.
func (s *Store) WeaponsByNameSubstring(ctx context.Context, fragment string) ([]gamedata.Weapon, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "weapons:name:"+strings.ToLower(trimmed), func() ([]gamedata.Weapon, error) {
		var rows []gamedata.Weapon
		err := s.db.SelectContext(ctx, &rows,
			`SELECT id, weapon_name, weapon_type, weapon_class, damage, regular_perks, legendary_perks, special_mechanics
                         FROM v_weapons_with_perks WHERE LOWER(weapon_name) LIKE LOWER(?) ORDER BY weapon_name`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("weapons by name: %w", err)
		}
		return rows, nil
	})
}

// ArmorByNameSubstring resolves armor pieces whose name contains the fragment.
func (s *Store) ArmorByNameSubstring(ctx context.Context, fragment string) ([]gamedata.Armor, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "armor:name:"+strings.ToLower(trimmed), func() ([]gamedata.Armor, error) {
		var rows []gamedata.Armor
		err := s.db.SelectContext(ctx, &rows,
			`SELECT id, name, armor_type, class, slot, set_name, damage_resistance, energy_resistance, radiation_resistance
                         FROM v_armor_complete WHERE LOWER(name) LIKE LOWER(?) ORDER BY name`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("armor by name: %w", err)
		}
		return rows, nil
	})
}

// PerksByNameSubstring resolves all ranks of perks whose name contains the
// fragment.
func (s *Store) PerksByNameSubstring(ctx context.Context, fragment string) ([]gamedata.Perk, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "perks:name:"+strings.ToLower(trimmed), func() ([]gamedata.Perk, error) {
		var rows []gamedata.Perk
		err := s.db.SelectContext(ctx, &rows,
			`SELECT perk_id, perk_name, special, min_level, race, rank, rank_description
                         FROM v_perks_all_ranks WHERE LOWER(perk_name) LIKE LOWER(?) ORDER BY perk_name, rank`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("perks by name: %w", err)
		}
		return rows, nil
	})
}

// LegendaryPerksByNameSubstring resolves all ranks of legendary perks whose
// name contains the fragment.
func (s *Store) LegendaryPerksByNameSubstring(ctx context.Context, fragment string) ([]gamedata.LegendaryPerk, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "legendary_perks:name:"+strings.ToLower(trimmed), func() ([]gamedata.LegendaryPerk, error) {
		var rows []gamedata.LegendaryPerk
		err := s.db.SelectContext(ctx, &rows,
			`SELECT legendary_perk_id, perk_name, race, rank, rank_description
                         FROM v_legendary_perks_all_ranks WHERE LOWER(perk_name) LIKE LOWER(?) ORDER BY perk_name, rank`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("legendary perks by name: %w", err)
		}
		return rows, nil
	})
}

// MutationsByNameSubstring resolves mutations whose name contains the
// fragment.
func (s *Store) MutationsByNameSubstring(ctx context.Context, fragment string) ([]gamedata.Mutation, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "mutations:name:"+strings.ToLower(trimmed), func() ([]gamedata.Mutation, error) {
		var rows []gamedata.Mutation
		err := s.db.SelectContext(ctx, &rows,
			`SELECT mutation_id, mutation_name, positive_effects, negative_effects, exclusive_with, suppression_perk, enhancement_perk
                         FROM v_mutations_complete WHERE LOWER(mutation_name) LIKE LOWER(?) ORDER BY mutation_name`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("mutations by name: %w", err)
		}
		return rows, nil
	})
}

// ConsumablesByNameSubstring resolves consumables whose name contains the
// fragment.
func (s *Store) ConsumablesByNameSubstring(ctx context.Context, fragment string) ([]gamedata.Consumable, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}
	return getOrCompute(s.cache, "consumables:name:"+strings.ToLower(trimmed), func() ([]gamedata.Consumable, error) {
		var rows []gamedata.Consumable
		err := s.db.SelectContext(ctx, &rows,
			`SELECT consumable_id, consumable_name, category, effects, special_modifiers
                         FROM v_consumables_complete WHERE LOWER(consumable_name) LIKE LOWER(?) ORDER BY consumable_name`,
			"%"+trimmed+"%")
		if err != nil {
			return nil, fmt.Errorf("consumables by name: %w", err)
		}
		return rows, nil
	})
}

// AllWeapons returns the full weapon catalog, used when rebuilding the
// vector index.
func (s *Store) AllWeapons(ctx context.Context) ([]gamedata.Weapon, error) {
	var rows []gamedata.Weapon
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, weapon_name, weapon_type, weapon_class, damage, regular_perks, legendary_perks, special_mechanics
                 FROM v_weapons_with_perks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all weapons: %w", err)
	}
	return rows, nil
}

func (s *Store) AllArmor(ctx context.Context) ([]gamedata.Armor, error) {
	var rows []gamedata.Armor
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, armor_type, class, slot, set_name, damage_resistance, energy_resistance, radiation_resistance
                 FROM v_armor_complete ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all armor: %w", err)
	}
	return rows, nil
}

func (s *Store) AllPerks(ctx context.Context) ([]gamedata.Perk, error) {
	var rows []gamedata.Perk
	err := s.db.SelectContext(ctx, &rows,
		`SELECT perk_id, perk_name, special, min_level, race, rank, rank_description
                 FROM v_perks_all_ranks ORDER BY perk_id, rank`)
	if err != nil {
		return nil, fmt.Errorf("all perks: %w", err)
	}
	return rows, nil
}

func (s *Store) AllLegendaryPerks(ctx context.Context) ([]gamedata.LegendaryPerk, error) {
	var rows []gamedata.LegendaryPerk
	err := s.db.SelectContext(ctx, &rows,
		`SELECT legendary_perk_id, perk_name, race, rank, rank_description
                 FROM v_legendary_perks_all_ranks ORDER BY legendary_perk_id, rank`)
	if err != nil {
		return nil, fmt.Errorf("all legendary perks: %w", err)
	}
	return rows, nil
}

func (s *Store) AllMutations(ctx context.Context) ([]gamedata.Mutation, error) {
	var rows []gamedata.Mutation
	err := s.db.SelectContext(ctx, &rows,
		`SELECT mutation_id, mutation_name, positive_effects, negative_effects, exclusive_with, suppression_perk, enhancement_perk
                 FROM v_mutations_complete ORDER BY mutation_id`)
	if err != nil {
		return nil, fmt.Errorf("all mutations: %w", err)
	}
	return rows, nil
}

func (s *Store) AllConsumables(ctx context.Context) ([]gamedata.Consumable, error) {
	var rows []gamedata.Consumable
	err := s.db.SelectContext(ctx, &rows,
		`SELECT consumable_id, consumable_name, category, effects, special_modifiers
                 FROM v_consumables_complete ORDER BY consumable_id`)
	if err != nil {
		return nil, fmt.Errorf("all consumables: %w", err)
	}
	return rows, nil
}

// Query runs a generated SELECT and returns generic rows. Anything that is not
// a bare SELECT is rejected before touching the database, which keeps model
// output from ever mutating the catalog.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return nil, ErrNotReadOnly
	}
	rows, err := s.db.QueryxContext(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for key, value := range row {
			if raw, ok := value.([]byte); ok {
				row[key] = string(raw)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// PurgeCache drops every cached lookup. Import tooling calls this after
// refreshing the catalog.
func (s *Store) PurgeCache() {
	if s == nil {
		return
	}
	s.cache.purge()
}
