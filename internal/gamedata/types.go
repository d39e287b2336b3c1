// File path: internal/gamedata/types.go
package gamedata

import (
	"fmt"
	"strconv"
	"strings"
)

// Variant identifies one of the six game entity kinds stored in the
// relational catalog and mirrored into the vector index.
type Variant string

const (
	VariantWeapon        Variant = "weapon"
	VariantArmor         Variant = "armor"
	VariantPerk          Variant = "perk"
	VariantLegendaryPerk Variant = "legendary_perk"
	VariantMutation      Variant = "mutation"
	VariantConsumable    Variant = "consumable"
)

// AllVariants lists every variant in a stable order. Enrichment iterates this
// so that result groups are always present, even when empty.
var AllVariants = []Variant{
	VariantWeapon,
	VariantArmor,
	VariantPerk,
	VariantLegendaryPerk,
	VariantMutation,
	VariantConsumable,
}

func (v Variant) Valid() bool {
	switch v {
	case VariantWeapon, VariantArmor, VariantPerk, VariantLegendaryPerk, VariantMutation, VariantConsumable:
		return true
	}
	return false
}

// ParseVectorID splits a vector index id of the form "<variant>_<id>" (perk
// ranks use "<variant>_<id>_rank_<rank>") into its variant and relational id.
func ParseVectorID(id string) (Variant, int64, bool) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", 0, false
	}
	// Longest prefixes first so "legendary_perk_" wins over "perk_".
	prefixes := []Variant{VariantLegendaryPerk, VariantConsumable, VariantMutation, VariantWeapon, VariantArmor, VariantPerk}
	for _, variant := range prefixes {
		prefix := string(variant) + "_"
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		rest := strings.TrimPrefix(trimmed, prefix)
		if idx := strings.Index(rest, "_rank_"); idx >= 0 {
			rest = rest[:idx]
		}
		numeric, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return "", 0, false
		}
		return variant, numeric, true
	}
	return "", 0, false
}

// Hit is a single vector index neighbor prior to relational enrichment.
type Hit struct {
	Variant  Variant
	ID       int64
	Name     string
	Distance float64
	Metadata map[string]string
}

// Key returns the identity key used for deduplication across retrieval and
// named-entity merge paths.
func (h Hit) Key() string {
	return fmt.Sprintf("%s:%d", h.Variant, h.ID)
}

// CategoryFilter narrows retrieval to one weapon class. Pattern is a SQL LIKE
// pattern such as "%shotgun%". Only the weapon variant supports
// category-complete search.
type CategoryFilter struct {
	Variant Variant
	Pattern string
}

// Label returns the bare class name embedded in the LIKE pattern.
func (f CategoryFilter) Label() string {
	return strings.Trim(f.Pattern, "%")
}
