// File path: internal/retriever/indexer.go
package retriever

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/vector"
)

// embedBatchSize keeps embedding requests well under provider input limits.
const embedBatchSize = 64

// Reindex rebuilds the vector index from the relational catalog. Every
// record becomes one document; perks contribute one document per rank. Ids
// follow the "<variant>_<id>" scheme the search path parses back.
func (r *Retriever) Reindex(ctx context.Context) error {
	docs, err := r.collectDocs(ctx)
	if err != nil {
		return err
	}
	logger := common.Logger()
	logger.Info("retriever: reindexing vector store", "documents", len(docs))

	for start := 0; start < len(docs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}
		vectors, err := r.provider.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if err := r.index.Upsert(ctx, batch, vectors); err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}
	logger.Info("retriever: reindex complete", "documents", len(docs))
	return nil
}

func (r *Retriever) collectDocs(ctx context.Context) ([]vector.Doc, error) {
	var docs []vector.Doc

	weapons, err := r.store.AllWeapons(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range weapons {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d", gamedata.VariantWeapon, w.ID),
			Text: w.ContextLine(),
			Metadata: map[string]string{
				"type":   string(gamedata.VariantWeapon),
				"id":     strconv.FormatInt(w.ID, 10),
				"name":   w.Name,
				"class":  w.Class,
				"damage": w.Damage,
			},
		})
	}

	armor, err := r.store.AllArmor(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range armor {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d", gamedata.VariantArmor, a.ID),
			Text: a.ContextLine(),
			Metadata: map[string]string{
				"type":       string(gamedata.VariantArmor),
				"id":         strconv.FormatInt(a.ID, 10),
				"name":       a.Name,
				"armor_type": a.ArmorType,
			},
		})
	}

	perks, err := r.store.AllPerks(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range perks {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d_rank_%d", gamedata.VariantPerk, p.PerkID, p.Rank),
			Text: p.ContextLine(),
			Metadata: map[string]string{
				"type": string(gamedata.VariantPerk),
				"id":   strconv.FormatInt(p.PerkID, 10),
				"name": p.Name,
				"rank": strconv.Itoa(p.Rank),
			},
		})
	}

	legendaries, err := r.store.AllLegendaryPerks(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range legendaries {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d_rank_%d", gamedata.VariantLegendaryPerk, p.LegendaryPerkID, p.Rank),
			Text: p.ContextLine(),
			Metadata: map[string]string{
				"type": string(gamedata.VariantLegendaryPerk),
				"id":   strconv.FormatInt(p.LegendaryPerkID, 10),
				"name": p.Name,
				"rank": strconv.Itoa(p.Rank),
			},
		})
	}

	mutations, err := r.store.AllMutations(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range mutations {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d", gamedata.VariantMutation, m.MutationID),
			Text: m.ContextLine(),
			Metadata: map[string]string{
				"type": string(gamedata.VariantMutation),
				"id":   strconv.FormatInt(m.MutationID, 10),
				"name": m.Name,
			},
		})
	}

	consumables, err := r.store.AllConsumables(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range consumables {
		docs = append(docs, vector.Doc{
			ID:   fmt.Sprintf("%s_%d", gamedata.VariantConsumable, c.ConsumableID),
			Text: c.ContextLine(),
			Metadata: map[string]string{
				"type":     string(gamedata.VariantConsumable),
				"id":       strconv.FormatInt(c.ConsumableID, 10),
				"name":     c.Name,
				"category": c.Category,
			},
		})
	}

	return docs, nil
}
