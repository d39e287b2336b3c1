// File path: internal/retriever/retriever.go
package retriever

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/llm"
	"github.com/rofenac/fo76-ml-db/internal/retry"
	"github.com/rofenac/fo76-ml-db/internal/store"
	"github.com/rofenac/fo76-ml-db/internal/vector"
)

// categoryScanLimit is the wide-net size for pre-filtered category queries.
// It must exceed the number of vector entries of any single type so the
// intersection sees every ranked candidate.
const categoryScanLimit = 1000

// Retriever executes semantic retrieval against the vector index and
// resolves hits into full relational records.
type Retriever struct {
	provider llm.Provider
	index    vector.Store
	store    *store.Store
	retryCfg retry.Config
}

func New(provider llm.Provider, index vector.Store, st *store.Store) *Retriever {
	return &Retriever{
		provider: provider,
		index:    index,
		store:    st,
		retryCfg: retry.DefaultConfig,
	}
}

// Result is an ordered hit list. CategoryComplete marks a list guaranteed to
// contain every item of the requested category, ranked ones first.
type Result struct {
	Hits             []gamedata.Hit
	CategoryComplete bool
}

func (r *Retriever) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var vectors [][]float32
	err := retry.Do(ctx, r.retryCfg, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = r.provider.Embed(ctx, []string{question})
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed question: empty response")
	}
	return vectors[0], nil
}

func hitsFromResults(results []vector.SearchResult) []gamedata.Hit {
	hits := make([]gamedata.Hit, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		variant, id, ok := gamedata.ParseVectorID(res.ID)
		if !ok {
			common.Logger().Warn("retriever: skipping malformed vector id", "id", res.ID)
			continue
		}
		hit := gamedata.Hit{Variant: variant, ID: id, Distance: res.Distance}
		if _, dup := seen[hit.Key()]; dup {
			continue
		}
		seen[hit.Key()] = struct{}{}
		hit.Metadata = make(map[string]string, len(res.Metadata))
		for k, v := range res.Metadata {
			if s, ok := v.(string); ok {
				hit.Metadata[k] = s
			} else {
				hit.Metadata[k] = fmt.Sprint(v)
			}
		}
		hit.Name = hit.Metadata["name"]
		hits = append(hits, hit)
	}
	return hits
}

// VectorSearch embeds the question once and returns the top-k nearest
// neighbors across all entity types.
func (r *Retriever) VectorSearch(ctx context.Context, question string, k int) ([]gamedata.Hit, error) {
	if k <= 0 {
		k = 10
	}
	vec, err := r.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	var results []vector.SearchResult
	err = retry.Do(ctx, r.retryCfg, func(ctx context.Context) error {
		var searchErr error
		results, searchErr = r.index.Search(ctx, vec, k, nil)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hitsFromResults(results), nil
}

// CategorySearch performs pre-filtered category-complete retrieval. The full
// category roster comes from the relational catalog; a wide vector query
// ranks whatever subset the index knows about. Ranked members lead in vector
// order (truncated to k), and every unranked member follows with an infinite
// distance, so the result is always a superset of the category.
func (r *Retriever) CategorySearch(ctx context.Context, question string, filter gamedata.CategoryFilter, k int) (*Result, error) {
	if filter.Variant != gamedata.VariantWeapon {
		return nil, fmt.Errorf("category search: unsupported variant %q", filter.Variant)
	}
	if k <= 0 {
		k = 10
	}
	roster, err := r.store.WeaponsByClassPattern(ctx, filter.Pattern)
	if err != nil {
		return nil, fmt.Errorf("category roster: %w", err)
	}
	if len(roster) == 0 {
		return &Result{CategoryComplete: true}, nil
	}
	rosterIDs := make(map[int64]gamedata.Weapon, len(roster))
	for _, weapon := range roster {
		rosterIDs[weapon.ID] = weapon
	}

	vec, err := r.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	var results []vector.SearchResult
	err = retry.Do(ctx, r.retryCfg, func(ctx context.Context) error {
		var searchErr error
		results, searchErr = r.index.Search(ctx, vec, categoryScanLimit, map[string]any{
			"type": string(gamedata.VariantWeapon),
		})
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("category vector search: %w", err)
	}

	ranked := make([]gamedata.Hit, 0, k)
	inRanked := make(map[int64]struct{}, k)
	for _, hit := range hitsFromResults(results) {
		if len(ranked) >= k {
			break
		}
		if hit.Variant != gamedata.VariantWeapon {
			continue
		}
		if _, member := rosterIDs[hit.ID]; !member {
			continue
		}
		if hit.Name == "" {
			hit.Name = rosterIDs[hit.ID].Name
		}
		ranked = append(ranked, hit)
		inRanked[hit.ID] = struct{}{}
	}

	// Remainder keeps the roster's alphabetical order behind the ranked
	// block.
	hits := ranked
	for _, weapon := range roster {
		if _, present := inRanked[weapon.ID]; present {
			continue
		}
		hits = append(hits, gamedata.Hit{
			Variant:  gamedata.VariantWeapon,
			ID:       weapon.ID,
			Name:     weapon.Name,
			Distance: math.Inf(1),
			Metadata: map[string]string{
				"type":  string(gamedata.VariantWeapon),
				"id":    strconv.FormatInt(weapon.ID, 10),
				"name":  weapon.Name,
				"class": weapon.Class,
			},
		})
	}
	common.Logger().Debug("retriever: category search",
		"category", filter.Label(), "roster", len(roster), "ranked", len(ranked))
	return &Result{Hits: hits, CategoryComplete: true}, nil
}
