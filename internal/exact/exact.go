// File path: internal/exact/exact.go
package exact

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/llm"
	"github.com/rofenac/fo76-ml-db/internal/retry"
	"github.com/rofenac/fo76-ml-db/internal/store"
)

// Adapter answers exact lookups by prompting the model for a SELECT over the
// flattened catalog views, executing it read-only, and formatting the rows
// under grounding constraints.
type Adapter struct {
	provider llm.Provider
	store    *store.Store
	retryCfg retry.Config
}

func New(provider llm.Provider, st *store.Store) *Adapter {
	return &Adapter{provider: provider, store: st, retryCfg: retry.DefaultConfig}
}

// complete calls the model with the uniform boundary retry. Only transport
// failures retry; a bad completion that parses is handled by the caller.
func (a *Adapter) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	var out string
	err := retry.Do(ctx, a.retryCfg, func(ctx context.Context) error {
		var completeErr error
		out, completeErr = a.provider.Complete(ctx, prompt, maxTokens, temperature)
		return completeErr
	})
	return out, err
}

const sqlPromptTemplate = `You are a SQL expert for a Fallout 76 game database using SQLite.

Database schema:
- v_weapons_with_perks: id, weapon_name, weapon_type (Ranged/Melee/etc), weapon_class (Shotgun/Rifle/etc), damage, regular_perks, legendary_perks, special_mechanics
- v_armor_complete: id, name, armor_type ('Regular' or 'Power'), class, slot, set_name, damage_resistance, energy_resistance, radiation_resistance
- v_perks_all_ranks: perk_id, perk_name, special, min_level, race, rank, rank_description
- v_legendary_perks_all_ranks: legendary_perk_id, perk_name, race, rank, rank_description
- v_mutations_complete: mutation_id, mutation_name, positive_effects, negative_effects, exclusive_with, suppression_perk, enhancement_perk
- v_consumables_complete: consumable_id, consumable_name, category, effects, special_modifiers

User question: %s

Generate ONLY a valid SQLite SELECT query to answer this question. No explanations or markdown.

Requirements:
- SELECT statements only, never modify data
- Match text case-insensitively with LIKE
- Keep queries simple and efficient
- NOTE: weapon_type is general (Ranged/Melee), weapon_class is specific (Shotgun/Rifle/Pistol/etc)`

var (
	fenceOpen  = regexp.MustCompile("^```(?:sql)?\\s*\n?")
	fenceClose = regexp.MustCompile("\n?```\\s*$")
)

// stripFences removes a surrounding markdown code fence, a habit models
// retain no matter how the prompt forbids it.
func stripFences(text string) string {
	out := strings.TrimSpace(text)
	out = fenceOpen.ReplaceAllString(out, "")
	out = fenceClose.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// GenerateQuery asks the model for a SELECT statement. history, when not
// empty, is prepended as prior-conversation context.
func (a *Adapter) GenerateQuery(ctx context.Context, question, history string) (string, error) {
	prompt := fmt.Sprintf(sqlPromptTemplate, question)
	if strings.TrimSpace(history) != "" {
		prompt = "Previous conversation context:\n" + history + "\n\n" + prompt
	}
	raw, err := a.complete(ctx, prompt, 500, 0)
	if err != nil {
		return "", &QueryGenerationError{Err: err}
	}
	query := stripFences(raw)
	if query == "" {
		return "", &QueryGenerationError{Query: raw, Err: fmt.Errorf("model returned no query")}
	}
	if !strings.HasPrefix(strings.ToUpper(query), "SELECT") {
		return "", &QueryGenerationError{Query: query, Err: fmt.Errorf("generated statement is not a SELECT")}
	}
	return query, nil
}

// Answer runs the full exact path: generate, execute, format. A query that
// returns zero rows is a valid answer stating that no data was found, not an
// error.
func (a *Adapter) Answer(ctx context.Context, question, history string) (string, error) {
	logger := common.Logger()
	query, err := a.GenerateQuery(ctx, question, history)
	if err != nil {
		return "", err
	}
	logger.Debug("exact: generated query", "query", query)

	rows, err := a.store.Query(ctx, query)
	if err != nil {
		return "", &QueryExecutionError{Query: query, Err: err}
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No data found in the database for this query.\n\nSQL executed:\n%s\n\nThe query returned 0 rows. The data you're looking for may not exist in the database, or the query may need adjustment.", query), nil
	}

	answer, err := a.formatRows(ctx, question, query, rows)
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (a *Adapter) formatRows(ctx context.Context, question, query string, rows []map[string]any) (string, error) {
	var results strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&results, "%v\n", row)
	}
	prompt := fmt.Sprintf(`User asked: %s

SQL query executed: %s

Database results:
%s
%s

Format these results in a clear, helpful answer.

IMPORTANT INSTRUCTIONS:
- When showing weapon damage with multiple values (e.g., "51 / 57 / 65"), explain that these represent different weapon LEVEL tiers
- If discussing builds, mention the relevant build archetype (bloodied, stealth, etc.)
- Explain armor type differences (regular vs power armor) when relevant
- Clarify race-specific perks if applicable
%s`, question, query, results.String(), gamedata.MechanicsContext, gamedata.GroundingRules)

	answer, err := a.complete(ctx, prompt, 1500, 0.2)
	if err != nil {
		return "", fmt.Errorf("format results: %w", err)
	}
	return answer, nil
}
