// File path: internal/engine/formatter.go
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/retry"
)

// perVariantCap bounds the context block for broad semantic hits. Category-
// complete results and small lists bypass it: truncating those would silently
// hide part of a guaranteed-complete answer.
const (
	perVariantCap    = 5
	smallListCeiling = 15
)

func capFor(listLen int, categoryComplete bool) int {
	if categoryComplete || listLen <= smallListCeiling {
		return listLen
	}
	return perVariantCap
}

// buildContext serializes enriched records into the grounding context block,
// one section per non-empty variant.
func buildContext(enriched *gamedata.Enriched, categoryComplete bool) string {
	var b strings.Builder
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n=== %s ===\n", title)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	weapons := make([]string, 0, len(enriched.Weapons))
	for _, w := range enriched.Weapons[:capFor(len(enriched.Weapons), categoryComplete)] {
		weapons = append(weapons, w.ContextLine())
	}
	section("WEAPONS", weapons)

	armor := make([]string, 0, len(enriched.Armor))
	for _, a := range enriched.Armor[:capFor(len(enriched.Armor), categoryComplete)] {
		armor = append(armor, a.ContextLine())
	}
	section("ARMOR", armor)

	perks := make([]string, 0, len(enriched.Perks))
	for _, p := range enriched.Perks[:capFor(len(enriched.Perks), categoryComplete)] {
		perks = append(perks, p.ContextLine())
	}
	section("PERKS", perks)

	legendaries := make([]string, 0, len(enriched.LegendaryPerks))
	for _, p := range enriched.LegendaryPerks[:capFor(len(enriched.LegendaryPerks), categoryComplete)] {
		legendaries = append(legendaries, p.ContextLine())
	}
	section("LEGENDARY PERKS", legendaries)

	mutations := make([]string, 0, len(enriched.Mutations))
	for _, m := range enriched.Mutations[:capFor(len(enriched.Mutations), categoryComplete)] {
		mutations = append(mutations, m.ContextLine())
	}
	section("MUTATIONS", mutations)

	consumables := make([]string, 0, len(enriched.Consumables))
	for _, c := range enriched.Consumables[:capFor(len(enriched.Consumables), categoryComplete)] {
		consumables = append(consumables, c.ContextLine())
	}
	section("CONSUMABLES", consumables)

	return strings.TrimSpace(b.String())
}

// formatAnswer builds the single grounding prompt and invokes the model.
// Model failure (after the boundary retry) is fatal for the turn.
func (e *Engine) formatAnswer(ctx context.Context, question string, enriched *gamedata.Enriched, categoryComplete bool, history string) (string, error) {
	contextBlock := buildContext(enriched, categoryComplete)
	if contextBlock == "" {
		contextBlock = "(no matching items were found in the database)"
	}
	historySection := ""
	if history != "" {
		historySection = "\nPrevious conversation:\n" + history + "\n"
	}

	prompt := fmt.Sprintf(`You are a Fallout 76 build advisor. A user asked a conceptual question and we found relevant items using semantic search.

User's question: %s
%s
Relevant items from our database:
%s

%s

Please provide a helpful, detailed answer using ONLY the data above. If the data doesn't fully answer the question, say so clearly.

Format your answer as:
1. Direct answer to the question
2. Specific recommendations with item names and stats
3. Brief explanation of why these items are relevant

Be concise but informative.`, question, historySection, contextBlock, gamedata.GroundingRules)

	var answer string
	err := retry.Do(ctx, e.retryCfg, func(ctx context.Context) error {
		var completeErr error
		answer, completeErr = e.provider.Complete(ctx, prompt, 2000, 0.3)
		return completeErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormatting, err)
	}
	return answer, nil
}
