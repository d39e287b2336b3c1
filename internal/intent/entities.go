// File path: internal/intent/entities.go
package intent

import (
	"regexp"
	"strings"
)

// Named-entity extraction pulls candidate item names out of the question so
// explicitly mentioned items always reach enrichment, whether or not the
// vector index surfaces them.

var (
	// Capitalized runs joined by connector words, e.g. "Lock and Load" or
	// "Ring of Fire". Matched before plain runs so the connector form is
	// not split into fragments.
	connectorRunPattern = regexp.MustCompile(`[A-Z][\w'-]*(?:\s+(?:and|of|the)\s+[A-Z][\w'-]*)+`)

	// Two or more consecutive capitalized words, e.g. "Gauss Shotgun".
	capitalRunPattern = regexp.MustCompile(`[A-Z][\w'-]*(?:\s+[A-Z][\w'-]*)+`)

	quotedPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
)

// entityStopwords covers interrogatives and bare category words that slip
// into capitalized runs at sentence starts.
var entityStopwords = map[string]struct{}{
	"what": {}, "which": {}, "where": {}, "when": {}, "who": {}, "how": {},
	"why": {}, "is": {}, "are": {}, "the": {}, "a": {}, "an": {}, "do": {},
	"does": {}, "list": {}, "show": {}, "tell": {}, "me": {}, "all": {},
	"best": {}, "weapon": {}, "weapons": {}, "armor": {}, "perk": {},
	"perks": {}, "mutation": {}, "mutations": {}, "consumable": {},
	"consumables": {}, "legendary": {}, "build": {}, "builds": {},
}

// ExtractEntities returns the deduplicated set of candidate item-name
// phrases found in the question. Longest patterns win first; matched spans
// are blanked before shorter patterns run so no substring is counted twice.
func ExtractEntities(question string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(candidate string) {
		cleaned := trimStopwords(candidate)
		if len(cleaned) < 3 {
			return
		}
		key := strings.ToLower(cleaned)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}

	// Quoted names are taken verbatim, independent of capitalization.
	for _, groups := range quotedPattern.FindAllStringSubmatch(question, -1) {
		quoted := groups[1]
		if quoted == "" {
			quoted = groups[2]
		}
		if trimmed := strings.TrimSpace(quoted); len(trimmed) >= 3 {
			key := strings.ToLower(trimmed)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, trimmed)
			}
		}
	}

	remaining := quotedPattern.ReplaceAllString(question, " ")
	for _, match := range connectorRunPattern.FindAllString(remaining, -1) {
		add(match)
	}
	remaining = connectorRunPattern.ReplaceAllString(remaining, " ")
	for _, match := range capitalRunPattern.FindAllString(remaining, -1) {
		add(match)
	}
	return out
}

// trimStopwords strips leading and trailing stopword tokens, then rejects
// candidates made entirely of stopwords.
func trimStopwords(candidate string) string {
	tokens := strings.Fields(strings.TrimSpace(candidate))
	for len(tokens) > 0 {
		if _, stop := entityStopwords[strings.ToLower(tokens[0])]; stop {
			tokens = tokens[1:]
			continue
		}
		break
	}
	for len(tokens) > 0 {
		if _, stop := entityStopwords[strings.ToLower(tokens[len(tokens)-1])]; stop {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	return strings.Join(tokens, " ")
}
