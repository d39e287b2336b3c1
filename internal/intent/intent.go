// File path: internal/intent/intent.go
package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rofenac/fo76-ml-db/internal/gamedata"
)

// Kind is the top-level routing decision for a question.
type Kind int

const (
	KindExact Kind = iota
	KindConceptual
)

func (k Kind) String() string {
	if k == KindExact {
		return "EXACT"
	}
	return "CONCEPTUAL"
}

// Result pairs the intent kind with an optional category filter. The filter
// is populated independently of the kind; the routing layer decides whether
// it applies.
type Result struct {
	Kind     Kind
	Category *gamedata.CategoryFilter
}

// Options tunes classification. ProperNounSignal controls whether a
// capitalized token after the sentence start pushes an otherwise unmatched
// question to the exact path.
type Options struct {
	ProperNounSignal bool
}

// DefaultOptions matches the shipped behavior.
var DefaultOptions = Options{ProperNounSignal: true}

// Classifier evaluates an ordered keyword rule table. It is a pure function
// of the question text; no trained model is involved.
type Classifier struct {
	opts Options
}

func NewClassifier(opts Options) *Classifier {
	return &Classifier{opts: opts}
}

// Conceptual signals are evaluated before exact signals: "what is the best
// shotgun" is conceptual despite containing "what is".
var conceptualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bbest\b`),
	regexp.MustCompile(`\bsimilar to\b`),
	regexp.MustCompile(`\blike\b`),
	regexp.MustCompile(`\brecommend`),
	regexp.MustCompile(`\bsuggest`),
	regexp.MustCompile(`\bbuild\b`),
	regexp.MustCompile(`\bgood for\b`),
	regexp.MustCompile(`\bgood with\b`),
	regexp.MustCompile(`\bsynerg`),
	regexp.MustCompile(`\bcomplement`),
	regexp.MustCompile(`\bwork(s)? with\b`),
	regexp.MustCompile(`\bworth\b`),
	regexp.MustCompile(`\bcompare`),
	regexp.MustCompile(`\bversus\b`),
	regexp.MustCompile(`\bvs\.?\b`),
	regexp.MustCompile(`\bbetter\b`),
	regexp.MustCompile(`\bstrongest\b`),
	regexp.MustCompile(`\bbloodied\b`),
	regexp.MustCompile(`\bstealth\b`),
	regexp.MustCompile(`\btank\b`),
	regexp.MustCompile(`\bvats\b`),
	regexp.MustCompile(`\bheavy gunner\b`),
	regexp.MustCompile(`\brifleman\b`),
	regexp.MustCompile(`\bcommando\b`),
	regexp.MustCompile(`\bmelee\b`),
	regexp.MustCompile(`\bunarmed\b`),
}

var exactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat is\b`),
	regexp.MustCompile(`\bwhat does\b`),
	regexp.MustCompile(`\bwhat are\b`),
	regexp.MustCompile(`\bshow me\b`),
	regexp.MustCompile(`\blist all\b`),
	regexp.MustCompile(`\blist the\b`),
	regexp.MustCompile(`\bhow many\b`),
	regexp.MustCompile(`\bhow much\b`),
	regexp.MustCompile(`\bdamage of\b`),
	regexp.MustCompile(`\bstats of\b`),
	regexp.MustCompile(`\bstats for\b`),
	regexp.MustCompile(`\beffect of\b`),
	regexp.MustCompile(`\beffects of\b`),
	regexp.MustCompile(`\branks of\b`),
	regexp.MustCompile(`\brank of\b`),
}

// Build-archetype phrases are removed before the category scan so "heavy
// gunner" never reads as the heavy weapon class and "rifleman" never reads
// as a rifle.
var archetypePhrases = []string{
	"heavy gunner", "rifleman", "commando", "gunslinger", "shotgunner",
	"melee build", "unarmed build",
}

// categoryRules map class phrases to LIKE patterns over weapon_class. Longer
// phrases are listed first so "heavy gun" wins before any shorter overlap.
var categoryRules = []struct {
	phrase  string
	pattern string
}{
	{"heavy gun", "%heavy%"},
	{"heavy weapon", "%heavy%"},
	{"melee", "%melee%"},
	{"shotgun", "%shotgun%"},
	{"rifle", "%rifle%"},
	{"pistol", "%pistol%"},
	{"laser", "%laser%"},
	{"plasma", "%plasma%"},
	{"explosive", "%explosive%"},
	{"bow", "%bow%"},
}

// Classify runs the ordered rule table and the independent category scan.
func (c *Classifier) Classify(question string) Result {
	result := Result{Kind: c.kind(question)}
	if filter, ok := DetectCategory(question); ok {
		result.Category = &filter
	}
	return result
}

func (c *Classifier) kind(question string) Kind {
	lower := strings.ToLower(question)
	for _, pattern := range conceptualPatterns {
		if pattern.MatchString(lower) {
			return KindConceptual
		}
	}
	for _, pattern := range exactPatterns {
		if pattern.MatchString(lower) {
			return KindExact
		}
	}
	if c.opts.ProperNounSignal && hasLateCapital(question) {
		return KindExact
	}
	return KindConceptual
}

// hasLateCapital reports whether any token after the first starts with an
// uppercase letter. The sentence-initial word is ignored, it is capitalized
// in any well-formed question.
func hasLateCapital(question string) bool {
	fields := strings.Fields(question)
	for i, field := range fields {
		if i == 0 {
			continue
		}
		runes := []rune(field)
		if len(runes) > 0 && unicode.IsUpper(runes[0]) {
			return true
		}
	}
	return false
}

// DetectCategory scans for weapon-class phrases and returns the matching
// filter. Only the weapon variant participates in category-complete search.
func DetectCategory(question string) (gamedata.CategoryFilter, bool) {
	lower := strings.ToLower(question)
	for _, phrase := range archetypePhrases {
		lower = strings.ReplaceAll(lower, phrase, " ")
	}
	for _, rule := range categoryRules {
		if strings.Contains(lower, rule.phrase) {
			return gamedata.CategoryFilter{Variant: gamedata.VariantWeapon, Pattern: rule.pattern}, true
		}
	}
	return gamedata.CategoryFilter{}, false
}
