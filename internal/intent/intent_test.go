// File path: internal/intent/intent_test.go
package intent

import (
	"testing"

	"github.com/rofenac/fo76-ml-db/internal/gamedata"
)

func TestClassifyExactLookup(t *testing.T) {
	c := NewClassifier(DefaultOptions)
	result := c.Classify("What is the damage of the Gauss Shotgun?")
	if result.Kind != KindExact {
		t.Fatalf("expected EXACT, got %s", result.Kind)
	}
}

func TestClassifyConceptualBuild(t *testing.T) {
	c := NewClassifier(DefaultOptions)
	result := c.Classify("Best bloodied heavy gunner build")
	if result.Kind != KindConceptual {
		t.Fatalf("expected CONCEPTUAL, got %s", result.Kind)
	}
	if result.Category != nil {
		t.Fatalf("expected no category filter, got %+v", result.Category)
	}
}

func TestClassifyConceptualWithCategory(t *testing.T) {
	c := NewClassifier(DefaultOptions)
	result := c.Classify("Recommend shotguns for a stealth build")
	if result.Kind != KindConceptual {
		t.Fatalf("expected CONCEPTUAL, got %s", result.Kind)
	}
	if result.Category == nil {
		t.Fatal("expected a category filter")
	}
	if result.Category.Variant != gamedata.VariantWeapon || result.Category.Pattern != "%shotgun%" {
		t.Fatalf("unexpected filter: %+v", result.Category)
	}
}

func TestConceptualBeatsExact(t *testing.T) {
	c := NewClassifier(DefaultOptions)
	questions := []string{
		"What is the best shotgun?",
		"List all weapons that synergize with stealth",
		"How many rifles are worth using?",
		"Show me the strongest heavy gunner build",
	}
	for _, q := range questions {
		if got := c.Classify(q).Kind; got != KindConceptual {
			t.Fatalf("%q: expected CONCEPTUAL, got %s", q, got)
		}
	}
}

func TestProperNounSignal(t *testing.T) {
	c := NewClassifier(DefaultOptions)
	if got := c.Classify("Tell me about the Gauss Shotgun").Kind; got != KindExact {
		t.Fatalf("expected EXACT from proper-noun signal, got %s", got)
	}

	// Sentence-initial capitalization alone is not a signal.
	if got := c.Classify("Tell me about shotguns please").Kind; got != KindConceptual {
		t.Fatalf("expected CONCEPTUAL without late capitals, got %s", got)
	}

	gated := NewClassifier(Options{ProperNounSignal: false})
	if got := gated.Classify("Tell me about the Gauss Shotgun").Kind; got != KindConceptual {
		t.Fatalf("expected CONCEPTUAL with signal disabled, got %s", got)
	}
}

func TestDetectCategory(t *testing.T) {
	cases := []struct {
		question string
		want     string
		found    bool
	}{
		{"Recommend shotguns for stealth", "%shotgun%", true},
		{"good rifles for a sniper", "%rifle%", true},
		{"best pistols", "%pistol%", true},
		{"best heavy guns for tanking", "%heavy%", true},
		{"are laser weapons any good", "%laser%", true},
		{"top melee weapons", "%melee%", true},
		{"suggest a melee build", "", false},
		{"suggest a plasma weapon", "%plasma%", true},
		{"best laser rifles", "%rifle%", true},
		{"Best bloodied heavy gunner build", "", false},
		{"rifleman perks", "", false},
		{"best consumables for xp", "", false},
	}
	for _, tc := range cases {
		filter, ok := DetectCategory(tc.question)
		if ok != tc.found {
			t.Fatalf("%q: found=%v, want %v", tc.question, ok, tc.found)
		}
		if ok && filter.Pattern != tc.want {
			t.Fatalf("%q: pattern %q, want %q", tc.question, filter.Pattern, tc.want)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	filter, ok := DetectCategory("recommend shotguns")
	if !ok {
		t.Fatal("expected filter")
	}
	if filter.Label() != "shotgun" {
		t.Fatalf("unexpected label %q", filter.Label())
	}
}
