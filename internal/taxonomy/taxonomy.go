// Package taxonomy maps raw classifier labels onto waste categories.
package taxonomy

import (
	"strings"
	"unicode"

	"github.com/ppiankov/wastewise/internal/model"
)

// categoryRule binds a category to the label phrases that select it
type categoryRule struct {
	category model.WasteCategory
	phrases  [][]string
}

// rules are evaluated in order; the first rule with a matching phrase wins.
// Hazardous and E-Waste come first so that "battery pack" or "phone case" never
// read as plain plastic, and Glass precedes Plastic so "wine bottle" is glass.
var rules = compileRules([]struct {
	category model.WasteCategory
	keywords []string
}{
	{model.CategoryHazardous, []string{
		"battery", "batteries", "paint", "chemical", "chemicals", "medicine", "medication", "pill", "pills",
		"syringe", "needle", "pesticide", "insecticide", "aerosol", "spray can", "bleach", "solvent",
		"motor oil", "light bulb", "bulb", "fluorescent", "thermometer", "lighter", "propane",
	}},
	{model.CategoryEWaste, []string{
		"cell phone", "phone", "smartphone", "laptop", "notebook computer", "computer", "keyboard",
		"mouse", "remote", "tv", "television", "monitor", "screen", "charger", "cable", "headphones",
		"earbuds", "microwave", "toaster", "hair drier", "hair dryer", "printer", "tablet", "ipod",
		"camera", "circuit", "electronics", "router", "modem", "speaker",
	}},
	{model.CategoryGlass, []string{
		"glass", "wine glass", "wine bottle", "beer bottle", "beer glass", "jar", "vase", "goblet",
		"mason jar", "perfume", "mirror",
	}},
	{model.CategoryMetal, []string{
		"can", "tin can", "soda can", "beer can", "aluminum", "aluminium", "tin", "foil", "fork",
		"knife", "spoon", "scissors", "metal", "steel", "iron", "copper", "nail", "screw", "key",
		"pot", "frying pan", "wok", "caldron", "bucket", "padlock",
	}},
	{model.CategoryPaper, []string{
		"paper", "cardboard", "carton", "box", "book", "newspaper", "envelope", "magazine", "tissue",
		"paper towel", "toilet tissue", "notebook", "menu", "packet", "comic book", "receipt", "mail",
	}},
	{model.CategoryOrganic, []string{
		"banana", "apple", "orange", "broccoli", "carrot", "food", "peel", "fruit", "vegetable",
		"sandwich", "pizza", "donut", "doughnut", "cake", "hot dog", "leaf", "leaves", "plant",
		"potted plant", "egg", "eggshell", "coffee", "grounds", "bread", "lemon", "strawberry",
		"pineapple", "corn", "mushroom", "cucumber", "bagel", "pretzel", "meat", "bone", "compost",
		"grass", "flower", "tea", "rice", "potato", "tomato", "lettuce", "onion",
	}},
	{model.CategoryPlastic, []string{
		"plastic", "bottle", "water bottle", "pop bottle", "bag", "plastic bag", "cup", "container",
		"straw", "wrapper", "toothbrush", "frisbee", "bucket lid", "lid", "packaging", "styrofoam",
		"polystyrene", "tupperware", "shampoo", "detergent", "jug", "tub", "film", "pet",
	}},
})

func compileRules(raw []struct {
	category model.WasteCategory
	keywords []string
}) []categoryRule {
	compiled := make([]categoryRule, 0, len(raw))
	for _, r := range raw {
		rule := categoryRule{category: r.category}
		for _, kw := range r.keywords {
			rule.phrases = append(rule.phrases, Tokenize(kw))
		}
		compiled = append(compiled, rule)
	}
	return compiled
}

// MapRawLabel resolves a raw label from any classifier to a waste category.
// It is total: labels that match no rule resolve to CategoryOther.
func MapRawLabel(label string) model.WasteCategory {
	tokens := Tokenize(label)
	if len(tokens) == 0 {
		return model.CategoryOther
	}

	for _, rule := range rules {
		for _, phrase := range rule.phrases {
			if containsPhrase(tokens, phrase) {
				return rule.category
			}
		}
	}

	return model.CategoryOther
}

// Coarsen maps a fine-grained category to its outward category
func Coarsen(c model.WasteCategory) model.OutwardCategory {
	switch c {
	case model.CategoryPlastic, model.CategoryPaper, model.CategoryGlass, model.CategoryMetal:
		return model.OutwardRecyclable
	case model.CategoryOrganic:
		return model.OutwardOrganic
	case model.CategoryEWaste, model.CategoryHazardous:
		return model.OutwardHazardous
	default:
		return model.OutwardGeneralWaste
	}
}

// Tokenize lowercases s and splits it on non-alphanumeric boundaries
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether phrase occurs as a contiguous token run in tokens
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
