// Package fallback implements the deterministic, ML-free classifier used when
// no AI source produced a result. It scores a curated item database against the
// filename and optional metadata hints and never fails.
package fallback

import (
	"hash/fnv"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/taxonomy"
)

const (
	exactMatchScore     = 10
	substringMatchScore = 3
	extensionBonus      = 2
	sizeBonus           = 1
	dimensionBonus      = 1

	// confidence added per exactly matched keyword
	keywordConfidenceBonus = 5
	maxConfidence          = 98
	zeroScoreConfidence    = 40

	// ceiling for an item found only inside longer words
	substringOnlyConfidence = 50

	// shorter keywords ("aa", "pc", "tin") only count as whole tokens
	minSubstringRunes = 4

	minPlausibleSize = 1 << 10
	maxPlausibleSize = 25 << 20
	minPlausibleSide = 64
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".heic": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Input is everything the heuristic looks at. No image decode is needed.
type Input struct {
	Filename string
	Size     int64
	Width    int      // 0 if unknown
	Height   int      // 0 if unknown
	Hints    []string // Free-text metadata (EXIF description, keywords)
}

// Result is the outcome of a heuristic classification
type Result struct {
	Item       Item
	Score      int
	Confidence int
	Matched    []string // Keywords that matched exactly
	ZeroScore  bool     // Chosen by filename hash because nothing matched
}

// Detection normalizes the result to the shared detection shape
func (r Result) Detection() model.Detection {
	return model.Detection{
		Name:       r.Item.Name,
		Category:   r.Item.Category,
		Confidence: r.Confidence,
		Source:     model.SourceFallback,
	}
}

// Classifier is the heuristic fallback classifier
type Classifier struct {
	items      []Item
	candidates []Item
}

// NewClassifier creates a classifier over the built-in item database
func NewClassifier() *Classifier {
	return NewClassifierWithItems(Items, zeroScoreCandidates)
}

// NewClassifierWithItems creates a classifier over a custom database.
// candidateNames selects the zero-score candidates; unknown names are ignored,
// and hazardous or electronic items are never admitted as candidates.
func NewClassifierWithItems(items []Item, candidateNames []string) *Classifier {
	c := &Classifier{items: items}
	for _, name := range candidateNames {
		for _, it := range items {
			if it.Name != name {
				continue
			}
			if taxonomy.Coarsen(it.Category) == model.OutwardHazardous {
				continue
			}
			c.candidates = append(c.candidates, it)
		}
	}
	return c
}

// Classify scores every item and returns the best one. It is deterministic:
// the same input always yields the same item and confidence.
func (c *Classifier) Classify(in Input) Result {
	tokens, haystack := prepare(in)

	best := -1
	var bestScore int
	var bestMatched []string

	for i, item := range c.items {
		score, matched := scoreItem(item, tokens, haystack)
		// "clamp" or "excellent" must not read as a lamp or a battery
		if len(matched) == 0 && taxonomy.Coarsen(item.Category) == model.OutwardHazardous {
			continue
		}
		if score > bestScore {
			best, bestScore, bestMatched = i, score, matched
		}
	}

	if best < 0 {
		return c.zeroScore(in)
	}

	bestScore += plausibilityBonus(in)
	item := c.items[best]

	confidence := min(item.BaseConfidence+keywordConfidenceBonus*len(bestMatched), maxConfidence)
	if len(bestMatched) == 0 {
		confidence = min(item.BaseConfidence, substringOnlyConfidence)
	}

	return Result{
		Item:       item,
		Score:      bestScore,
		Confidence: confidence,
		Matched:    bestMatched,
	}
}

// zeroScore picks a stable candidate from a hash of the filename
func (c *Classifier) zeroScore(in Input) Result {
	if len(c.candidates) == 0 {
		return Result{Item: UnknownItem(), Confidence: 0, ZeroScore: true}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(in.Filename)))
	item := c.candidates[int(h.Sum32()%uint32(len(c.candidates)))]

	return Result{
		Item:       item,
		Confidence: min(zeroScoreConfidence, item.BaseConfidence, maxConfidence),
		ZeroScore:  true,
	}
}

// UnknownItem is the synthetic result used when the cascade is exhausted
func UnknownItem() Item {
	return Item{
		Name:           "Unknown Item",
		Category:       model.CategoryOther,
		BaseConfidence: 10,
		Description:    "The item could not be identified.",
		DisposalMethod: "Place in general waste unless local guidance says otherwise.",
		Tips:           []string{"Retake the photo in good light, or rename the file with descriptive words"},
	}
}

// prepare builds the token list and the lowercase substring haystack
func prepare(in Input) ([]string, string) {
	tokens := taxonomy.Tokenize(in.Filename)
	parts := []string{strings.ToLower(in.Filename)}
	for _, h := range in.Hints {
		tokens = append(tokens, taxonomy.Tokenize(h)...)
		parts = append(parts, strings.ToLower(h))
	}
	return tokens, strings.Join(parts, " ")
}

// scoreItem sums +10 per token equal to a keyword (multi-word keywords match as
// a token run) and +3 per keyword of four or more runes occurring anywhere in
// the haystack
func scoreItem(item Item, tokens []string, haystack string) (int, []string) {
	score := 0
	var matched []string

	for _, kw := range item.Keywords {
		kwTokens := taxonomy.Tokenize(kw)
		exact := 0
		if len(kwTokens) == 1 {
			for _, tok := range tokens {
				if tok == kwTokens[0] {
					exact++
				}
			}
		} else if containsRun(tokens, kwTokens) {
			exact = 1
		}
		if exact > 0 {
			score += exactMatchScore * exact
			matched = append(matched, kw)
		}
		if utf8.RuneCountInString(kw) >= minSubstringRunes && strings.Contains(haystack, kw) {
			score += substringMatchScore
		}
	}

	return score, matched
}

func containsRun(tokens, run []string) bool {
	for i := 0; i+len(run) <= len(tokens); i++ {
		ok := true
		for j := range run {
			if tokens[i+j] != run[j] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// plausibilityBonus rewards inputs that look like real photos
func plausibilityBonus(in Input) int {
	bonus := 0
	if imageExtensions[strings.ToLower(filepath.Ext(in.Filename))] {
		bonus += extensionBonus
	}
	if in.Size >= minPlausibleSize && in.Size <= maxPlausibleSize {
		bonus += sizeBonus
	}
	if in.Width >= minPlausibleSide && in.Height >= minPlausibleSide {
		bonus += dimensionBonus
	}
	return bonus
}
