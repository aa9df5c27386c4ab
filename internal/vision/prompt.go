package vision

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LabelPrompt asks a vision model for a single short label and a confidence
const LabelPrompt = `Identify the single main waste item in this photo.

Reply with exactly one line in the form:
label|score

where label is a short common noun phrase (e.g. "plastic bottle", "banana peel",
"aa battery") and score is your confidence between 0 and 1.
Do not add any other text.`

const systemPrompt = "You are a waste sorting assistant that names items in photos."

// defaultLabelScore is used when a reply carries a label but no usable score
const defaultLabelScore = 0.5

// ParseLabelResponse extracts "label|score" from a model reply. Replies are
// parsed leniently: surrounding prose, quotes, markdown and percentage scores
// are tolerated; a missing score yields 0.5.
func ParseLabelResponse(text string) (*Label, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty label response")
	}

	line := ""
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.Contains(l, "|") {
			line = l
			break
		}
		if line == "" {
			line = l
		}
	}

	label, scoreText, hasScore := strings.Cut(line, "|")
	label = cleanLabel(label)
	if label == "" {
		return nil, fmt.Errorf("no label in response %q", text)
	}

	score := defaultLabelScore
	if hasScore {
		if s, ok := parseScore(scoreText); ok {
			score = s
		}
	}

	return &Label{Label: label, Score: score}, nil
}

func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*\"'.:- ")
	if i := strings.Index(strings.ToLower(s), "label:"); i >= 0 {
		s = strings.TrimSpace(s[i+len("label:"):])
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func parseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*\"' ")
	s = strings.TrimPrefix(strings.ToLower(s), "score:")
	s = strings.TrimSpace(s)

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	switch {
	case percent:
		v /= 100
	case v > 1 && v <= 100 && v == math.Trunc(v):
		// a bare whole number such as 75 is a percentage
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}
