// Package reward converts a classified category and confidence into reward
// points and a recyclability estimate.
package reward

import (
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/taxonomy"
)

// Reward is the outcome of a calculation
type Reward struct {
	Points         int `json:"points"`
	RecyclableRate int `json:"recyclable_rate"`
}

// basePoints is awarded at 100% confidence and scaled down linearly below it.
// Hazardous carries the most points because correct handling matters most.
var basePoints = map[model.OutwardCategory]int{
	model.OutwardHazardous:    25,
	model.OutwardOrganic:      15,
	model.OutwardRecyclable:   10,
	model.OutwardGeneralWaste: 1,
}

// recyclableRates is the share of the material that is typically recovered
var recyclableRates = map[model.WasteCategory]int{
	model.CategoryPlastic:   85,
	model.CategoryPaper:     90,
	model.CategoryGlass:     95,
	model.CategoryMetal:     95,
	model.CategoryOrganic:   100,
	model.CategoryEWaste:    70,
	model.CategoryHazardous: 30,
	model.CategoryOther:     10,
}

// Calculate is pure: points = floor(base * confidence / 100), recyclable rate is
// a per-category constant independent of confidence.
func Calculate(category model.WasteCategory, confidence int) Reward {
	confidence = model.ClampConfidence(confidence)

	base := basePoints[taxonomy.Coarsen(category)]
	rate, ok := recyclableRates[category]
	if !ok {
		rate = recyclableRates[model.CategoryOther]
	}

	return Reward{
		Points:         base * confidence / 100,
		RecyclableRate: rate,
	}
}

// BasePoints returns the full-confidence point value of an outward category
func BasePoints(c model.OutwardCategory) int {
	return basePoints[c]
}
