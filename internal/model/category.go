package model

// WasteCategory is the fine-grained material category of a detected item
type WasteCategory string

const (
	CategoryPlastic   WasteCategory = "Plastic"
	CategoryPaper     WasteCategory = "Paper"
	CategoryGlass     WasteCategory = "Glass"
	CategoryMetal     WasteCategory = "Metal"
	CategoryOrganic   WasteCategory = "Organic"
	CategoryEWaste    WasteCategory = "E-Waste"
	CategoryHazardous WasteCategory = "Hazardous"
	CategoryOther     WasteCategory = "Other"
)

// WasteCategories lists every fine-grained category in display order
var WasteCategories = []WasteCategory{
	CategoryPlastic,
	CategoryPaper,
	CategoryGlass,
	CategoryMetal,
	CategoryOrganic,
	CategoryEWaste,
	CategoryHazardous,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c WasteCategory) Valid() bool {
	for _, known := range WasteCategories {
		if c == known {
			return true
		}
	}
	return false
}

// OutwardCategory is the coarse, user-facing category used for rewards and history
type OutwardCategory string

const (
	OutwardRecyclable   OutwardCategory = "Recyclable"
	OutwardOrganic      OutwardCategory = "Organic"
	OutwardHazardous    OutwardCategory = "Hazardous"
	OutwardGeneralWaste OutwardCategory = "General Waste"
)

// OutwardCategories lists the four outward categories in display order
var OutwardCategories = []OutwardCategory{
	OutwardRecyclable,
	OutwardOrganic,
	OutwardHazardous,
	OutwardGeneralWaste,
}

// ParseOutwardCategory resolves a user-supplied category name (case-insensitive,
// "general", "general_waste" and "general-waste" accepted)
func ParseOutwardCategory(s string) (OutwardCategory, bool) {
	switch normalizeCategoryName(s) {
	case "recyclable":
		return OutwardRecyclable, true
	case "organic":
		return OutwardOrganic, true
	case "hazardous":
		return OutwardHazardous, true
	case "general", "generalwaste":
		return OutwardGeneralWaste, true
	}
	return "", false
}

func normalizeCategoryName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z':
			out = append(out, c)
		}
	}
	return string(out)
}
