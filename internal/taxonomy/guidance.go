package taxonomy

import "github.com/ppiankov/wastewise/internal/model"

// Guidance is the disposal advice attached to a category
type Guidance struct {
	Description    string
	DisposalMethod string
	Tips           []string
}

var guidance = map[model.WasteCategory]Guidance{
	model.CategoryPlastic: {
		Description:    "Plastic item. Most rigid household plastics (PET, HDPE) are accepted curbside.",
		DisposalMethod: "Empty and rinse, replace the cap, and place in the recycling bin.",
		Tips:           []string{"Check the resin code on the bottom", "Soft plastic film goes to store drop-off, not curbside"},
	},
	model.CategoryPaper: {
		Description:    "Paper or cardboard item.",
		DisposalMethod: "Keep dry, flatten boxes, and place in the paper recycling bin.",
		Tips:           []string{"Greasy or food-soiled paper belongs in compost", "Remove plastic windows and tape where possible"},
	},
	model.CategoryGlass: {
		Description:    "Glass container.",
		DisposalMethod: "Rinse and place in the glass recycling bin or bottle bank.",
		Tips:           []string{"Remove lids and corks", "Window glass and mirrors are not container glass"},
	},
	model.CategoryMetal: {
		Description:    "Metal item such as a can, foil or cutlery.",
		DisposalMethod: "Rinse cans and foil, then place in the recycling bin. Large scrap goes to a metal drop-off.",
		Tips:           []string{"Scrunch clean foil into a ball", "Aerosol cans must be fully empty"},
	},
	model.CategoryOrganic: {
		Description:    "Food or garden waste suitable for composting.",
		DisposalMethod: "Place in the compost or green bin.",
		Tips:           []string{"Remove stickers and packaging", "Home composting suits fruit and vegetable scraps"},
	},
	model.CategoryEWaste: {
		Description:    "Electronic device. Contains recoverable metals and hazardous components.",
		DisposalMethod: "Take to an e-waste collection point or retailer take-back scheme.",
		Tips:           []string{"Wipe personal data first", "Remove batteries and recycle them separately"},
	},
	model.CategoryHazardous: {
		Description:    "Hazardous household waste.",
		DisposalMethod: "Take to a household hazardous waste facility. Never put in household bins.",
		Tips:           []string{"Keep in the original container", "Tape battery terminals before drop-off"},
	},
	model.CategoryOther: {
		Description:    "Item that could not be matched to a recycling stream.",
		DisposalMethod: "Place in general waste unless local guidance says otherwise.",
		Tips:           []string{"Check your local council's A-Z recycling guide"},
	},
}

// GuidanceFor returns disposal guidance for a category. Unknown categories get
// the Other guidance.
func GuidanceFor(c model.WasteCategory) Guidance {
	g, ok := guidance[c]
	if !ok {
		g = guidance[model.CategoryOther]
	}
	tips := make([]string, len(g.Tips))
	copy(tips, g.Tips)
	g.Tips = tips
	return g
}
