package fallback

import "github.com/ppiankov/wastewise/internal/model"

// Item is one entry of the curated item database
type Item struct {
	Name           string
	Category       model.WasteCategory
	Keywords       []string
	BaseConfidence int
	Description    string
	DisposalMethod string
	Tips           []string
}

// Items is the curated database searched by the heuristic classifier. Order
// matters: on equal scores the earlier item wins.
var Items = []Item{
	{
		Name: "Plastic Bottle", Category: model.CategoryPlastic, BaseConfidence: 75,
		Keywords:       []string{"plastic", "bottle", "pet", "water bottle", "soda", "drink"},
		Description:    "PET drinks bottle, widely recycled.",
		DisposalMethod: "Empty, rinse, replace the cap and place in the recycling bin.",
		Tips:           []string{"Crush to save space", "Caps can stay on"},
	},
	{
		Name: "Plastic Bag", Category: model.CategoryPlastic, BaseConfidence: 70,
		Keywords:       []string{"bag", "carrier", "shopping bag", "film", "wrap", "plastic"},
		Description:    "Soft plastic film or carrier bag.",
		DisposalMethod: "Return to a supermarket soft-plastics drop-off point.",
		Tips:           []string{"Never put film in curbside recycling", "Reuse bags where possible"},
	},
	{
		Name: "Plastic Container", Category: model.CategoryPlastic, BaseConfidence: 70,
		Keywords:       []string{"container", "tub", "yogurt", "yoghurt", "takeaway", "tray", "punnet", "tupperware"},
		Description:    "Rigid plastic food container.",
		DisposalMethod: "Rinse out food residue and place in the recycling bin.",
		Tips:           []string{"Black plastic trays are often not sortable"},
	},
	{
		Name: "Styrofoam", Category: model.CategoryOther, BaseConfidence: 70,
		Keywords:       []string{"styrofoam", "polystyrene", "foam", "eps"},
		Description:    "Expanded polystyrene packaging.",
		DisposalMethod: "General waste unless a specialist EPS collection exists nearby.",
		Tips:           []string{"Some packaging retailers take back clean EPS"},
	},
	{
		Name: "Cardboard Box", Category: model.CategoryPaper, BaseConfidence: 75,
		Keywords:       []string{"cardboard", "box", "carton", "parcel", "package", "corrugated"},
		Description:    "Corrugated cardboard packaging.",
		DisposalMethod: "Flatten and place in the paper recycling bin.",
		Tips:           []string{"Remove tape and labels", "Keep it dry"},
	},
	{
		Name: "Newspaper", Category: model.CategoryPaper, BaseConfidence: 75,
		Keywords:       []string{"newspaper", "paper", "magazine", "flyer", "leaflet", "print", "document", "mail"},
		Description:    "Newsprint and printed paper.",
		DisposalMethod: "Place in the paper recycling bin.",
		Tips:           []string{"Shredded paper should be bagged in paper"},
	},
	{
		Name: "Paper Cup", Category: model.CategoryPaper, BaseConfidence: 65,
		Keywords:       []string{"cup", "coffee cup", "paper cup", "takeaway cup"},
		Description:    "Plastic-lined paper cup.",
		DisposalMethod: "Use a dedicated cup recycling point; otherwise general waste.",
		Tips:           []string{"Lids go with plastics", "Bring a reusable cup"},
	},
	{
		Name: "Glass Bottle", Category: model.CategoryGlass, BaseConfidence: 75,
		Keywords:       []string{"glass", "bottle", "wine", "beer", "champagne"},
		Description:    "Glass drinks bottle.",
		DisposalMethod: "Rinse and place in the bottle bank or glass bin.",
		Tips:           []string{"Remove corks and caps", "Sort by colour if your bank asks"},
	},
	{
		Name: "Glass Jar", Category: model.CategoryGlass, BaseConfidence: 70,
		Keywords:       []string{"jar", "jam", "mason", "pickle", "sauce"},
		Description:    "Glass food jar.",
		DisposalMethod: "Rinse and place in the glass recycling bin.",
		Tips:           []string{"Metal lids go with cans"},
	},
	{
		Name: "Aluminum Can", Category: model.CategoryMetal, BaseConfidence: 75,
		Keywords:       []string{"can", "aluminum", "aluminium", "soda can", "beer can", "coke", "tin"},
		Description:    "Aluminium or steel drinks can.",
		DisposalMethod: "Rinse and place in the recycling bin.",
		Tips:           []string{"Cans are infinitely recyclable"},
	},
	{
		Name: "Aluminum Foil", Category: model.CategoryMetal, BaseConfidence: 65,
		Keywords:       []string{"foil", "wrap", "baking", "tray"},
		Description:    "Aluminium foil or foil tray.",
		DisposalMethod: "Clean, scrunch into a ball, and place in the recycling bin.",
		Tips:           []string{"If it springs back when scrunched it is plastic film"},
	},
	{
		Name: "Banana Peel", Category: model.CategoryOrganic, BaseConfidence: 80,
		Keywords:       []string{"banana", "peel", "skin", "fruit"},
		Description:    "Fruit peel, fully compostable.",
		DisposalMethod: "Place in the compost or green bin.",
		Tips:           []string{"Chop peels to speed up composting"},
	},
	{
		Name: "Apple Core", Category: model.CategoryOrganic, BaseConfidence: 75,
		Keywords:       []string{"apple", "core", "pear", "orange", "citrus"},
		Description:    "Fruit scraps.",
		DisposalMethod: "Place in the compost or green bin.",
		Tips:           []string{"Citrus composts slowly in small home bins"},
	},
	{
		Name: "Food Scraps", Category: model.CategoryOrganic, BaseConfidence: 70,
		Keywords:       []string{"food", "scraps", "leftovers", "vegetable", "veg", "salad", "rice", "bread", "pizza"},
		Description:    "Mixed food waste.",
		DisposalMethod: "Place in the food waste caddy or green bin.",
		Tips:           []string{"Meat and dairy belong in council food bins, not home compost"},
	},
	{
		Name: "Coffee Grounds", Category: model.CategoryOrganic, BaseConfidence: 75,
		Keywords:       []string{"coffee", "grounds", "espresso", "tea", "teabag"},
		Description:    "Used coffee grounds or tea leaves.",
		DisposalMethod: "Compost them; they are rich in nitrogen.",
		Tips:           []string{"Many tea bags contain plastic, check before composting"},
	},
	{
		Name: "Garden Waste", Category: model.CategoryOrganic, BaseConfidence: 70,
		Keywords:       []string{"leaf", "leaves", "grass", "garden", "branch", "twig", "plant", "flower"},
		Description:    "Garden clippings.",
		DisposalMethod: "Place in the garden waste bin or home compost.",
		Tips:           []string{"Avoid composting diseased plants"},
	},
	{
		Name: "Eggshells", Category: model.CategoryOrganic, BaseConfidence: 75,
		Keywords:       []string{"egg", "eggs", "eggshell", "shell"},
		Description:    "Eggshells, a good calcium source for compost.",
		DisposalMethod: "Crush and add to compost.",
		Tips:           []string{"Egg cartons go with paper"},
	},
	{
		Name: "Mobile Phone", Category: model.CategoryEWaste, BaseConfidence: 80,
		Keywords:       []string{"phone", "smartphone", "mobile", "iphone", "android", "cellphone"},
		Description:    "Mobile phone containing precious metals and a lithium battery.",
		DisposalMethod: "Return to an e-waste collection point or retailer take-back.",
		Tips:           []string{"Factory reset before recycling"},
	},
	{
		Name: "Laptop", Category: model.CategoryEWaste, BaseConfidence: 80,
		Keywords:       []string{"laptop", "computer", "notebook", "macbook", "pc", "keyboard", "monitor"},
		Description:    "Computer equipment.",
		DisposalMethod: "Take to an e-waste recycler or manufacturer take-back scheme.",
		Tips:           []string{"Remove and wipe storage drives"},
	},
	{
		Name: "Charger Cable", Category: model.CategoryEWaste, BaseConfidence: 75,
		Keywords:       []string{"charger", "cable", "cord", "usb", "adapter", "wire"},
		Description:    "Cable or charger.",
		DisposalMethod: "Take to an e-waste collection point.",
		Tips:           []string{"Bundle cables together with a tie"},
	},
	{
		Name: "Battery", Category: model.CategoryHazardous, BaseConfidence: 85,
		Keywords:       []string{"battery", "batteries", "aa", "aaa", "lithium", "cell", "powerbank"},
		Description:    "Battery. Fire risk in bins and trucks.",
		DisposalMethod: "Take to a battery collection point. Never put in household bins.",
		Tips:           []string{"Tape the terminals of lithium batteries"},
	},
	{
		Name: "Paint Can", Category: model.CategoryHazardous, BaseConfidence: 80,
		Keywords:       []string{"paint", "varnish", "solvent", "thinner", "stain"},
		Description:    "Paint or solvent container.",
		DisposalMethod: "Take to a household hazardous waste facility.",
		Tips:           []string{"Dried-out water-based paint may be accepted with general waste locally"},
	},
	{
		Name: "Light Bulb", Category: model.CategoryHazardous, BaseConfidence: 75,
		Keywords:       []string{"bulb", "lightbulb", "cfl", "fluorescent", "tube", "lamp"},
		Description:    "Light bulb; fluorescent types contain mercury.",
		DisposalMethod: "Return to a retailer or hazardous waste facility.",
		Tips:           []string{"Wrap broken bulbs before handling"},
	},
	{
		Name: "Medicine", Category: model.CategoryHazardous, BaseConfidence: 80,
		Keywords:       []string{"medicine", "pills", "pill", "tablets", "drugs", "syringe", "pharmacy", "blister"},
		Description:    "Medicine or sharps.",
		DisposalMethod: "Return unused medicine to a pharmacy; use a sharps container for needles.",
		Tips:           []string{"Never flush medicine"},
	},
	{
		Name: "Chemical Cleaner", Category: model.CategoryHazardous, BaseConfidence: 75,
		Keywords:       []string{"bleach", "chemical", "cleaner", "detergent", "pesticide", "aerosol", "spray"},
		Description:    "Household chemical product.",
		DisposalMethod: "Use up completely or take to a hazardous waste facility.",
		Tips:           []string{"Empty aerosols can go with metals"},
	},
	{
		Name: "Textile", Category: model.CategoryOther, BaseConfidence: 70,
		Keywords:       []string{"shirt", "clothes", "clothing", "textile", "fabric", "shoe", "shoes", "jeans", "sock"},
		Description:    "Clothing or textile.",
		DisposalMethod: "Donate if wearable; otherwise use a textile recycling bank.",
		Tips:           []string{"Pair shoes together before donating"},
	},
	{
		Name: "Diaper", Category: model.CategoryOther, BaseConfidence: 75,
		Keywords:       []string{"diaper", "nappy", "nappies", "diapers"},
		Description:    "Disposable nappy.",
		DisposalMethod: "Wrap and place in general waste.",
		Tips:           []string{"Consider reusable cloth nappies"},
	},
	{
		Name: "Cigarette Butt", Category: model.CategoryOther, BaseConfidence: 75,
		Keywords:       []string{"cigarette", "butt", "tobacco", "ash"},
		Description:    "Cigarette butt, plastic filter.",
		DisposalMethod: "Extinguish fully and place in general waste.",
		Tips:           []string{"Never drop butts in drains"},
	},
	{
		Name: "General Household Waste", Category: model.CategoryOther, BaseConfidence: 50,
		Keywords:       []string{"trash", "rubbish", "garbage", "waste", "litter", "junk"},
		Description:    "Mixed household waste.",
		DisposalMethod: "Place in general waste after removing recyclables.",
		Tips:           []string{"Sort out recyclables before binning"},
	},
}

// zeroScoreCandidates are chosen by filename hash when no item matches. The list
// never includes hazardous or electronic items.
var zeroScoreCandidates = []string{
	"Plastic Container",
	"Newspaper",
	"Glass Jar",
	"Aluminum Can",
	"Food Scraps",
	"General Household Waste",
}

// ItemByName looks up a database item
func ItemByName(name string) (Item, bool) {
	for _, it := range Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}
