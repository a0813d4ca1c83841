package analysis

// Baby age keys used for knowledge lookups and hazard scans.
const (
	DietBaby0to6  = "baby_0_6"
	DietBaby6to8  = "baby_6_8"
	DietBaby8to12 = "baby_8_12"
)

// hazardTerms lists, per restriction key, the ingredient names scanned for
// when the model output carries no hazard list. Order is the scan order.
var hazardTerms = map[string][]string{
	"celiac":        {"wheat", "gluten", "barley", "rye", "oats", "malt"},
	"diabetes":      {"sugar", "glucose", "fructose", "sucrose", "syrup", "honey"},
	"vegan":         {"milk", "egg", "honey", "gelatin", "cheese", "yogurt"},
	"vegetarian":    {"meat", "fish", "chicken", "beef", "pork", "gelatin"},
	"lactose":       {"milk", "cheese", "yogurt", "whey", "lactose", "dairy"},
	"nut_allergy":   {"peanut", "almond", "walnut", "hazelnut", "cashew", "pistachio"},
	"soy_allergy":   {"soy", "soybean", "tofu", "soy lecithin", "soy protein"},
	"heart_disease": {"saturated fat", "trans fat", "cholesterol", "sodium", "salt"},
	"hypertension":  {"sodium", "salt", "msg", "monosodium glutamate"},
	DietBaby0to6:    {"honey", "salt", "sugar", "cow milk"},
	DietBaby6to8:    {"honey", "salt", "sugar", "egg whites", "nuts"},
	DietBaby8to12:   {"honey", "salt", "sugar", "choking hazards"},
}

// dietQueries maps a restriction key to the knowledge search query used to
// gather hazard background for it.
var dietQueries = map[string]string{
	"celiac":        "gluten wheat barley rye celiac disease autoimmune",
	"diabetes":      "sugar glucose fructose carbohydrates glycemic insulin",
	"vegan":         "vegan animal milk egg honey gelatin dairy",
	"vegetarian":    "vegetarian meat fish chicken poultry gelatin",
	"lactose":       "lactose milk dairy cheese whey intolerance",
	"nut_allergy":   "nut peanut almond walnut hazelnut allergy anaphylaxis",
	"soy_allergy":   "soy soybean tofu soybeans allergy",
	"heart_disease": "saturated fat cholesterol sodium salt heart cardiovascular",
	"hypertension":  "sodium salt blood pressure hypertension",
	DietBaby0to6:    "infant formula breast milk 0-6 months honey salt sugar",
	DietBaby6to8:    "6-8 months puree salt sugar honey egg whites",
	DietBaby8to12:   "8-12 months soft foods choking hazards salt sugar",
}

// HazardTerms returns a copy of the fallback hazard terms for diet.
func HazardTerms(diet string) []string {
	return append([]string(nil), hazardTerms[diet]...)
}

// KnownDiet reports whether diet has a hazard table entry.
func KnownDiet(diet string) bool {
	_, ok := hazardTerms[diet]
	return ok
}

// babyAgeRanges are inclusive month ranges; the first match wins.
var babyAgeRanges = []struct {
	min, max int
	diet     string
}{
	{0, 6, DietBaby0to6},
	{6, 8, DietBaby6to8},
	{8, 12, DietBaby8to12},
}

// BabyDiet returns the restriction key for a baby's age in months.
func BabyDiet(months int) (string, bool) {
	for _, r := range babyAgeRanges {
		if months >= r.min && months <= r.max {
			return r.diet, true
		}
	}
	return "", false
}
