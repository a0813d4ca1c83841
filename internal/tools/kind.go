// Package tools decides which auxiliary tools a chat message needs and runs
// them with per-tool failure isolation.
package tools

// Kind identifies a tool.
type Kind string

const (
	KindUserProfile      Kind = "get_user_profile"
	KindSimilarUsers     Kind = "find_similar_users"
	KindAnalyzeIngr      Kind = "analyze_ingredients"
	KindImageIngredients Kind = "extract_ingredients_from_image"
	KindCommunity        Kind = "get_community_insights"
	KindNutritionRisk    Kind = "calculate_nutrition_risk"
	KindAgeAdvice        Kind = "get_age_specific_advice"
	KindBabySafety       Kind = "check_baby_safety"
)

var descriptions = map[Kind]string{
	KindUserProfile:      "Get anonymized user profile and segment information",
	KindSimilarUsers:     "Find users with similar health problems in anonymized segments",
	KindAnalyzeIngr:      "Analyze product ingredients for health risks",
	KindImageIngredients: "Extract ingredients from product image using vision",
	KindCommunity:        "Get community feedback for similar health conditions",
	KindNutritionRisk:    "Calculate nutritional risks based on user profile",
	KindAgeAdvice:        "Get age-specific nutrition advice",
	KindBabySafety:       "Check product safety for babies/children",
}

// Description returns the human-readable description of k.
func (k Kind) Description() string {
	return descriptions[k]
}

// Known reports whether k has a description, that is, whether it is a
// tool this package defines.
func (k Kind) Known() bool {
	_, ok := descriptions[k]
	return ok
}
