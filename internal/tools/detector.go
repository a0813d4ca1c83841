package tools

import (
	"slices"
	"strings"
)

type rule struct {
	keywords []string
	kinds    []Kind
}

// rules are checked in order; every matching rule contributes its kinds.
var rules = []rule{
	{keywords: []string{"similar", "other", "another", "same", "else"}, kinds: []Kind{KindSimilarUsers}},
	{keywords: []string{"ingredient", "content", "material", "contains"}, kinds: []Kind{KindAnalyzeIngr}},
	{keywords: []string{"photo", "image", "picture"}, kinds: []Kind{KindImageIngredients}},
	{keywords: []string{"baby", "child", "infant", "toddler"}, kinds: []Kind{KindBabySafety, KindAgeAdvice}},
	{keywords: []string{"risk", "safe", "dangerous", "healthy"}, kinds: []Kind{KindNutritionRisk}},
}

var symptomKeywords = []string{"bloating", "pain", "hurt", "symptom", "feel bad"}

// Detection is the outcome of Detect.
type Detection struct {
	// Tools is deduplicated and sorted.
	Tools []Kind
	// SymptomReported is set when the message describes symptoms; the
	// caller records the event on the profile before running tools.
	SymptomReported bool
}

// Detect maps a message to the tools it needs. The profile tool is always
// included.
func Detect(message string) Detection {
	msg := strings.ToLower(message)
	kinds := []Kind{KindUserProfile}

	for _, r := range rules {
		if containsAny(msg, r.keywords) {
			kinds = append(kinds, r.kinds...)
		}
	}

	d := Detection{}
	if containsAny(msg, symptomKeywords) {
		kinds = append(kinds, KindSimilarUsers)
		d.SymptomReported = true
	}

	slices.Sort(kinds)
	d.Tools = slices.Compact(kinds)
	return d
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
