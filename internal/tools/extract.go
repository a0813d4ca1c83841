package tools

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nutriverse/nutribot/internal/profile"
)

const (
	ingredientSpan       = 200
	defaultBabyAgeMonths = 6
)

var ingredientKeywords = []string{"ingredients", "contains", "made with", "composition", "made from"}

var babyAgeRe = regexp.MustCompile(`(\d+)\s*(month|months|monthly|mo)`)

// ExtractIngredients returns up to 200 bytes of text following the first
// ingredient keyword found, or "" when the message has none.
func ExtractIngredients(message string) string {
	low := foldASCII(message)
	for _, kw := range ingredientKeywords {
		i := strings.Index(low, kw)
		if i < 0 {
			continue
		}
		start := i + len(kw)
		end := min(start+ingredientSpan, len(message))
		for end > start && end < len(message) && !utf8.RuneStart(message[end]) {
			end--
		}
		if text := strings.TrimSpace(strings.TrimLeft(message[start:end], ": ")); text != "" {
			return text
		}
	}
	return ""
}

// foldASCII lowercases ASCII letters only, keeping byte offsets valid.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// MentionedBabyAge returns the month count mentioned in message.
func MentionedBabyAge(message string) (int, bool) {
	m := babyAgeRe.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BabyAgeMonths picks the baby age for a safety check: the message first,
// then the profile, then six months.
func BabyAgeMonths(message string, p profile.Profile) int {
	if n, ok := MentionedBabyAge(message); ok {
		return n
	}
	if p.BabyAgeMonths != nil {
		return *p.BabyAgeMonths
	}
	return defaultBabyAgeMonths
}

// Problem types passed to community insights.
const (
	ProblemChildHealth = "child_health"
	ProblemDigestive   = "digestive_issues"
	ProblemDiabetes    = "diabetes"
	ProblemHeart       = "heart_health"
	ProblemGeneral     = "general_health"
)

// ProblemType classifies the health problem a message is about.
func ProblemType(message string) string {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, []string{"baby", "infant", "child"}):
		return ProblemChildHealth
	case containsAny(msg, []string{"bloating", "stomach", "digest"}):
		return ProblemDigestive
	case containsAny(msg, []string{"sugar", "diabet"}):
		return ProblemDiabetes
	case containsAny(msg, []string{"heart", "blood pressure"}):
		return ProblemHeart
	default:
		return ProblemGeneral
	}
}

var productTypes = []string{"formula", "cereal", "yogurt", "milk", "cheese", "bread", "drink", "snack", "baby food"}

// ProductType returns the first product type named in message, or "general".
func ProductType(message string) string {
	msg := strings.ToLower(message)
	for _, t := range productTypes {
		if strings.Contains(msg, t) {
			return t
		}
	}
	return "general"
}

var ageAdvice = map[string]string{
	"baby_0_6_months":  "Only breast milk or formula recommended",
	"baby_6_8_months":  "Pureed foods, no salt/sugar, avoid egg whites and honey",
	"baby_8_12_months": "Can introduce egg yolks, yogurt, soft fruits",
	"child_1_5_years":  "Limit processed foods, watch for choking hazards",
	"50_plus":          "Focus on heart-healthy, low-sodium, high-fiber options",
	"general":          "Balanced diet with variety of fruits, vegetables, and whole grains",
}

// AgeAdviceKey picks the advice bracket for a profile. A baby age wins over
// the user's own age group.
func AgeAdviceKey(p profile.Profile) string {
	if m := p.BabyAgeMonths; m != nil {
		switch {
		case *m <= 6:
			return "baby_0_6_months"
		case *m <= 8:
			return "baby_6_8_months"
		case *m <= 12:
			return "baby_8_12_months"
		case *m <= 60:
			return "child_1_5_years"
		}
	}
	switch p.AgeGroup {
	case profile.AgeGroup50Plus:
		return "50_plus"
	case profile.AgeGroupChild:
		return "child_1_5_years"
	default:
		return "general"
	}
}

// AgeAdvice returns the advice text for a bracket key, or the general advice.
func AgeAdvice(key string) string {
	if a, ok := ageAdvice[key]; ok {
		return a
	}
	return ageAdvice["general"]
}
