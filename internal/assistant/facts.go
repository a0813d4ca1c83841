package assistant

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/tools"
)

var agePattern = regexp.MustCompile(`(\d+)\s*(years?|year)`)

var (
	babyWords   = []string{"baby", "infant", "newborn", "toddler"}
	parentWords = []string{"my baby", "my child", "my son", "my daughter", "my kid", "my toddler"}
)

type conditionRule struct {
	tag      string
	keywords []string
	allergy  bool
}

// conditionRules map message keywords to the condition and allergy tags the
// segment catalog understands.
var conditionRules = []conditionRule{
	{tag: "diabetes", keywords: []string{"diabet"}},
	{tag: "heart_disease", keywords: []string{"heart disease", "heart condition", "cardiac"}},
	{tag: "hypertension", keywords: []string{"hypertension", "high blood pressure"}},
	{tag: "lactose_intolerant", keywords: []string{"lactose"}},
	{tag: "ibs", keywords: []string{"irritable bowel"}},
	{tag: "gluten_sensitivity", keywords: []string{"gluten", "celiac", "coeliac"}, allergy: true},
	{tag: "nut_allergy", keywords: []string{"nut allerg", "peanut"}, allergy: true},
	{tag: "soy_allergy", keywords: []string{"soy allerg"}, allergy: true},
}

// Facts are the profile details a message reveals.
type Facts struct {
	Age           *int
	HasChildren   bool
	BabyAgeMonths *int
	Conditions    []string
	Allergies     []string
}

// Empty reports whether no fact was found.
func (f Facts) Empty() bool {
	return f.Age == nil && !f.HasChildren && f.BabyAgeMonths == nil && len(f.Conditions) == 0 && len(f.Allergies) == 0
}

// ExtractFacts scans a free-text message for the user's age, a baby's age in
// months and known condition or allergy keywords.
func ExtractFacts(message string) Facts {
	msg := strings.ToLower(message)
	var f Facts

	if m := agePattern.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 130 {
			f.Age = &n
		}
	}

	if containsAny(msg, parentWords) {
		f.HasChildren = true
	}
	if containsAny(msg, babyWords) {
		if n, ok := tools.MentionedBabyAge(msg); ok {
			f.HasChildren = true
			f.BabyAgeMonths = &n
		}
	}

	for _, r := range conditionRules {
		if !containsAny(msg, r.keywords) {
			continue
		}
		if r.allergy {
			f.Allergies = append(f.Allergies, r.tag)
		} else {
			f.Conditions = append(f.Conditions, r.tag)
		}
	}
	return f
}

// Apply merges f into p. A known age is never overwritten, a newer baby age
// is, and tags are only added.
func (f Facts) Apply(p *profile.Profile) {
	if f.Age != nil && p.Age == nil {
		age := *f.Age
		p.Age = &age
		p.AgeGroup = profile.AgeGroupFor(age)
	}
	if f.HasChildren {
		p.HasChildren = true
	}
	if f.BabyAgeMonths != nil {
		months := *f.BabyAgeMonths
		p.BabyAgeMonths = &months
	}
	p.MedicalConditions = addTags(p.MedicalConditions, f.Conditions)
	p.Allergies = addTags(p.Allergies, f.Allergies)
}

func addTags(dst, tags []string) []string {
	for _, t := range tags {
		if !slices.Contains(dst, t) {
			dst = append(dst, t)
		}
	}
	return dst
}

// Question names a profile detail worth asking the user about.
type Question string

const (
	QuestionNone       Question = ""
	QuestionAge        Question = "age"
	QuestionConditions Question = "conditions"
	QuestionDiet       Question = "diet"
)

// NextQuestion returns the first missing profile detail, one at a time.
func NextQuestion(p profile.Profile) Question {
	switch {
	case p.Age == nil:
		return QuestionAge
	case len(p.MedicalConditions) == 0 && len(p.Allergies) == 0:
		return QuestionConditions
	case len(p.DietPreferences) == 0:
		return QuestionDiet
	default:
		return QuestionNone
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
