// Package profile owns user profiles and conversation histories for the
// lifetime of the process.
package profile

import (
	"time"

	"github.com/nutriverse/nutribot/internal/segment"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Age group labels.
const (
	AgeGroupChild  = "child"
	AgeGroupAdult  = "adult"
	AgeGroup50Plus = "50_plus"
)

// Turn is one entry of a conversation history.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Recommendation is a recommendation that worked for a user.
type Recommendation struct {
	Text string
	At   time.Time
}

// AnalysisRecord is a past product analysis kept on the profile.
type AnalysisRecord struct {
	At          time.Time
	Brand       string
	ProductName string
	RiskScore   float64
	Safety      string
}

// Profile is a user's health profile. Values handed out by the Store are
// copies; mutate through Store.Update.
type Profile struct {
	UserID            string
	Age               *int
	AgeGroup          string
	MedicalConditions []string
	Allergies         []string
	DietPreferences   []string
	HasChildren       bool
	BabyAgeMonths     *int

	PreviousAnalyses          []AnalysisRecord
	Interactions              int
	Complaints                []string
	SuccessfulRecommendations []Recommendation

	Segment    string
	CreatedAt  time.Time
	LastActive time.Time
}

// Preferences returns the diet keys an ingredient analysis should be run
// against: medical conditions followed by allergies.
func (p Profile) Preferences() []string {
	out := make([]string, 0, len(p.MedicalConditions)+len(p.Allergies))
	out = append(out, p.MedicalConditions...)
	return append(out, p.Allergies...)
}

// RecommendationTexts returns up to limit recommendation texts, oldest
// first. A limit <= 0 returns all of them.
func (p Profile) RecommendationTexts(limit int) []string {
	recs := p.SuccessfulRecommendations
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Text)
	}
	return out
}

func (p Profile) segmentInput() segment.Input {
	return segment.Input{
		MedicalConditions: p.MedicalConditions,
		Allergies:         p.Allergies,
		BabyAgeMonths:     p.BabyAgeMonths,
	}
}

func (p Profile) clone() Profile {
	c := p
	c.Age = cloneInt(p.Age)
	c.BabyAgeMonths = cloneInt(p.BabyAgeMonths)
	c.MedicalConditions = cloneSlice(p.MedicalConditions)
	c.Allergies = cloneSlice(p.Allergies)
	c.DietPreferences = cloneSlice(p.DietPreferences)
	c.PreviousAnalyses = cloneSlice(p.PreviousAnalyses)
	c.Complaints = cloneSlice(p.Complaints)
	c.SuccessfulRecommendations = cloneSlice(p.SuccessfulRecommendations)
	return c
}

// AgeGroupFor maps an age in years to an age group label.
func AgeGroupFor(age int) string {
	switch {
	case age >= 50:
		return AgeGroup50Plus
	case age >= 18:
		return AgeGroupAdult
	default:
		return AgeGroupChild
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
