package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/assistant"
	"github.com/nutriverse/nutribot/internal/community"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/segment"
)

func orNotSet(items []string) string {
	if len(items) == 0 {
		return "not set"
	}
	return strings.Join(items, ", ")
}

func formatProfile(p profile.Profile) string {
	var b strings.Builder
	b.WriteString("🧾 Your profile\n")
	if p.Age != nil {
		fmt.Fprintf(&b, "Age: %d (%s)\n", *p.Age, p.AgeGroup)
	} else {
		b.WriteString("Age: not set\n")
	}
	fmt.Fprintf(&b, "Conditions: %s\n", orNotSet(p.MedicalConditions))
	fmt.Fprintf(&b, "Allergies: %s\n", orNotSet(p.Allergies))
	fmt.Fprintf(&b, "Diet: %s\n", orNotSet(p.DietPreferences))
	if p.BabyAgeMonths != nil {
		fmt.Fprintf(&b, "Baby: %d months\n", *p.BabyAgeMonths)
	} else if p.HasChildren {
		b.WriteString("Children: yes\n")
	}
	fmt.Fprintf(&b, "Segment: %s\n", segment.Description(p.Segment))
	fmt.Fprintf(&b, "Conversations: %d, product checks: %d", p.Interactions, len(p.PreviousAnalyses))
	return b.String()
}

// question returns the configured prompt for a missing profile detail.
func question(q assistant.Question, msgs config.MessagesConfig) string {
	switch q {
	case assistant.QuestionAge:
		return msgs.AskAge
	case assistant.QuestionConditions:
		return msgs.AskConditions
	case assistant.QuestionDiet:
		return msgs.AskDiet
	default:
		return ""
	}
}

var safetyIcons = map[string]string{
	analysis.SafetySafe:     "🟢",
	analysis.SafetyModerate: "🟡",
	analysis.SafetyRisky:    "🔴",
}

func formatReport(r analysis.ProductReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s (%s)\n", safetyIcons[r.Safety], r.Safety, r.ProductName, r.Brand)
	fmt.Fprintf(&b, "Score: %.0f/100\n", r.RiskScore)
	for _, dv := range r.Results {
		mark := "✅"
		if !dv.Verdict.Suitable {
			mark = "⚠️"
		}
		fmt.Fprintf(&b, "\n%s %s: %s risk", mark, dv.Diet, dv.Verdict.RiskLevel)
		if !dv.Verdict.Suitable {
			fmt.Fprintf(&b, ", avoid: %s", strings.Join(dv.Verdict.Hazards, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n", dv.Verdict.Explanation)
	}
	if r.Ingredients != "" {
		fmt.Fprintf(&b, "\nIngredients: %s", r.Ingredients)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatInsight(header string, in community.Insight, err error, segmentName string) string {
	if errors.Is(err, community.ErrNoSegmentData) {
		return community.NoDataMessage(segmentName)
	}
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "%s: %d members\n", in.Description, in.Members)
	fmt.Fprintf(&b, "Common complaints: %s\n", orNotSet(in.TopComplaints))
	fmt.Fprintf(&b, "What helped others: %s", orNotSet(in.TopRecommendations))
	return b.String()
}

func formatStats(format string, profiles []profile.Profile, passages int) string {
	counts := map[string]int{}
	for _, p := range profiles {
		counts[p.Segment]++
	}
	lines := make([]string, 0, len(counts))
	for _, def := range segment.Catalog() {
		if n := counts[def.Name]; n > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %d", def.Name, n))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "- none")
	}
	return fmt.Sprintf(format, len(profiles), passages, strings.Join(lines, "\n"))
}
