package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nutriverse/nutribot/internal/analysis"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		diet string
		want analysis.Verdict
	}{
		{
			name: "all markers",
			text: "SUITABLE: NO\nRISK_LEVEL: HIGH\nHAZARDOUS_INGREDIENTS: wheat, gluten\nEXPLANATION: contains gluten",
			diet: "celiac",
			want: analysis.Verdict{Suitable: false, RiskLevel: analysis.RiskHigh, Hazards: []string{"wheat", "gluten"}, Explanation: "contains gluten"},
		},
		{
			name: "no markers falls back to hazard scan",
			text: "This product seems fine but contains wheat flour.",
			diet: "celiac",
			want: analysis.Verdict{Suitable: false, RiskLevel: analysis.RiskHigh, Hazards: []string{"wheat"}, Explanation: analysis.AnalysisIncomplete},
		},
		{
			name: "none suppresses list",
			text: "Suitable: yes\nRisk_Level: low\nHazardous_Ingredients: None\nExplanation: all good",
			diet: "diabetes",
			want: analysis.Verdict{Suitable: true, RiskLevel: analysis.RiskLow, Hazards: []string{analysis.NoHazardsDetected}, Explanation: "all good"},
		},
		{
			name: "none in span still allows fallback",
			text: "SUITABLE: NO\nRISK_LEVEL: MEDIUM\nHAZARDOUS_INGREDIENTS: none listed\nEXPLANATION: sweetened with honey",
			diet: "diabetes",
			want: analysis.Verdict{Suitable: false, RiskLevel: analysis.RiskMedium, Hazards: []string{"honey"}, Explanation: "sweetened with honey"},
		},
		{
			name: "bracketed values",
			text: "SUITABLE: [YES]\nRISK_LEVEL: [MEDIUM]\nHAZARDOUS_INGREDIENTS: [milk, egg]\nEXPLANATION: [check label]",
			diet: "vegan",
			want: analysis.Verdict{Suitable: true, RiskLevel: analysis.RiskMedium, Hazards: []string{"milk", "egg"}, Explanation: "[check label]"},
		},
		{
			name: "unknown risk level is high",
			text: "suitable:yes\nrisk_level: extreme",
			diet: "vegan",
			want: analysis.Verdict{Suitable: true, RiskLevel: analysis.RiskHigh, Hazards: []string{analysis.NoHazardsDetected}, Explanation: analysis.AnalysisIncomplete},
		},
		{
			name: "hazards run to end of text",
			text: "SUITABLE: no\nHAZARDOUS_INGREDIENTS: peanut, cashew ",
			diet: "nut_allergy",
			want: analysis.Verdict{Suitable: false, RiskLevel: analysis.RiskHigh, Hazards: []string{"peanut", "cashew"}, Explanation: analysis.AnalysisIncomplete},
		},
		{
			name: "suitable must start with yes",
			text: "SUITABLE: probably yes",
			diet: "unknown_diet",
			want: analysis.Verdict{Suitable: false, RiskLevel: analysis.RiskHigh, Hazards: []string{analysis.NoHazardsDetected}, Explanation: analysis.AnalysisIncomplete},
		},
		{
			name: "empty explanation keeps sentinel",
			text: "SUITABLE: YES\nEXPLANATION:   ",
			diet: "celiac",
			want: analysis.Verdict{Suitable: true, RiskLevel: analysis.RiskHigh, Hazards: []string{analysis.NoHazardsDetected}, Explanation: analysis.AnalysisIncomplete},
		},
		{
			name: "non ascii text keeps offsets",
			text: "Ürün İnceleme\nSUITABLE: YES\nRISK_LEVEL: LOW\nHAZARDOUS_INGREDIENTS: şeker\nEXPLANATION: İçerik uygun",
			diet: "diabetes",
			want: analysis.Verdict{Suitable: true, RiskLevel: analysis.RiskLow, Hazards: []string{"şeker"}, Explanation: "İçerik uygun"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := analysis.Parse(tc.text, tc.diet)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRiskScore(t *testing.T) {
	t.Parallel()

	verdict := func(diet string, ok bool) analysis.DietVerdict {
		return analysis.DietVerdict{Diet: diet, Verdict: analysis.Verdict{Suitable: ok}}
	}

	tests := []struct {
		name    string
		results []analysis.DietVerdict
		want    float64
		label   string
	}{
		{name: "empty", results: nil, want: 0, label: analysis.SafetyRisky},
		{name: "all suitable", results: []analysis.DietVerdict{verdict("a", true), verdict("b", true)}, want: 100, label: analysis.SafetySafe},
		{name: "one of four", results: []analysis.DietVerdict{verdict("a", true), verdict("b", false), verdict("c", false), verdict("d", false)}, want: 25, label: analysis.SafetyRisky},
		{name: "three of four", results: []analysis.DietVerdict{verdict("a", true), verdict("b", true), verdict("c", true), verdict("d", false)}, want: 75, label: analysis.SafetyModerate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := analysis.RiskScore(tc.results)
			if got != tc.want {
				t.Errorf("RiskScore() = %v, want %v", got, tc.want)
			}
			if label := analysis.SafetyLabel(got); label != tc.label {
				t.Errorf("SafetyLabel(%v) = %q, want %q", got, label, tc.label)
			}
		})
	}
}

func TestBabyDiet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		months int
		want   string
		ok     bool
	}{
		{0, analysis.DietBaby0to6, true},
		{6, analysis.DietBaby0to6, true},
		{7, analysis.DietBaby6to8, true},
		{8, analysis.DietBaby6to8, true},
		{12, analysis.DietBaby8to12, true},
		{13, "", false},
		{-1, "", false},
	}
	for _, tc := range tests {
		got, ok := analysis.BabyDiet(tc.months)
		if got != tc.want || ok != tc.ok {
			t.Errorf("BabyDiet(%d) = %q, %v; want %q, %v", tc.months, got, ok, tc.want, tc.ok)
		}
	}
}
