package segment_test

import (
	"testing"

	"github.com/nutriverse/nutribot/internal/segment"
)

func intPtr(v int) *int { return &v }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input segment.Input
		want  string
	}{
		{name: "empty profile", input: segment.Input{}, want: segment.GeneralHealth},
		{name: "unknown condition", input: segment.Input{MedicalConditions: []string{"migraine"}}, want: segment.GeneralHealth},
		{name: "diabetes", input: segment.Input{MedicalConditions: []string{"diabetes"}}, want: segment.DiabetesManagement},
		{name: "allergy tag counts", input: segment.Input{Allergies: []string{"nut_allergy"}}, want: segment.AllergyManagement},
		{name: "baby four months", input: segment.Input{BabyAgeMonths: intPtr(4)}, want: segment.BabyParents0to6},
		{name: "baby six months boundary", input: segment.Input{BabyAgeMonths: intPtr(6)}, want: segment.BabyParents0to6},
		{name: "baby seven months", input: segment.Input{BabyAgeMonths: intPtr(7)}, want: segment.BabyParents6to12},
		{name: "baby twelve months boundary", input: segment.Input{BabyAgeMonths: intPtr(12)}, want: segment.BabyParents6to12},
		{name: "baby zero months", input: segment.Input{BabyAgeMonths: intPtr(0)}, want: segment.GeneralHealth},
		{name: "toddler", input: segment.Input{BabyAgeMonths: intPtr(20)}, want: segment.GeneralHealth},
		{
			name:  "tie keeps earlier catalog entry",
			input: segment.Input{MedicalConditions: []string{"ibs", "diabetes"}},
			want:  segment.DiabetesManagement,
		},
		{
			name:  "strictly higher count wins",
			input: segment.Input{MedicalConditions: []string{"diabetes", "heart_disease", "hypertension"}},
			want:  segment.HeartHealth,
		},
		{
			name:  "baby tag ties with diabetes",
			input: segment.Input{MedicalConditions: []string{"diabetes"}, BabyAgeMonths: intPtr(3)},
			want:  segment.BabyParents0to6,
		},
		{
			name:  "allergies and conditions combine",
			input: segment.Input{MedicalConditions: []string{"bloating"}, Allergies: []string{"soy_allergy", "gluten_sensitivity"}},
			want:  segment.AllergyManagement,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := segment.Classify(tc.input); got != tc.want {
				t.Errorf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	a := segment.Input{MedicalConditions: []string{"hypertension", "ibs", "diabetes"}, Allergies: []string{"lactose_intolerant"}}
	b := segment.Input{MedicalConditions: []string{"diabetes", "lactose_intolerant"}, Allergies: []string{"ibs", "hypertension"}}

	first := segment.Classify(a)
	for i := 0; i < 50; i++ {
		if got := segment.Classify(a); got != first {
			t.Fatalf("iteration %d: Classify() = %q, want %q", i, got, first)
		}
		if got := segment.Classify(b); got != first {
			t.Fatalf("iteration %d: same tag set in different order gave %q, want %q", i, got, first)
		}
	}
}

func TestCatalogIsCopied(t *testing.T) {
	t.Parallel()

	c := segment.Catalog()
	c[0].Conditions[0] = "mutated"
	c[0].Name = "mutated"

	if got := segment.Catalog()[0]; got.Name != segment.BabyParents0to6 || got.Conditions[0] != segment.TagBaby0to6 {
		t.Errorf("catalog was mutated through returned copy: %+v", got)
	}
	if !segment.Valid(segment.GeneralHealth) {
		t.Error("general_health must be a valid segment")
	}
	if got := segment.Description(segment.HeartHealth); got != "Users with heart conditions" {
		t.Errorf("Description(heart_health) = %q", got)
	}
}
