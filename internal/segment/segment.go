// Package segment holds the static catalog of user segments and the
// classifier that assigns a profile to one of them.
package segment

// Segment names. The order of Catalog below decides ties during classification.
const (
	BabyParents0to6    = "baby_parents_0_6"
	BabyParents6to12   = "baby_parents_6_12"
	DiabetesManagement = "diabetes_management"
	HeartHealth        = "heart_health"
	DigestiveIssues    = "digestive_issues"
	AllergyManagement  = "allergy_management"
	GeneralHealth      = "general_health"
)

// Synthetic condition tags derived from the age of a user's baby.
const (
	TagBaby0to6  = "has_baby_0_6"
	TagBaby6to12 = "has_baby_6_12"
)

// Definition is one entry of the segment catalog.
type Definition struct {
	Name        string
	Conditions  []string
	Description string
}

// catalog is built once and never mutated.
var catalog = []Definition{
	{Name: BabyParents0to6, Conditions: []string{TagBaby0to6}, Description: "Parents with babies 0-6 months"},
	{Name: BabyParents6to12, Conditions: []string{TagBaby6to12}, Description: "Parents with babies 6-12 months"},
	{Name: DiabetesManagement, Conditions: []string{"diabetes"}, Description: "Users managing diabetes"},
	{Name: HeartHealth, Conditions: []string{"heart_disease", "hypertension"}, Description: "Users with heart conditions"},
	{Name: DigestiveIssues, Conditions: []string{"bloating", "ibs", "lactose_intolerant"}, Description: "Users with digestive problems"},
	{Name: AllergyManagement, Conditions: []string{"nut_allergy", "soy_allergy", "gluten_sensitivity"}, Description: "Users managing food allergies"},
	{Name: GeneralHealth, Conditions: nil, Description: "General health conscious users"},
}

// Catalog returns a copy of the segment definitions in declaration order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	for i, d := range catalog {
		out[i] = Definition{
			Name:        d.Name,
			Conditions:  append([]string(nil), d.Conditions...),
			Description: d.Description,
		}
	}
	return out
}

// Lookup returns the definition with the given name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Description returns the human-readable description of a segment, or an
// empty string for unknown names.
func Description(name string) string {
	d, _ := Lookup(name)
	return d.Description
}

// Valid reports whether name is a catalog segment.
func Valid(name string) bool {
	_, ok := Lookup(name)
	return ok
}
