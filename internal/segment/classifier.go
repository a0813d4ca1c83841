package segment

// Input is the subset of a profile the classifier looks at.
type Input struct {
	MedicalConditions []string
	Allergies         []string
	BabyAgeMonths     *int
}

// ActiveTags returns the condition tags a profile currently carries:
// conditions, allergies and at most one synthetic baby-age tag.
func ActiveTags(in Input) map[string]struct{} {
	tags := make(map[string]struct{}, len(in.MedicalConditions)+len(in.Allergies)+1)
	for _, c := range in.MedicalConditions {
		tags[c] = struct{}{}
	}
	for _, a := range in.Allergies {
		tags[a] = struct{}{}
	}
	if in.BabyAgeMonths != nil {
		switch m := *in.BabyAgeMonths; {
		case m > 0 && m <= 6:
			tags[TagBaby0to6] = struct{}{}
		case m > 6 && m <= 12:
			tags[TagBaby6to12] = struct{}{}
		}
	}
	return tags
}

// Classify returns the segment whose required conditions overlap most with
// the profile's active tags. A later definition only wins with a strictly
// higher count, and zero overlap falls back to GeneralHealth.
func Classify(in Input) string {
	tags := ActiveTags(in)

	best := GeneralHealth
	bestCount := 0
	for _, def := range catalog {
		count := 0
		for _, c := range def.Conditions {
			if _, ok := tags[c]; ok {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = def.Name
		}
	}
	return best
}
