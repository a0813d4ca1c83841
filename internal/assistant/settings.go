package assistant

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/nutriverse/nutribot/internal/profile"
)

// Profile fields a user can set directly.
const (
	FieldAge        = "age"
	FieldConditions = "conditions"
	FieldAllergies  = "allergies"
	FieldDiet       = "diet"
	FieldBaby       = "baby"
)

var (
	ErrUnknownField = errors.New("unknown profile field")
	ErrInvalidValue = errors.New("invalid profile value")
)

// SetField replaces one profile field from user input. List fields take a
// comma separated value; "none" clears them. Baby age is in months and 0
// clears it.
func (a *Assistant) SetField(userID, field, value string) (profile.Profile, error) {
	if userID == "" {
		return profile.Profile{}, profile.ErrEmptyUserID
	}
	value = strings.TrimSpace(value)

	var apply func(p *profile.Profile)
	switch strings.ToLower(field) {
	case FieldAge:
		n, err := parseCount(value, 1, 129)
		if err != nil {
			return profile.Profile{}, err
		}
		apply = func(p *profile.Profile) {
			p.Age = &n
			p.AgeGroup = profile.AgeGroupFor(n)
		}
	case FieldBaby:
		n, err := parseCount(value, 0, 60)
		if err != nil {
			return profile.Profile{}, err
		}
		apply = func(p *profile.Profile) {
			if n == 0 {
				p.BabyAgeMonths = nil
				return
			}
			p.HasChildren = true
			p.BabyAgeMonths = &n
		}
	case FieldConditions:
		tags := parseTags(value)
		apply = func(p *profile.Profile) { p.MedicalConditions = tags }
	case FieldAllergies:
		tags := parseTags(value)
		apply = func(p *profile.Profile) { p.Allergies = tags }
	case FieldDiet:
		tags := parseTags(value)
		apply = func(p *profile.Profile) { p.DietPreferences = tags }
	default:
		return profile.Profile{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	unlock := a.profiles.Lock(userID)
	defer unlock()
	p, err := a.profiles.Update(userID, apply)
	if err != nil {
		return profile.Profile{}, err
	}
	a.logger.Info("Profile field set", "user_id", userID, "field", field, "segment", p.Segment)
	return p, nil
}

func parseCount(value string, low, high int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < low || n > high {
		return 0, fmt.Errorf("%w: %q must be a whole number between %d and %d", ErrInvalidValue, value, low, high)
	}
	return n, nil
}

// parseTags normalizes "Nut Allergy, diabetes" into ["nut_allergy", "diabetes"].
func parseTags(value string) []string {
	if strings.EqualFold(value, "none") {
		return []string{}
	}
	tags := lo.FilterMap(strings.Split(value, ","), func(s string, _ int) (string, bool) {
		s = strings.Join(strings.Fields(strings.ToLower(s)), "_")
		return s, s != ""
	})
	return lo.Uniq(tags)
}
