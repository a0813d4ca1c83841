package analysis

import (
	"strings"
	"unicode"
)

const (
	markerSuitable    = "suitable:"
	markerRiskLevel   = "risk_level:"
	markerHazards     = "hazardous_ingredients:"
	markerExplanation = "explanation:"
)

// Parse extracts a verdict from free-form model output. It never fails:
// missing markers fall back to suitable=false and HIGH risk, and a missing
// hazard list falls back to scanning the whole text for the diet's hazard
// terms.
func Parse(text, diet string) Verdict {
	low := lowerASCII(text)
	v := Verdict{RiskLevel: RiskHigh, Explanation: AnalysisIncomplete}

	if i := strings.Index(low, markerSuitable); i >= 0 {
		v.Suitable = strings.HasPrefix(trimValue(low[i+len(markerSuitable):]), "yes")
	}

	if i := strings.Index(low, markerRiskLevel); i >= 0 {
		switch RiskLevel(strings.ToUpper(firstWord(low[i+len(markerRiskLevel):]))) {
		case RiskLow:
			v.RiskLevel = RiskLow
		case RiskMedium:
			v.RiskLevel = RiskMedium
		}
	}

	if i := strings.Index(low, markerHazards); i >= 0 {
		start := i + len(markerHazards)
		end := len(text)
		if j := strings.Index(low[start:], markerExplanation); j >= 0 {
			end = start + j
		}
		if span := text[start:end]; !strings.Contains(low[start:end], "none") {
			for _, item := range strings.Split(span, ",") {
				if item = strings.Trim(item, " \t\r\n[]*\"'."); item != "" {
					v.Hazards = append(v.Hazards, item)
				}
			}
		}
	}

	if i := strings.Index(low, markerExplanation); i >= 0 {
		if exp := strings.TrimSpace(text[i+len(markerExplanation):]); exp != "" {
			v.Explanation = exp
		}
	}

	if len(v.Hazards) == 0 {
		for _, term := range hazardTerms[diet] {
			if strings.Contains(low, term) {
				v.Hazards = append(v.Hazards, term)
			}
		}
	}
	if len(v.Hazards) == 0 {
		v.Hazards = []string{NoHazardsDetected}
	}
	return v
}

// lowerASCII lowercases ASCII letters only, so byte offsets in the result
// are valid in the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func trimValue(s string) string {
	return strings.TrimLeft(s, " \t\r\n[*\"'")
}

func firstWord(s string) string {
	s = trimValue(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}
