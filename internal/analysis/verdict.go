// Package analysis turns model output into risk verdicts and runs
// ingredient and product analyses against dietary restrictions.
package analysis

import "strings"

// RiskLevel is the severity reported for one restriction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Sentinel values used when the model output lacks a field.
const (
	NoHazardsDetected   = "No hazardous ingredients detected"
	AnalysisIncomplete  = "Analysis incomplete"
	AnalysisErrorHazard = "Analysis error"
)

// Verdict is the outcome of analyzing ingredients against one restriction.
// Hazards and Explanation are never empty.
type Verdict struct {
	Suitable    bool      `json:"suitable"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Hazards     []string  `json:"hazardous_ingredients"`
	Explanation string    `json:"explanation"`
}

// String renders the verdict on one line.
func (v Verdict) String() string {
	suitable := "no"
	if v.Suitable {
		suitable = "yes"
	}
	return "suitable=" + suitable + " risk=" + string(v.RiskLevel) +
		" hazards=[" + strings.Join(v.Hazards, ", ") + "] explanation=" + v.Explanation
}

// DietVerdict pairs a restriction key with its verdict.
type DietVerdict struct {
	Diet    string  `json:"diet"`
	Verdict Verdict `json:"verdict"`
}

// RiskScore is the share of suitable verdicts as a percentage. An empty set
// scores 0.
func RiskScore(results []DietVerdict) float64 {
	if len(results) == 0 {
		return 0
	}
	suitable := 0
	for _, r := range results {
		if r.Verdict.Suitable {
			suitable++
		}
	}
	return float64(suitable) / float64(len(results)) * 100
}

// Safety labels for a product's overall risk score.
const (
	SafetySafe     = "SAFE"
	SafetyModerate = "MODERATE"
	SafetyRisky    = "RISKY"
)

// SafetyLabel maps a risk score to a safety label.
func SafetyLabel(score float64) string {
	switch {
	case score > 80:
		return SafetySafe
	case score > 50:
		return SafetyModerate
	default:
		return SafetyRisky
	}
}
