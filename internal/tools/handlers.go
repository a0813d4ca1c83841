package tools

import (
	"context"
	"errors"
	"slices"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/community"
)

const (
	defaultMaxPeers   = 5
	maxPeersShown     = 3
	maxCommonSolution = 3
)

// PeerRanker ranks a user's peers.
type PeerRanker interface {
	Rank(userID string, maxResults int) []community.Peer
}

// InsightSource summarizes a segment.
type InsightSource interface {
	Summarize(segment, problemType string) (community.Insight, error)
}

// IngredientAnalyzer checks ingredients against restrictions.
type IngredientAnalyzer interface {
	AnalyzeIngredients(ctx context.Context, ingredients string, diets []string) []analysis.DietVerdict
	AnalyzeForBabyAge(ctx context.Context, ingredients string, months int) analysis.Verdict
}

// ProductAnalyzer analyzes a product photo.
type ProductAnalyzer interface {
	Analyze(ctx context.Context, userID string, image []byte, mimeType string, diets []string) (analysis.ProductReport, error)
}

// Deps holds the collaborators tool handlers call. A nil collaborator
// makes its tools report an error.
type Deps struct {
	Peers    PeerRanker
	Insights InsightSource
	Analyzer IngredientAnalyzer
	Products ProductAnalyzer
	// MaxPeers caps how many peers the similar-users tool ranks.
	MaxPeers int
	// DefaultDiets are checked on product photos when the profile has no
	// conditions or allergies.
	DefaultDiets []string
}

var errUnavailable = errors.New("tool backend not configured")

func (d Deps) handlers() map[Kind]Handler {
	return map[Kind]Handler{
		KindUserProfile:      userProfileHandler,
		KindSimilarUsers:     d.similarUsers,
		KindAnalyzeIngr:      d.analyzeIngredients,
		KindNutritionRisk:    d.analyzeIngredients,
		KindImageIngredients: d.imageIngredients,
		KindCommunity:        d.communityInsights,
		KindAgeAdvice:        ageAdviceHandler,
		KindBabySafety:       d.babySafety,
	}
}

// ProfileView is the anonymized profile handed to the model.
type ProfileView struct {
	Segment           string   `json:"segment"`
	AgeGroup          string   `json:"age_group"`
	Age               *int     `json:"age,omitempty"`
	MedicalConditions []string `json:"medical_conditions"`
	Allergies         []string `json:"allergies"`
	DietPreferences   []string `json:"diet_preferences"`
	HasChildren       bool     `json:"has_children"`
	BabyAgeMonths     *int     `json:"baby_age_months,omitempty"`
	Interactions      int      `json:"chat_interactions"`
}

func userProfileHandler(_ context.Context, req Request) (any, error) {
	p := req.Profile
	return ProfileView{
		Segment:           p.Segment,
		AgeGroup:          p.AgeGroup,
		Age:               p.Age,
		MedicalConditions: p.MedicalConditions,
		Allergies:         p.Allergies,
		DietPreferences:   p.DietPreferences,
		HasChildren:       p.HasChildren,
		BabyAgeMonths:     p.BabyAgeMonths,
		Interactions:      p.Interactions,
	}, nil
}

// SimilarUsers is the payload of the peer tool.
type SimilarUsers struct {
	Count           int              `json:"similar_users_count"`
	Users           []community.Peer `json:"users"`
	CommonSolutions []string         `json:"common_solutions"`
}

func (d Deps) similarUsers(_ context.Context, req Request) (any, error) {
	if d.Peers == nil {
		return nil, errUnavailable
	}
	limit := d.MaxPeers
	if limit <= 0 {
		limit = defaultMaxPeers
	}
	peers := d.Peers.Rank(req.UserID, limit)
	return SimilarUsers{
		Count:           len(peers),
		Users:           peers[:min(len(peers), maxPeersShown)],
		CommonSolutions: commonSolutions(peers),
	}, nil
}

// commonSolutions returns the most frequent peer recommendations, ties in
// first-seen order.
func commonSolutions(peers []community.Peer) []string {
	counts := map[string]int{}
	var order []string
	for _, p := range peers {
		for _, r := range p.Recommendations {
			if r == "" {
				continue
			}
			if counts[r] == 0 {
				order = append(order, r)
			}
			counts[r]++
		}
	}
	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })
	if len(order) > maxCommonSolution {
		order = order[:maxCommonSolution]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// IngredientReport is the payload of the ingredient and risk tools.
type IngredientReport struct {
	Ingredients string                 `json:"ingredients"`
	Results     []analysis.DietVerdict `json:"results,omitempty"`
	RiskScore   float64                `json:"risk_score"`
	Safety      string                 `json:"overall_safety,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

func (d Deps) analyzeIngredients(ctx context.Context, req Request) (any, error) {
	ingredients := ExtractIngredients(req.Message)
	if ingredients == "" {
		return nil, insufficient("no ingredient list found in the message")
	}
	prefs := req.Profile.Preferences()
	if len(prefs) == 0 {
		return IngredientReport{Ingredients: ingredients, Message: "No specific analysis available"}, nil
	}
	if d.Analyzer == nil {
		return nil, errUnavailable
	}
	results := d.Analyzer.AnalyzeIngredients(ctx, ingredients, prefs)
	score := analysis.RiskScore(results)
	return IngredientReport{
		Ingredients: ingredients,
		Results:     results,
		RiskScore:   score,
		Safety:      analysis.SafetyLabel(score),
	}, nil
}

func (d Deps) imageIngredients(ctx context.Context, req Request) (any, error) {
	if len(req.Image) == 0 {
		return nil, insufficient("image analysis requires an uploaded image")
	}
	if d.Products == nil {
		return nil, errUnavailable
	}
	diets := req.Profile.Preferences()
	if len(diets) == 0 {
		diets = d.DefaultDiets
	}
	if len(diets) == 0 {
		return nil, insufficient("no dietary restrictions to check the product against")
	}
	return d.Products.Analyze(ctx, req.UserID, req.Image, req.MIMEType, diets)
}

func (d Deps) communityInsights(_ context.Context, req Request) (any, error) {
	if d.Insights == nil {
		return nil, errUnavailable
	}
	in, err := d.Insights.Summarize(req.Profile.Segment, ProblemType(req.Message))
	if errors.Is(err, community.ErrNoSegmentData) {
		return community.NoDataMessage(req.Profile.Segment), nil
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// AgeAdvicePayload is the payload of the age advice tool.
type AgeAdvicePayload struct {
	Bracket     string `json:"bracket"`
	ProductType string `json:"product_type"`
	Advice      string `json:"advice"`
}

func ageAdviceHandler(_ context.Context, req Request) (any, error) {
	key := AgeAdviceKey(req.Profile)
	return AgeAdvicePayload{
		Bracket:     key,
		ProductType: ProductType(req.Message),
		Advice:      AgeAdvice(key),
	}, nil
}

// BabySafety is the payload of the baby safety tool.
type BabySafety struct {
	AgeMonths int              `json:"baby_age_months"`
	Verdict   analysis.Verdict `json:"verdict"`
}

func (d Deps) babySafety(ctx context.Context, req Request) (any, error) {
	if !req.Profile.HasChildren {
		return nil, insufficient("profile has no children")
	}
	ingredients := ExtractIngredients(req.Message)
	if ingredients == "" {
		return nil, insufficient("no ingredient list found in the message")
	}
	if d.Analyzer == nil {
		return nil, errUnavailable
	}
	months := BabyAgeMonths(req.Message, req.Profile)
	return BabySafety{AgeMonths: months, Verdict: d.Analyzer.AnalyzeForBabyAge(ctx, ingredients, months)}, nil
}
