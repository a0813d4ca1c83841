package tools_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/community"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/tools"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    []tools.Kind
		symptom bool
	}{
		{name: "plain greeting", message: "Hello there", want: []tools.Kind{tools.KindUserProfile}},
		{
			name:    "baby maps to two tools",
			message: "Is this OK for my BABY?",
			want:    []tools.Kind{tools.KindBabySafety, tools.KindAgeAdvice, tools.KindUserProfile},
		},
		{
			name:    "symptom adds peers once",
			message: "I have bloating, did someone else have the same?",
			want:    []tools.Kind{tools.KindSimilarUsers, tools.KindUserProfile},
			symptom: true,
		},
		{
			name:    "many rules",
			message: "Is this picture of a product that contains peanuts safe?",
			want:    []tools.Kind{tools.KindNutritionRisk, tools.KindAnalyzeIngr, tools.KindImageIngredients, tools.KindUserProfile},
		},
		{
			name:    "feel bad phrase",
			message: "I feel bad after lunch",
			want:    []tools.Kind{tools.KindSimilarUsers, tools.KindUserProfile},
			symptom: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tools.Detect(tc.message)
			want := append([]tools.Kind(nil), tc.want...)
			sortKinds(want)
			if diff := cmp.Diff(want, got.Tools); diff != "" {
				t.Errorf("Detect() tools mismatch (-want +got):\n%s", diff)
			}
			if got.SymptomReported != tc.symptom {
				t.Errorf("SymptomReported = %v, want %v", got.SymptomReported, tc.symptom)
			}
		})
	}
}

func sortKinds(k []tools.Kind) {
	for i := 1; i < len(k); i++ {
		for j := i; j > 0 && k[j] < k[j-1]; j-- {
			k[j], k[j-1] = k[j-1], k[j]
		}
	}
}

func TestExtractIngredients(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    string
	}{
		{"Is this fine? Ingredients: wheat flour, sugar, salt", "wheat flour, sugar, salt"},
		{"It CONTAINS milk and soy", "milk and soy"},
		{"what do you think about yogurt", ""},
		{"ingredients:", ""},
		{"Made with " + strings.Repeat("a", 250), strings.Repeat("a", 199)},
	}
	for _, tc := range tests {
		if got := tools.ExtractIngredients(tc.message); got != tc.want {
			t.Errorf("ExtractIngredients(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestBabyAgeMonths(t *testing.T) {
	t.Parallel()

	nine := 9
	withBaby := profile.Profile{BabyAgeMonths: &nine}
	tests := []struct {
		message string
		p       profile.Profile
		want    int
	}{
		{"my baby is 4 months old", profile.Profile{}, 4},
		{"she is 10mo", withBaby, 10},
		{"is this ok for my baby", withBaby, 9},
		{"is this ok for my baby", profile.Profile{}, 6},
	}
	for _, tc := range tests {
		if got := tools.BabyAgeMonths(tc.message, tc.p); got != tc.want {
			t.Errorf("BabyAgeMonths(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}

func TestProblemType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"my child has bloating": tools.ProblemChildHealth,
		"stomach ache":          tools.ProblemDigestive,
		"too much SUGAR":        tools.ProblemDiabetes,
		"high blood pressure":   tools.ProblemHeart,
		"what about vitamins":   tools.ProblemGeneral,
	}
	for msg, want := range tests {
		if got := tools.ProblemType(msg); got != want {
			t.Errorf("ProblemType(%q) = %q, want %q", msg, got, want)
		}
	}
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeIngredients(_ context.Context, _ string, diets []string) []analysis.DietVerdict {
	var out []analysis.DietVerdict
	for _, d := range diets {
		out = append(out, analysis.DietVerdict{Diet: d, Verdict: analysis.Verdict{Suitable: d != "celiac"}})
	}
	return out
}

func (fakeAnalyzer) AnalyzeForBabyAge(_ context.Context, _ string, months int) analysis.Verdict {
	return analysis.Verdict{Suitable: months > 6, RiskLevel: analysis.RiskLow}
}

type fakePeers struct{ peers []community.Peer }

func (f fakePeers) Rank(string, int) []community.Peer { return f.peers }

type fakeInsights struct{ err error }

func (f fakeInsights) Summarize(segment, problem string) (community.Insight, error) {
	if f.err != nil {
		return community.Insight{}, f.err
	}
	return community.Insight{Segment: segment, ProblemType: problem, Members: 2}, nil
}

func newRequest(msg string) tools.Request {
	return tools.Request{
		UserID:  "u1",
		Message: msg,
		Profile: profile.Profile{
			UserID:            "u1",
			Segment:           "allergy_management",
			AgeGroup:          profile.AgeGroupAdult,
			MedicalConditions: []string{"celiac"},
			Allergies:         []string{"nut_allergy"},
		},
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	deps := tools.Deps{Analyzer: fakeAnalyzer{}, Peers: fakePeers{}, Insights: fakeInsights{}}
	e := tools.NewExecutor(deps, nil,
		tools.WithHandler(tools.KindSimilarUsers, func(context.Context, tools.Request) (any, error) {
			return nil, errors.New("peer index offline")
		}),
		tools.WithHandler(tools.KindCommunity, func(context.Context, tools.Request) (any, error) {
			panic("boom")
		}),
	)

	kinds := []tools.Kind{
		tools.KindUserProfile, tools.KindSimilarUsers, tools.KindCommunity,
		tools.KindAnalyzeIngr, tools.Kind("teleport"), tools.KindUserProfile,
	}
	got := e.Run(context.Background(), newRequest("ingredients: wheat, peanuts"), kinds)

	if len(got) != 5 {
		t.Fatalf("Run() returned %d results, want 5: %+v", len(got), got)
	}
	wantStatus := map[tools.Kind]tools.Status{
		tools.KindUserProfile:   tools.StatusOK,
		tools.KindSimilarUsers:  tools.StatusError,
		tools.KindCommunity:     tools.StatusError,
		tools.KindAnalyzeIngr:   tools.StatusOK,
		tools.Kind("teleport"): tools.StatusNotFound,
	}
	for kind, status := range wantStatus {
		if got[kind].Status != status {
			t.Errorf("%s status = %q, want %q (%+v)", kind, got[kind].Status, status, got[kind])
		}
	}
	if got[tools.KindSimilarUsers].Error != "peer index offline" {
		t.Errorf("error = %q", got[tools.KindSimilarUsers].Error)
	}
	if !strings.Contains(got[tools.KindCommunity].Error, "boom") {
		t.Errorf("panic error = %q", got[tools.KindCommunity].Error)
	}
	if got[tools.Kind("teleport")].Error != "tool not found" {
		t.Errorf("unknown tool error = %q", got[tools.Kind("teleport")].Error)
	}

	report, ok := got[tools.KindAnalyzeIngr].Payload.(tools.IngredientReport)
	if !ok {
		t.Fatalf("payload type = %T", got[tools.KindAnalyzeIngr].Payload)
	}
	if report.RiskScore != 50 || report.Ingredients != "wheat, peanuts" || len(report.Results) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunInsufficientInput(t *testing.T) {
	t.Parallel()

	e := tools.NewExecutor(tools.Deps{Analyzer: fakeAnalyzer{}}, nil)
	kinds := []tools.Kind{tools.KindAnalyzeIngr, tools.KindImageIngredients, tools.KindBabySafety, tools.KindNutritionRisk}
	got := e.Run(context.Background(), newRequest("is this safe for my baby?"), kinds)

	for _, k := range kinds {
		if got[k].Status != tools.StatusInsufficientInput {
			t.Errorf("%s status = %q, want insufficient_input", k, got[k].Status)
		}
	}
	if got[tools.KindBabySafety].Error != "profile has no children" {
		t.Errorf("baby safety reason = %q", got[tools.KindBabySafety].Error)
	}
}

func TestRunHandlers(t *testing.T) {
	t.Parallel()

	peers := []community.Peer{
		{PeerID: "p1", Recommendations: []string{"oats", "rice"}},
		{PeerID: "p2", Recommendations: []string{"rice"}},
		{PeerID: "p3"},
		{PeerID: "p4", Recommendations: []string{"quinoa"}},
	}
	deps := tools.Deps{Analyzer: fakeAnalyzer{}, Peers: fakePeers{peers: peers}, Insights: fakeInsights{err: community.ErrNoSegmentData}}
	e := tools.NewExecutor(deps, nil, tools.WithConcurrency(1), tools.WithTimeout(time.Second))

	req := newRequest("my 8 months baby food, ingredients: honey")
	req.Profile.HasChildren = true
	got := e.Run(context.Background(), req, []tools.Kind{tools.KindSimilarUsers, tools.KindCommunity, tools.KindBabySafety, tools.KindAgeAdvice})

	sim := got[tools.KindSimilarUsers].Payload.(tools.SimilarUsers)
	if sim.Count != 4 || len(sim.Users) != 3 {
		t.Errorf("similar users = %+v", sim)
	}
	if diff := cmp.Diff([]string{"rice", "oats", "quinoa"}, sim.CommonSolutions); diff != "" {
		t.Errorf("common solutions mismatch (-want +got):\n%s", diff)
	}

	if msg := got[tools.KindCommunity].String(); msg != "No community data available for allergy_management segment" {
		t.Errorf("community result = %q", msg)
	}

	baby := got[tools.KindBabySafety].Payload.(tools.BabySafety)
	if baby.AgeMonths != 8 || !baby.Verdict.Suitable {
		t.Errorf("baby safety = %+v", baby)
	}

	advice := got[tools.KindAgeAdvice].Payload.(tools.AgeAdvicePayload)
	if advice.Bracket != "general" || advice.ProductType != "baby food" {
		t.Errorf("age advice = %+v", advice)
	}
}

type fakeProducts struct {
	mu    sync.Mutex
	diets [][]string
}

func (f *fakeProducts) Analyze(_ context.Context, _ string, _ []byte, _ string, diets []string) (analysis.ProductReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diets = append(f.diets, diets)
	return analysis.ProductReport{Brand: "Nutella", Safety: analysis.SafetySafe, RiskScore: 100}, nil
}

func TestImageIngredientsDiets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prefs      []string
		defaults   []string
		wantStatus tools.Status
		wantDiets  []string
	}{
		{
			name:       "profile preferences",
			prefs:      []string{"celiac"},
			defaults:   []string{"vegan"},
			wantStatus: tools.StatusOK,
			wantDiets:  []string{"celiac"},
		},
		{
			name:       "defaults for an empty profile",
			defaults:   []string{"vegan", "lactose"},
			wantStatus: tools.StatusOK,
			wantDiets:  []string{"vegan", "lactose"},
		},
		{
			name:       "nothing to check against",
			wantStatus: tools.StatusInsufficientInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			products := &fakeProducts{}
			e := tools.NewExecutor(tools.Deps{Products: products, DefaultDiets: tc.defaults}, nil)

			req := tools.Request{
				UserID:   "u1",
				Image:    []byte{0xFF, 0xD8, 0xFF, 0xE0},
				MIMEType: "image/jpeg",
				Profile:  profile.Profile{UserID: "u1", MedicalConditions: tc.prefs},
			}
			got := e.Run(context.Background(), req, []tools.Kind{tools.KindImageIngredients})[tools.KindImageIngredients]
			if got.Status != tc.wantStatus {
				t.Fatalf("status = %q, want %q (%+v)", got.Status, tc.wantStatus, got)
			}

			var gotDiets []string
			if len(products.diets) > 0 {
				gotDiets = products.diets[0]
			}
			if diff := cmp.Diff(tc.wantDiets, gotDiets); diff != "" {
				t.Errorf("diets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
