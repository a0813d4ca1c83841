package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Knowledge searches the hazard knowledge base. An empty result is valid.
type Knowledge interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Completer sends a single prompt to the language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	dietInfoPassages = 3
	evidencePassages = 2
	maxParallelDiets = 4
)

// Analyzer checks ingredient lists against dietary restrictions.
type Analyzer struct {
	llm    Completer
	kb     Knowledge
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. kb may be nil, in which case prompts carry
// no hazard background.
func NewAnalyzer(llm Completer, kb Knowledge, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{llm: llm, kb: kb, logger: logger.With("component", "ingredient_analyzer")}
}

// DietInfo returns hazard background for diet from the knowledge base.
func (a *Analyzer) DietInfo(ctx context.Context, diet string) string {
	if a.kb == nil {
		return "Knowledge base not ready"
	}
	query, ok := dietQueries[diet]
	if !ok {
		return "Diet information not found"
	}
	passages, err := a.kb.Search(ctx, query, dietInfoPassages)
	if err != nil {
		a.logger.WarnContext(ctx, "Knowledge search failed", "diet", diet, "error", err)
		return "Knowledge search unavailable"
	}
	if len(passages) == 0 {
		return "No relevant information found"
	}
	return strings.Join(passages, "\n")
}

// AnalyzeWithLLM asks the model whether ingredients suit diet. A model
// failure yields an unsuitable HIGH-risk verdict.
func (a *Analyzer) AnalyzeWithLLM(ctx context.Context, ingredients, diet string) Verdict {
	prompt := fmt.Sprintf(ingredientAnalysisPrompt, ingredients, diet, a.DietInfo(ctx, diet))

	resp, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.ErrorContext(ctx, "Ingredient analysis failed", "diet", diet, "error", err)
		return Verdict{
			Suitable:    false,
			RiskLevel:   RiskHigh,
			Hazards:     []string{AnalysisErrorHazard},
			Explanation: fmt.Sprintf("LLM error: %v", err),
		}
	}
	v := Parse(resp, diet)
	a.logger.DebugContext(ctx, "Ingredient analysis parsed", "diet", diet, "suitable", v.Suitable, "risk_level", v.RiskLevel)
	return v
}

// AnalyzeIngredients runs one analysis per distinct diet, in parallel, and
// returns the verdicts in the order the diets were given.
func (a *Analyzer) AnalyzeIngredients(ctx context.Context, ingredients string, diets []string) []DietVerdict {
	diets = lo.Uniq(diets)
	out := make([]DietVerdict, len(diets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDiets)
	for i, diet := range diets {
		g.Go(func() error {
			out[i] = DietVerdict{Diet: diet, Verdict: a.AnalyzeWithLLM(gctx, ingredients, diet)}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// AnalyzeForBabyAge analyzes ingredients against the restriction for a
// baby of the given age. Ages outside every range get general guidance.
func (a *Analyzer) AnalyzeForBabyAge(ctx context.Context, ingredients string, months int) Verdict {
	diet, ok := BabyDiet(months)
	if !ok {
		return Verdict{
			Suitable:    true,
			RiskLevel:   RiskLow,
			Hazards:     []string{"None"},
			Explanation: "General food safety guidelines apply",
		}
	}
	return a.AnalyzeWithLLM(ctx, ingredients, diet)
}

// Evidence returns knowledge passages about an ingredient's effect on diet.
func (a *Analyzer) Evidence(ctx context.Context, ingredient, diet string) string {
	if a.kb == nil {
		return "Evidence search unavailable"
	}
	passages, err := a.kb.Search(ctx, fmt.Sprintf("%s %s health effects scientific research", ingredient, diet), evidencePassages)
	if err != nil {
		a.logger.WarnContext(ctx, "Evidence search failed", "ingredient", ingredient, "error", err)
		return "Evidence search unavailable"
	}
	if len(passages) == 0 {
		return "No specific scientific evidence found"
	}
	return strings.Join(passages, "\n")
}

// SimilarProducts returns up to k knowledge passages matching query.
func (a *Analyzer) SimilarProducts(ctx context.Context, query string, k int) []string {
	if a.kb == nil {
		return nil
	}
	passages, err := a.kb.Search(ctx, query, k)
	if err != nil {
		a.logger.WarnContext(ctx, "Product search failed", "query", query, "error", err)
		return nil
	}
	return passages
}
