// Package prompt assembles the language model prompt for a chat turn.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/nutriverse/nutribot/internal/community"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/tools"
)

// Placeholders for empty slots.
const (
	NotSpecified = "Not specified"
	NoHistory    = "No previous conversation"
	EmptyList    = "[]"
)

const (
	DefaultHistoryTurns = 5
	maxKnowledgeTerms   = 4
	passagesPerTerm     = 2
	maxKnowledgeBytes   = 1200
	symptomPeers        = 3
)

// Intent selects the prompt template.
type Intent string

const (
	IntentProductAnalysis Intent = "product_analysis"
	IntentSymptomAnalysis Intent = "symptom_analysis"
	IntentHealthAdvice    Intent = "health_advice"
)

var (
	productKeywords = []string{"product", "brand", "ingredient", "material"}
	symptomKeywords = []string{"sick", "disease", "treatment", "medicine", "symptom", "pain", "hurt", "feel"}
	healthKeywords  = []string{
		"diabetes", "sugar", "heart", "blood pressure", "allergy", "diet",
		"nutrition", "vitamin", "mineral", "protein", "fat", "carbohydrate",
		"baby", "child", "pregnant", "elderly", "sport", "exercise",
		"medicine", "treatment", "symptom", "diagnosis", "cholesterol", "obesity",
		"celiac", "gluten", "lactose", "vegan", "vegetarian", "bloating", "pain",
	}
)

// DetectIntent classifies a message. Product keywords take precedence over
// symptom keywords.
func DetectIntent(message string) Intent {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, productKeywords):
		return IntentProductAnalysis
	case containsAny(msg, symptomKeywords):
		return IntentSymptomAnalysis
	default:
		return IntentHealthAdvice
	}
}

// HealthKeywords returns the health terms named in message, in table order,
// or "general health" when there are none.
func HealthKeywords(message string) []string {
	msg := strings.ToLower(message)
	var out []string
	for _, kw := range healthKeywords {
		if strings.Contains(msg, kw) {
			out = append(out, kw)
		}
	}
	if len(out) == 0 {
		return []string{"general health"}
	}
	return out
}

// Profiles is the read side of the profile store.
type Profiles interface {
	Get(userID string) (profile.Profile, bool)
	History(userID string, n int) []profile.Turn
}

// Knowledge searches reference passages.
type Knowledge interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// InsightSource summarizes a segment.
type InsightSource interface {
	Summarize(segment, problemType string) (community.Insight, error)
}

// PeerRanker ranks a user's peers.
type PeerRanker interface {
	Rank(userID string, maxResults int) []community.Peer
}

// Assembler builds prompts. Knowledge, insights and peers are optional.
type Assembler struct {
	profiles     Profiles
	kb           Knowledge
	insights     InsightSource
	peers        PeerRanker
	historyTurns int
	logger       *slog.Logger
}

// Config wires an Assembler.
type Config struct {
	Profiles     Profiles
	Knowledge    Knowledge
	Insights     InsightSource
	Peers        PeerRanker
	HistoryTurns int
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	return &Assembler{
		profiles:     cfg.Profiles,
		kb:           cfg.Knowledge,
		insights:     cfg.Insights,
		peers:        cfg.Peers,
		historyTurns: cfg.HistoryTurns,
		logger:       logger.With("component", "prompt_assembler"),
	}
}

type slots struct {
	Question     string
	ProductInfo  string
	Profile      string
	Segment      string
	History      string
	Tools        string
	Knowledge    string
	Community    string
	SimilarUsers string
}

// Build renders the prompt for message. Missing context never fails the
// build; every empty slot gets a placeholder.
func (a *Assembler) Build(ctx context.Context, userID, message string, results map[tools.Kind]tools.Result) (string, error) {
	p, ok := a.profiles.Get(userID)
	if !ok {
		p = profile.Profile{UserID: userID}
	}
	intent := DetectIntent(message)

	s := slots{
		Question:    orPlaceholder(message),
		ProductInfo: orPlaceholder(message),
		Profile:     RenderProfile(p),
		Segment:     orPlaceholder(p.Segment),
		History:     RenderHistory(a.profiles.History(userID, a.historyTurns)),
		Tools:       renderTools(results),
		Community:   a.community(p.Segment, message),
	}

	var tmpl *template.Template
	switch intent {
	case IntentProductAnalysis:
		tmpl = productAnalysisTmpl
		s.Knowledge = a.knowledge(ctx, message, p)
	case IntentSymptomAnalysis:
		tmpl = symptomAnalysisTmpl
		s.SimilarUsers = a.similarUsers(userID)
	default:
		tmpl = healthAdviceTmpl
		s.Knowledge = a.knowledge(ctx, message, p)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, s); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", intent, err)
	}
	a.logger.DebugContext(ctx, "Prompt assembled", "intent", intent, "length", b.Len(), "tools", len(results))
	return b.String(), nil
}

// Summary renders the conversation summary prompt.
func (a *Assembler) Summary(p profile.Profile, history []profile.Turn) (string, error) {
	var b strings.Builder
	err := summaryTmpl.Execute(&b, map[string]string{
		"Segment":    orPlaceholder(p.Segment),
		"Conditions": renderList(p.MedicalConditions),
		"History":    RenderHistory(history),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render summary prompt: %w", err)
	}
	return b.String(), nil
}

func (a *Assembler) knowledge(ctx context.Context, message string, p profile.Profile) string {
	if a.kb == nil {
		return NotSpecified
	}
	terms := HealthKeywords(message)
	terms = append(terms, p.MedicalConditions...)
	terms = append(terms, p.Allergies...)
	terms = lo.Uniq(terms[:min(len(terms), maxKnowledgeTerms)])

	var b strings.Builder
	for _, term := range terms {
		passages, err := a.kb.Search(ctx, term, passagesPerTerm)
		if err != nil {
			a.logger.WarnContext(ctx, "Knowledge search failed", "term", term, "error", err)
			continue
		}
		for _, passage := range passages {
			fmt.Fprintf(&b, "\n%s KNOWLEDGE: %s\n", strings.ToUpper(term), passage)
		}
	}
	return orPlaceholder(truncate(b.String(), maxKnowledgeBytes))
}

func (a *Assembler) community(segmentName, message string) string {
	if a.insights == nil || segmentName == "" {
		return NotSpecified
	}
	in, err := a.insights.Summarize(segmentName, tools.ProblemType(message))
	if errors.Is(err, community.ErrNoSegmentData) {
		return community.NoDataMessage(segmentName)
	}
	if err != nil {
		return NotSpecified
	}
	return in.String()
}

func (a *Assembler) similarUsers(userID string) string {
	if a.peers == nil {
		return EmptyList
	}
	peers := a.peers.Rank(userID, symptomPeers)
	if len(peers) == 0 {
		return EmptyList
	}
	lines := make([]string, 0, len(peers))
	for _, p := range peers {
		lines = append(lines, fmt.Sprintf("- peer %s: similarity %.2f, shared conditions %s, what worked %s",
			p.PeerID[:min(len(p.PeerID), 8)], p.Score, renderList(p.SharedConditions), renderList(p.Recommendations)))
	}
	return "\n" + strings.Join(lines, "\n")
}

// RenderProfile renders the fields of p the model needs.
func RenderProfile(p profile.Profile) string {
	age := NotSpecified
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	baby := NotSpecified
	if p.BabyAgeMonths != nil {
		baby = fmt.Sprintf("%d months", *p.BabyAgeMonths)
	}
	children := "no"
	if p.HasChildren {
		children = "yes"
	}
	return fmt.Sprintf("age: %s; age group: %s; medical conditions: %s; allergies: %s; diet preferences: %s; has children: %s; baby age: %s",
		age, orPlaceholder(p.AgeGroup), renderList(p.MedicalConditions), renderList(p.Allergies),
		renderList(p.DietPreferences), children, baby)
}

// RenderHistory renders turns as "role: text" lines, oldest first.
func RenderHistory(turns []profile.Turn) string {
	if len(turns) == 0 {
		return NoHistory
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Text))
	}
	return strings.Join(lines, "\n")
}

func renderTools(results map[tools.Kind]tools.Result) string {
	if len(results) == 0 {
		return EmptyList
	}
	kinds := make([]tools.Kind, 0, len(results))
	for k := range results {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	lines := make([]string, 0, len(kinds))
	for _, k := range kinds {
		lines = append(lines, fmt.Sprintf("%s: %s", k, results[k]))
	}
	return strings.Join(lines, "\n")
}

func renderList(items []string) string {
	if len(items) == 0 {
		return EmptyList
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
