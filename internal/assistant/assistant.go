// Package assistant runs chat turns: it keeps the user's profile current,
// runs the tools a message needs, asks the model for a reply, and records
// the exchange.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/nutriverse/nutribot/internal/gemini"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/tools"
)

// Canned replies.
const (
	Apology       = "Sorry, I encountered a technical issue. Please try again later."
	NoHistory     = "No conversation history yet."
	SummaryFailed = "Summary could not be generated."
	ImageTurnText = "[product photo]"
)

// RecommendationConsultedPeers is recorded when a reply drew on similar users.
const RecommendationConsultedPeers = "consulted_similar_users"

const (
	defaultInferenceTimeout = 60 * time.Second
	defaultSummaryTurns     = 50
)

// Inference generates text from a conversation.
type Inference interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// ToolRunner runs the tools of a turn.
type ToolRunner interface {
	Run(ctx context.Context, req tools.Request, kinds []tools.Kind) map[tools.Kind]tools.Result
}

// PromptBuilder renders chat and summary prompts.
type PromptBuilder interface {
	Build(ctx context.Context, userID, message string, results map[tools.Kind]tools.Result) (string, error)
	Summary(p profile.Profile, history []profile.Turn) (string, error)
}

// Image is a photo attached to a message.
type Image struct {
	Data     []byte
	MIMEType string
}

// Deps holds the collaborators of an Assistant.
type Deps struct {
	Profiles *profile.Store
	Tools    ToolRunner
	Prompts  PromptBuilder
	LLM      Inference
}

// Config tunes an Assistant. Zero values select defaults.
type Config struct {
	InferenceTimeout time.Duration
	SummaryTurns     int
}

// Assistant orchestrates chat turns.
type Assistant struct {
	profiles         *profile.Store
	tools            ToolRunner
	prompts          PromptBuilder
	llm              Inference
	inferenceTimeout time.Duration
	summaryTurns     int
	logger           *slog.Logger
}

// New creates an Assistant.
func New(deps Deps, cfg Config, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.InferenceTimeout <= 0 {
		cfg.InferenceTimeout = defaultInferenceTimeout
	}
	if cfg.SummaryTurns <= 0 {
		cfg.SummaryTurns = defaultSummaryTurns
	}
	return &Assistant{
		profiles:         deps.Profiles,
		tools:            deps.Tools,
		prompts:          deps.Prompts,
		llm:              deps.LLM,
		inferenceTimeout: cfg.InferenceTimeout,
		summaryTurns:     cfg.SummaryTurns,
		logger:           logger.With("component", "assistant"),
	}
}

// Chat answers one message. Turns of the same user run one at a time. A
// failed model call is answered with Apology and still recorded; a
// cancelled ctx records nothing and returns ctx.Err().
func (a *Assistant) Chat(ctx context.Context, userID, message string, image Image) (string, error) {
	if userID == "" {
		return "", profile.ErrEmptyUserID
	}
	unlock := a.profiles.Lock(userID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	facts := ExtractFacts(message)
	p, err := a.profiles.Update(userID, facts.Apply)
	if err != nil {
		return "", err
	}
	if !facts.Empty() {
		a.logger.DebugContext(ctx, "Profile facts extracted", "user_id", userID, "segment", p.Segment)
	}

	detection := tools.Detect(message)
	kinds := detection.Tools
	hasImage := len(image.Data) > 0
	if hasImage && !slices.Contains(kinds, tools.KindImageIngredients) {
		kinds = append(kinds, tools.KindImageIngredients)
	}
	if detection.SymptomReported {
		if p, err = a.profiles.RecordInteraction(userID, profile.InteractionSymptomReport, "negative"); err != nil {
			return "", err
		}
	}

	req := tools.Request{
		UserID:   userID,
		Message:  message,
		Image:    image.Data,
		MIMEType: image.MIMEType,
		Profile:  p,
	}
	results := a.tools.Run(ctx, req, kinds)
	if hasImage && !results[tools.KindImageIngredients].OK() {
		if _, ok := results[tools.KindCommunity]; !ok {
			maps.Copy(results, a.tools.Run(ctx, req, []tools.Kind{tools.KindCommunity}))
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reply, answered, err := a.reply(ctx, userID, message, results)
	if err != nil {
		return "", err
	}

	userText := message
	if userText == "" && hasImage {
		userText = ImageTurnText
	}
	var recommendations []string
	if answered && consultedPeers(results) {
		recommendations = append(recommendations, RecommendationConsultedPeers)
	}
	if err := a.profiles.CommitTurn(userID, userText, reply, recommendations...); err != nil {
		return "", err
	}
	a.logger.InfoContext(ctx, "Chat turn completed", "user_id", userID, "tools", len(results), "reply_length", len(reply))
	return reply, nil
}

// reply returns the model's answer, or Apology with answered false when it
// fails. The only error is the caller's cancellation.
func (a *Assistant) reply(ctx context.Context, userID, message string, results map[tools.Kind]tools.Result) (text string, answered bool, err error) {
	prompt, err := a.prompts.Build(ctx, userID, message, results)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to assemble prompt", "user_id", userID, "error", err)
		return Apology, false, nil
	}

	text, err = a.generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		a.logger.ErrorContext(ctx, "Inference failed", "user_id", userID, "error", err)
		return Apology, false, nil
	}
	return text, true, nil
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.inferenceTimeout)
	defer cancel()

	text, err := a.llm.Generate(ctx, gemini.Request{
		Messages: []gemini.Message{{Role: gemini.RoleUser, Text: prompt}},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("inference timed out after %s: %w", a.inferenceTimeout, err)
		}
		return "", err
	}
	if text == "" {
		return "", errors.New("inference returned an empty reply")
	}
	return text, nil
}

func consultedPeers(results map[tools.Kind]tools.Result) bool {
	r, ok := results[tools.KindSimilarUsers]
	if !ok || !r.OK() {
		return false
	}
	su, ok := r.Payload.(tools.SimilarUsers)
	return ok && su.Count > 0
}

// Summary summarizes the user's recent conversation. Model failures yield
// SummaryFailed rather than an error.
func (a *Assistant) Summary(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", profile.ErrEmptyUserID
	}
	history := a.profiles.History(userID, a.summaryTurns)
	if len(history) == 0 {
		return NoHistory, nil
	}
	p, _ := a.profiles.Get(userID)

	prompt, err := a.prompts.Summary(p, history)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to assemble summary prompt", "user_id", userID, "error", err)
		return SummaryFailed, nil
	}
	text, err := a.generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		a.logger.ErrorContext(ctx, "Summary inference failed", "user_id", userID, "error", err)
		return SummaryFailed, nil
	}
	return text, nil
}

// Reset forgets the user's conversation and keeps the profile.
func (a *Assistant) Reset(userID string) {
	unlock := a.profiles.Lock(userID)
	defer unlock()
	a.profiles.ClearHistory(userID)
	a.logger.Info("Conversation reset", "user_id", userID)
}

// Profile returns the user's profile, creating it on first use, and the
// detail worth asking about next.
func (a *Assistant) Profile(userID string) (profile.Profile, Question, error) {
	if err := a.profiles.Ensure(userID); err != nil {
		return profile.Profile{}, QuestionNone, err
	}
	p, _ := a.profiles.Get(userID)
	return p, NextQuestion(p), nil
}
