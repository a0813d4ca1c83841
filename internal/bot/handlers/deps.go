package handlers

import (
	"context"
	"log/slog"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/assistant"
	"github.com/nutriverse/nutribot/internal/community"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/database"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/sanitize"
)

// ProductAnalyzer analyzes a product photo.
type ProductAnalyzer interface {
	Analyze(ctx context.Context, userID string, image []byte, mimeType string, diets []string) (analysis.ProductReport, error)
}

// InsightSource summarizes a segment.
type InsightSource interface {
	Summarize(segment, problemType string) (community.Insight, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Assistant *assistant.Assistant
	Profiles  *profile.Store
	Products  ProductAnalyzer
	Insights  InsightSource
	Knowledge database.Store
	// Plain flattens model Markdown before sending. Nil sends replies as is.
	Plain *sanitize.Policy
}

// modelText prepares model output for a Telegram message.
func (d HandlerDeps) modelText(text string) string {
	if d.Plain == nil {
		return text
	}
	return d.Plain.Text(text)
}
