package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/catalog"
)

const analyzeTimeout = 2 * time.Minute

// NewAnalyzeHandler returns a handler for the /analyze command.
func NewAnalyzeHandler(deps HandlerDeps) bot.HandlerFunc {
	return analyzeHandler{deps}.Handle
}

type analyzeHandler struct {
	deps HandlerDeps
}

// Handle analyzes the product photo attached to the command, or the photo
// the command replies to, against the sender's restrictions.
func (h analyzeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "analyze")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Analyze handler called with nil Message or From", "update_id", update.ID)
		return
	}
	msg := update.Message
	msgs := h.deps.Config.Messages

	data, mimeType, found, err := downloadMessagePhoto(ctx, b, h.deps, msg)
	if !found {
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.AnalyzeNeedsPhoto)
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "Photo download failed", "error", err, "chat_id", msg.Chat.ID)
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.GeneralError)
		return
	}

	userID := userKey(msg.From)
	p, _, err := h.deps.Assistant.Profile(userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profile", "error", err)
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.GeneralError)
		return
	}
	diets := p.Preferences()
	if len(diets) == 0 {
		diets = h.deps.Config.Assistant.DefaultDiets
	}

	sendText(ctx, b, log, msg.Chat.ID, msgs.AnalyzeProgress)
	sendTyping(ctx, b, msg.Chat.ID)

	analyzeCtx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()
	report, err := h.deps.Products.Analyze(analyzeCtx, userID, data, mimeType, diets)
	if err != nil {
		log.WarnContext(ctx, "Product analysis failed", "error", err, "user_id", userID)
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, analyzeErrorText(err, msgs.AnalyzeFailed, msgs.AnalyzeNeedsPhoto, msgs.GeneralError))
		return
	}

	log.InfoContext(ctx, "Product analyzed", "user_id", userID, "product", report.ProductName, "safety", report.Safety)
	sendReply(ctx, b, log, msg.Chat.ID, msg.ID, formatReport(report))
}

// analyzeErrorText maps an analysis failure to the message shown to the user.
func analyzeErrorText(err error, notIdentified, needsPhoto, general string) string {
	switch {
	case errors.Is(err, analysis.ErrBrandNotDetected), errors.Is(err, catalog.ErrProductNotFound):
		return notIdentified
	case errors.Is(err, analysis.ErrInvalidImage):
		return needsPhoto
	default:
		return general
	}
}
