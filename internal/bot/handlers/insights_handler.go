package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nutriverse/nutribot/internal/tools"
)

// NewInsightsHandler returns a handler for the /insights command.
func NewInsightsHandler(deps HandlerDeps) bot.HandlerFunc {
	return insightsHandler{deps}.Handle
}

type insightsHandler struct {
	deps HandlerDeps
}

// Handle reports what members of the sender's segment complain about and
// what worked for them.
func (h insightsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "insights")
	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message

	p, _, err := h.deps.Assistant.Profile(userKey(msg.From))
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profile", "error", err)
		sendText(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.GeneralError)
		return
	}

	in, err := h.deps.Insights.Summarize(p.Segment, tools.ProblemType(commandArgs(msg.Text)))
	sendReply(ctx, b, log, msg.Chat.ID, msg.ID, formatInsight(h.deps.Config.Messages.InsightsHeader, in, err, p.Segment))
}
