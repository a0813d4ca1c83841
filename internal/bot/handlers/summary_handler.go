package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSummaryHandler returns a handler for the /summary command.
func NewSummaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return summaryHandler{deps}.Handle
}

type summaryHandler struct {
	deps HandlerDeps
}

func (h summaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "summary")
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sendTyping(ctx, b, chatID)

	text, err := h.deps.Assistant.Summary(ctx, userKey(update.Message.From))
	if err != nil {
		log.WarnContext(ctx, "Summary aborted", "error", err, "chat_id", chatID)
		return
	}
	sendReply(ctx, b, log, chatID, update.Message.ID, h.deps.modelText(text))
}
