package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the admin /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

// Handle reports active profiles per segment and the knowledge base size.
func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	passages, err := h.deps.Knowledge.Count(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count knowledge passages", "error", err)
		passages = -1
	}
	sendText(ctx, b, log, chatID, formatStats(h.deps.Config.Messages.StatsFmt, h.deps.Profiles.All(), passages))
}
