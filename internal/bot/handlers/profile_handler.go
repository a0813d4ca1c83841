package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewProfileHandler returns a handler for the /profile command.
func NewProfileHandler(deps HandlerDeps) bot.HandlerFunc {
	return profileHandler{deps}.Handle
}

type profileHandler struct {
	deps HandlerDeps
}

// Handle shows the sender's profile followed by one clarifying question
// when a detail is missing.
func (h profileHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "profile")
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	p, q, err := h.deps.Assistant.Profile(userKey(update.Message.From))
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profile", "error", err, "user_id", update.Message.From.ID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	text := formatProfile(p)
	if ask := question(q, h.deps.Config.Messages); ask != "" {
		text += "\n\n" + ask
	}
	sendReply(ctx, b, log, chatID, update.Message.ID, text)
}
