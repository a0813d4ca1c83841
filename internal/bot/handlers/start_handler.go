package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

// Handle greets the user and asks for the first missing profile detail.
func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")
	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", update.Message.From.ID)

	sendText(ctx, b, log, chatID, withBotName(h.deps.Config.Messages.Welcome, h.deps.Config.Telegram.BotInfo))

	_, q, err := h.deps.Assistant.Profile(userKey(update.Message.From))
	if err != nil {
		log.ErrorContext(ctx, "Failed to load profile", "error", err)
		return
	}
	if text := question(q, h.deps.Config.Messages); text != "" {
		sendText(ctx, b, log, chatID, text)
	}
}
