// Package handlers contains the Telegram command and message handlers of
// NutriBot, their registration table and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly rejects commands from anyone but the configured admin user.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "admin_only")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}
			if deps.Config.IsAdmin(update.Message.From.ID) {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", update.Message.From.ID, "chat_id", chatID)
			sendText(ctx, b, log, chatID, deps.Config.Messages.Unauthorized)
		}
	}
}
