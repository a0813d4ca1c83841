package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nutriverse/nutribot/internal/assistant"
)

// NewChatHandler returns the default handler: every message that is not a
// registered command is a chat turn.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}

	// Photo captions are not routed as commands.
	if len(msg.Photo) > 0 && isCommand(text, "analyze") {
		analyzeHandler(h).Handle(ctx, b, update)
		return
	}
	if strings.HasPrefix(text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "command", text)
		return
	}
	if text == "" && len(msg.Photo) == 0 {
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, h.deps.Config.Messages.ProvideMessage)
		return
	}

	sendTyping(ctx, b, msg.Chat.ID)

	var img assistant.Image
	if len(msg.Photo) > 0 {
		data, mimeType, _, err := downloadMessagePhoto(ctx, b, h.deps, msg)
		if err != nil {
			log.ErrorContext(ctx, "Photo download failed", "error", err, "chat_id", msg.Chat.ID)
			sendReply(ctx, b, log, msg.Chat.ID, msg.ID, h.deps.Config.Messages.GeneralError)
			return
		}
		img = assistant.Image{Data: data, MIMEType: mimeType}
	}

	reply, err := h.deps.Assistant.Chat(ctx, userKey(msg.From), text, img)
	if err != nil {
		log.WarnContext(ctx, "Chat turn aborted", "error", err, "chat_id", msg.Chat.ID)
		if ctx.Err() == nil {
			sendReply(ctx, b, log, msg.Chat.ID, msg.ID, h.deps.Config.Messages.GeneralError)
		}
		return
	}
	sendReply(ctx, b, log, msg.Chat.ID, msg.ID, h.deps.modelText(reply))
}
