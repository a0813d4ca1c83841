package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nutriverse/nutribot/internal/assistant"
)

// NewSetHandler returns a handler for the /set command.
func NewSetHandler(deps HandlerDeps) bot.HandlerFunc {
	return setHandler{deps}.Handle
}

type setHandler struct {
	deps HandlerDeps
}

// parseSetArgs splits "/set <field> <value>" arguments.
func parseSetArgs(args string) (field, value string, ok bool) {
	field, value, _ = strings.Cut(strings.TrimSpace(args), " ")
	value = strings.TrimSpace(value)
	return field, value, field != "" && value != ""
}

// Handle updates one field of the sender's profile.
func (h setHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "set")
	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	msgs := h.deps.Config.Messages

	field, value, ok := parseSetArgs(commandArgs(msg.Text))
	if !ok {
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.ProfileUsage)
		return
	}

	p, err := h.deps.Assistant.SetField(userKey(msg.From), field, value)
	switch {
	case errors.Is(err, assistant.ErrUnknownField), errors.Is(err, assistant.ErrInvalidValue):
		log.InfoContext(ctx, "Rejected profile update", "field", field, "error", err)
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, err.Error()+"\n"+msgs.ProfileUsage)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to update profile", "field", field, "error", err)
		sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.GeneralError)
		return
	}

	sendReply(ctx, b, log, msg.Chat.ID, msg.ID, msgs.ProfileUpdated+"\n\n"+formatProfile(p))
}
