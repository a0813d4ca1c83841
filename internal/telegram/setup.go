// Package telegram creates the Telegram bot client and registers handlers on it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nutriverse/nutribot/internal/bot/handlers"
)

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// NewTelegramBot creates a go-telegram/bot client for token.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	log := orDiscard(logger).With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	const n = 8
	if len(token) <= n {
		return "..."
	}
	return token[:n] + "..."
}

// applyMiddleware wraps handler so that mw[0] is the outermost middleware.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// sortedKeys returns the command keys in a stable order.
func sortedKeys(registered map[string]handlers.RegisteredHandler) []string {
	keys := make([]string, 0, len(registered))
	for k := range registered {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisterHandlers registers each handler with its middleware applied.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	log := orDiscard(logger).With("component", "handler_registry")

	if len(registered) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	count := 0
	for _, key := range sortedKeys(registered) {
		h := registered[key]
		if h.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", h.Pattern)
			continue
		}
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, applyMiddleware(h.Handler, h.Middleware))
		log.Debug("Registered handler", "pattern", h.Pattern, "match_type", h.MatchType, "middleware_count", len(h.Middleware))
		count++
	}

	log.Info("Registered Telegram handlers", "count", count)
	return nil
}

// menuCommands lists the commands shown in the Telegram menu. Commands
// without a description stay hidden.
func menuCommands(registered map[string]handlers.RegisteredHandler) []models.BotCommand {
	var cmds []models.BotCommand
	for _, key := range sortedKeys(registered) {
		h := registered[key]
		if h.Description == "" || h.Handler == nil {
			continue
		}
		cmds = append(cmds, models.BotCommand{Command: h.Pattern, Description: h.Description})
	}
	return cmds
}

// PublishCommands sets the bot's command menu from the registered handlers.
func PublishCommands(ctx context.Context, b *bot.Bot, registered map[string]handlers.RegisteredHandler) error {
	cmds := menuCommands(registered)
	if len(cmds) == 0 {
		return nil
	}
	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}
