package telegram

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/go-cmp/cmp"

	"github.com/nutriverse/nutribot/internal/bot/handlers"
)

func TestApplyMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	mw := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				calls = append(calls, name)
				next(ctx, b, u)
			}
		}
	}
	h := applyMiddleware(func(context.Context, *bot.Bot, *models.Update) {
		calls = append(calls, "handler")
	}, []bot.Middleware{mw("outer"), mw("inner")})
	h(context.Background(), nil, &models.Update{})

	if diff := cmp.Diff([]string{"outer", "inner", "handler"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestMenuCommands(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *bot.Bot, *models.Update) {}
	got := menuCommands(map[string]handlers.RegisteredHandler{
		"/start":  {Pattern: "start", Description: "Introduce the bot", Handler: noop},
		"/stats":  {Pattern: "stats", Handler: noop},
		"/broken": {Pattern: "broken", Description: "No handler"},
		"/help":   {Pattern: "help", Description: "List the commands", Handler: noop},
	})
	want := []models.BotCommand{
		{Command: "help", Description: "List the commands"},
		{Command: "start", Description: "Introduce the bot"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("menuCommands() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTelegramBotRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramBot("", nil); err == nil {
		t.Error("NewTelegramBot(\"\") should fail")
	}
	if err := RegisterHandlers(nil, nil, nil); err == nil {
		t.Error("RegisterHandlers(nil bot) should fail")
	}
}

func TestTokenPrefix(t *testing.T) {
	t.Parallel()

	if got := tokenPrefix("123456789:ABC"); got != "12345678..." {
		t.Errorf("tokenPrefix() = %q", got)
	}
	if got := tokenPrefix("short"); got != "..." {
		t.Errorf("tokenPrefix(short) = %q", got)
	}
}
