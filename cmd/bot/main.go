// Package main contains the entrypoint for the NutriBot Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/nutriverse/nutribot/internal/app"
	"github.com/nutriverse/nutribot/internal/bot"
	"github.com/nutriverse/nutribot/internal/bot/handlers"
	"github.com/nutriverse/nutribot/internal/bot/tasks"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/logger"
	"github.com/nutriverse/nutribot/internal/sanitize"
	"github.com/nutriverse/nutribot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run starts every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize components", "error", err)
		return 1
	}
	defer a.Close()

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Assistant: a.Assistant,
		Profiles:  a.Profiles,
		Products:  a.Coordinator,
		Insights:  a.Insights,
		Knowledge: a.Knowledge,
		Plain:     sanitize.NewPlainTextPolicy(),
	}
	tDeps := tasks.TaskDeps{
		Logger:    log,
		Knowledge: a.Knowledge,
		Sessions:  a.Profiles,
		Config:    cfg,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, cmdHandlers); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	runErr := bot.NewBot(log, tg, sched).Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
