package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler describes how a command handler is registered.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Description string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

func command(pattern, description string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Description: description,
		Handler:     h,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  mw,
	}
}

// RegisterAllCommands returns the command table keyed by command. Plain
// messages and photos go to the default handler, NewChatHandler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	return map[string]RegisteredHandler{
		"/start":    command("start", "Introduce the bot", NewStartHandler(deps)),
		"/help":     command("help", "List the commands", NewHelpHandler(deps)),
		"/profile":  command("profile", "Show your health profile", NewProfileHandler(deps)),
		"/set":      command("set", "Set a profile field, e.g. /set age 34", NewSetHandler(deps)),
		"/analyze":  command("analyze", "Check a product photo against your diet", NewAnalyzeHandler(deps)),
		"/insights": command("insights", "See what helped people like you", NewInsightsHandler(deps)),
		"/summary":  command("summary", "Summarize our conversation", NewSummaryHandler(deps)),
		"/reset":    command("reset", "Forget the conversation history", NewResetHandler(deps)),
		"/stats":    command("stats", "", NewStatsHandler(deps), AdminOnly(deps)),
	}
}
