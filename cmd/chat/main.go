// Package main runs a terminal chat session against the NutriBot assistant.
//
// Lines are sent to the assistant as chat messages. Commands:
//
//	/photo <path> [message]   attach a product photo
//	/set <field> <value>      update the profile
//	/profile                  show the profile
//	/summary                  summarize the conversation
//	/reset                    clear the conversation history
//	/quit                     exit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/nutriverse/nutribot/internal/app"
	"github.com/nutriverse/nutribot/internal/assistant"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/logger"
	"github.com/nutriverse/nutribot/internal/prompt"
	"github.com/nutriverse/nutribot/internal/sanitize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Stdin, os.Stdout)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context, in io.Reader, out io.Writer) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	userID := flag.String("user", "", "Session id; a random one is used when empty")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}
	// Logs go to stderr so they do not interleave with replies.
	log := logger.New(os.Stderr, cfg.Logger.Level, cfg.Logger.JSON)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize components", "error", err)
		return 1
	}
	defer a.Close()

	session := *userID
	if session == "" {
		session = uuid.NewString()
	}
	fmt.Fprintf(out, "Session %s. Type /quit to exit.\n", session)

	plain := sanitize.NewPlainTextPolicy()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return 0
		}
		reply, err := handleLine(ctx, a.Assistant, session, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return 0
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, plain.Text(reply))
	}
	if err := scanner.Err(); err != nil {
		log.Error("Failed to read input", "error", err)
		return 1
	}
	return 0
}

func handleLine(ctx context.Context, as *assistant.Assistant, session, line string) (string, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/summary":
		return as.Summary(ctx, session)
	case "/reset":
		as.Reset(session)
		return "Conversation history cleared.", nil
	case "/profile":
		p, _, err := as.Profile(session)
		if err != nil {
			return "", err
		}
		return prompt.RenderProfile(p), nil
	case "/set":
		field, value, _ := strings.Cut(rest, " ")
		if _, err := as.SetField(session, field, strings.TrimSpace(value)); err != nil {
			return "", err
		}
		return "Profile updated.", nil
	case "/photo":
		path, message, _ := strings.Cut(rest, " ")
		if path == "" {
			return "", errors.New("usage: /photo <path> [message]")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read photo: %w", err)
		}
		img := assistant.Image{Data: data, MIMEType: http.DetectContentType(data)}
		return as.Chat(ctx, session, strings.TrimSpace(message), img)
	default:
		return as.Chat(ctx, session, line, assistant.Image{})
	}
}
