package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout = 30 * time.Second
	sendMessageTimeout   = 10 * time.Second
	maxPhotoBytes        = 10 * 1024 * 1024
	// Telegram rejects longer message texts.
	maxMessageLength = 4096
)

// userKey is the profile key of a Telegram user.
func userKey(from *models.User) string {
	return strconv.FormatInt(from.ID, 10)
}

// commandArgs returns the text after the leading "/command" or
// "/command@botname" token.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

// isCommand reports whether text starts with the given command, with or
// without a bot username suffix.
func isCommand(text, command string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	first, _, _ = strings.Cut(first, "@")
	return strings.EqualFold(first, "/"+command)
}

// largestPhoto picks the highest resolution size of a photo.
func largestPhoto(sizes []models.PhotoSize) (models.PhotoSize, bool) {
	if len(sizes) == 0 {
		return models.PhotoSize{}, false
	}
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best, true
}

// DownloadPhoto fetches a file from Telegram and sniffs its MIME type.
func DownloadPhoto(ctx context.Context, b *bot.Bot, token, fileID string) (data []byte, mimeType string, err error) {
	if token == "" {
		return nil, "", errors.New("empty token provided")
	}
	if fileID == "" {
		return nil, "", errors.New("empty fileID provided")
	}

	ctx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}
	if file.FilePath == "" {
		return nil, "", errors.New("empty file path returned from Telegram")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("received empty file data")
	}
	return data, http.DetectContentType(data), nil
}

// downloadMessagePhoto downloads the largest size of the photo attached to
// msg, or to the message it replies to.
func downloadMessagePhoto(ctx context.Context, b *bot.Bot, deps HandlerDeps, msg *models.Message) ([]byte, string, bool, error) {
	sizes := msg.Photo
	if len(sizes) == 0 && msg.ReplyToMessage != nil {
		sizes = msg.ReplyToMessage.Photo
	}
	photo, ok := largestPhoto(sizes)
	if !ok {
		return nil, "", false, nil
	}
	data, mimeType, err := DownloadPhoto(ctx, b, deps.Config.Telegram.Token, photo.FileID)
	return data, mimeType, true, err
}

// splitMessage cuts text into Telegram-sized parts, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// sendReply sends text as a reply to messageID, split if too long.
func sendReply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, text string) {
	for i, part := range splitMessage(text, maxMessageLength) {
		params := &bot.SendMessageParams{ChatID: chatID, Text: part}
		if i == 0 && messageID > 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: messageID}
		}
		sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
		_, err := b.SendMessage(sendCtx, params)
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
			return
		}
	}
}

func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	sendReply(ctx, b, log, chatID, 0, text)
}

func sendTyping(ctx context.Context, b *bot.Bot, chatID int64) {
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
}

// withBotName substitutes the bot's username for the "@botname" placeholder.
func withBotName(text string, botInfo *models.User) string {
	if botInfo == nil || botInfo.Username == "" {
		return text
	}
	return strings.ReplaceAll(text, "@botname", "@"+botInfo.Username)
}
