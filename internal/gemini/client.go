// Package gemini implements inference and vision calls against Google's
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"

	"github.com/nutriverse/nutribot/internal/config"
)

// Message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of an inference request.
type Message struct {
	Role string
	Text string
}

// Request is a chat inference request. Zero sampling values fall back to the
// client's configured defaults.
type Request struct {
	Messages          []Message
	SystemInstruction string
	Temperature       *float32
	TopP              *float32
	MaxOutputTokens   int32
}

// Client is the inference and vision surface used by the assistant.
type Client interface {
	// Generate runs a chat request and returns the model's text.
	Generate(ctx context.Context, req Request) (string, error)
	// Complete sends a single user prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// DescribeImage asks the vision model about an image.
	DescribeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

type sdkClient struct {
	genaiClient     *genai.Client
	log             *slog.Logger
	contentConfig   *genai.GenerateContentConfig
	modelName       string
	visionModelName string
	timeout         time.Duration
	maxRetries      int
	retryDelay      time.Duration
}

// NewClient creates a Gemini client from cfg.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature, topP := cfg.Temperature, cfg.TopP
	baseCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: cfg.MaxOutputTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}
	if cfg.SystemInstruction != "" {
		baseCfg.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName, "vision_model", cfg.VisionModelName)
	return &sdkClient{
		genaiClient:     gi,
		log:             logger,
		contentConfig:   baseCfg,
		modelName:       cfg.ModelName,
		visionModelName: cfg.VisionModelName,
		timeout:         cfg.Timeout,
		maxRetries:      cfg.MaxRetries,
		retryDelay:      time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// retriable reports whether err is a server-side Gemini failure worth
// retrying. The SDK returns APIError by value; pointers are accepted too.
func retriable(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && (apiErrPtr.Code == 500 || apiErrPtr.Code == 503) {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := retry.DoWithData(
		func() (*genai.GenerateContentResponse, error) {
			return c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			_, ok := retriable(err)
			return ok
		}),
		retry.OnRetry(func(n uint, err error) {
			code, _ := retriable(err)
			c.log.WarnContext(ctx, "Retrying Gemini API call", "attempt", n+1, "max_retries", c.maxRetries, "code", code, "delay", c.retryDelay)
		}),
	)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("gemini call aborted: %w", err)
	}
	if code, ok := retriable(err); ok {
		c.log.ErrorContext(ctx, "Gemini API call failed after max retries", "model", modelName, "code", code, "error", err)
		return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, code, err)
	}
	c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "model", modelName, "error", err)
	return nil, fmt.Errorf("gemini API call failed: %w", err)
}

func (c *sdkClient) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("gemini request has no messages")
	}
	c.log.DebugContext(ctx, "Generating reply", "message_count", len(req.Messages))

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, c.requestConfig(req))
	if err != nil {
		return "", err
	}
	return c.extractTextFromResponse(ctx, "generate", resp)
}

func (c *sdkClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Text: prompt}}})
}

func (c *sdkClient) DescribeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if len(image) == 0 || mimeType == "" {
		return "", fmt.Errorf("image data and MIME type are required for analysis")
	}
	c.log.DebugContext(ctx, "Describing image", "image_size", len(image), "mime_type", mimeType)

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(instruction),
	}, genai.RoleUser)}

	cfg := *c.contentConfig
	cfg.SystemInstruction = genai.NewContentFromText(VisionSystemInstruction, genai.RoleUser)

	resp, err := c.generateContentWithRetries(ctx, c.visionModelName, contents, &cfg)
	if err != nil {
		return "", fmt.Errorf("gemini image analysis failed: %w", err)
	}
	return c.extractTextFromResponse(ctx, "describe_image", resp)
}

// requestConfig layers the per-request overrides over the base config.
func (c *sdkClient) requestConfig(req Request) *genai.GenerateContentConfig {
	cfg := *c.contentConfig
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}
	if req.TopP != nil {
		cfg.TopP = req.TopP
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}
	return &cfg
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, op string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%s returned no response", op)
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" && pf.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return "", fmt.Errorf("%s returned no content, finish reason: %s", op, finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", op)
	}
	return text, nil
}
