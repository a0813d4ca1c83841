package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/genai"
)

func testClient() *sdkClient {
	temperature, topP := float32(0.7), float32(0.9)
	return &sdkClient{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		contentConfig: &genai.GenerateContentConfig{
			Temperature:       &temperature,
			TopP:              &topP,
			MaxOutputTokens:   512,
			SystemInstruction: genai.NewContentFromText("base", genai.RoleUser),
		},
	}
}

func TestRetriable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "value 503", err: genai.APIError{Code: 503}, want: true},
		{name: "wrapped value 500", err: fmt.Errorf("call: %w", genai.APIError{Code: 500}), want: true},
		{name: "pointer 503", err: &genai.APIError{Code: 503}, want: true},
		{name: "client error", err: genai.APIError{Code: 400}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, got := retriable(tc.err); got != tc.want {
				t.Errorf("retriable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRequestConfigOverrides(t *testing.T) {
	t.Parallel()

	c := testClient()
	temp := float32(0.1)
	cfg := c.requestConfig(Request{SystemInstruction: "custom", Temperature: &temp, MaxOutputTokens: 64})

	if *cfg.Temperature != 0.1 || *cfg.TopP != 0.9 || cfg.MaxOutputTokens != 64 {
		t.Errorf("config = temp %v topP %v max %d", *cfg.Temperature, *cfg.TopP, cfg.MaxOutputTokens)
	}
	if got := cfg.SystemInstruction.Parts[0].Text; got != "custom" {
		t.Errorf("system instruction = %q, want custom", got)
	}
	if got := c.contentConfig.SystemInstruction.Parts[0].Text; got != "base" || *c.contentConfig.Temperature != 0.7 {
		t.Error("requestConfig modified the base config")
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	t.Parallel()

	c := testClient()
	ctx := context.Background()

	ok := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: genai.NewContentFromText("  Drink water.\n", genai.RoleModel),
	}}}
	if got, err := c.extractTextFromResponse(ctx, "test", ok); err != nil || got != "Drink water." {
		t.Errorf("extractTextFromResponse() = %q, %v", got, err)
	}

	blocked := &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
		BlockReason:        genai.BlockedReasonSafety,
		BlockReasonMessage: "unsafe",
	}}
	if _, err := c.extractTextFromResponse(ctx, "test", blocked); err == nil {
		t.Error("blocked response should fail")
	}

	empty := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}}
	if _, err := c.extractTextFromResponse(ctx, "test", empty); err == nil {
		t.Error("response without content should fail")
	}
}
