package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nutriverse/nutribot/internal/assistant"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/gemini"
)

type stubLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (s *stubLLM) Generate(_ context.Context, req gemini.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range req.Messages {
		s.prompts = append(s.prompts, m.Text)
	}
	return "Try smaller portions.", nil
}

func (s *stubLLM) Complete(context.Context, string) (string, error) {
	return "SUITABLE: Yes\nRISK_LEVEL: Low\nHAZARDS: None\nEXPLANATION: Fine.", nil
}

func (s *stubLLM) DescribeImage(context.Context, []byte, string, string) (string, error) {
	return "Acme", nil
}

func (s *stubLLM) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func testConfig(t *testing.T, seed string) *config.Config {
	t.Helper()
	return &config.Config{
		Database:  config.DatabaseConfig{Path: ":memory:"},
		Knowledge: config.KnowledgeConfig{SeedFile: seed, ChunkSize: 200, ChunkOverlap: 20},
		Assistant: config.AssistantConfig{HistoryCap: 20, PromptHistoryTurns: 10, SummaryTurns: 20, MaxPeers: 3},
	}
}

func TestBuildWiresAssistant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := "Bloating after dairy can point to lactose intolerance.\nTry lactose free milk."
	if err := os.WriteFile(filepath.Join(dir, "digestion.md"), []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	llm := &stubLLM{}
	ctx := context.Background()
	a, err := Build(ctx, testConfig(t, dir), nil, WithLLM(llm))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(a.Close)

	n, err := a.Knowledge.Count(ctx)
	if err != nil || n == 0 {
		t.Fatalf("Count() after seed = %d, %v", n, err)
	}

	reply, err := a.Assistant.Chat(ctx, "u1", "Should I try a lactose free diet?", assistant.Image{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Try smaller portions." {
		t.Errorf("Chat() = %q", reply)
	}
	if !strings.Contains(llm.lastPrompt(), "LACTOSE KNOWLEDGE: Bloating after dairy") {
		t.Errorf("prompt did not include the seeded passage:\n%s", llm.lastPrompt())
	}
	if got := a.Profiles.History("u1", 10); len(got) != 2 {
		t.Errorf("History() has %d turns, want 2", len(got))
	}
}

func TestBuildMissingSeedIsNotFatal(t *testing.T) {
	t.Parallel()

	a, err := Build(context.Background(), testConfig(t, filepath.Join(t.TempDir(), "missing")), nil, WithLLM(&stubLLM{}))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(a.Close)

	if n, _ := a.Knowledge.Count(context.Background()); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestBuildWithoutSeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("Honey is unsafe for infants."), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	a, err := Build(context.Background(), testConfig(t, dir), nil, WithLLM(&stubLLM{}), WithoutSeed())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(a.Close)

	if n, _ := a.Knowledge.Count(context.Background()); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}
