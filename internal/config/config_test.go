package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nutriverse/nutribot/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWithEnv(t *testing.T) {
	t.Setenv("NUTRIBOT_GEMINI_API_KEY", "env-key")
	t.Setenv("NUTRIBOT_ASSISTANT_MAX_PEERS", "7")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Gemini.APIKey = %q, want env-key", cfg.Gemini.APIKey)
	}
	if cfg.Assistant.MaxPeers != 7 {
		t.Errorf("Assistant.MaxPeers = %d, want 7", cfg.Assistant.MaxPeers)
	}
	if cfg.Assistant.HistoryCap != 20 || cfg.Assistant.SummaryTurns != 50 {
		t.Errorf("assistant defaults = %+v", cfg.Assistant)
	}
	if cfg.Gemini.Timeout != 2*time.Minute {
		t.Errorf("Gemini.Timeout = %v, want 2m", cfg.Gemini.Timeout)
	}
	if cfg.Messages.AskAge != config.DefaultMessages.AskAge {
		t.Errorf("Messages.AskAge = %q", cfg.Messages.AskAge)
	}
	if task, ok := cfg.Scheduler.Tasks["session_sweep"]; !ok || !task.Enabled || task.Schedule == "" {
		t.Errorf("session_sweep task = %+v, %v", task, ok)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: true
telegram:
  token: "123:abc"
  admin_user_id: 42
gemini:
  api_key: file-key
  temperature: 0.2
  timeout: 30s
assistant:
  default_diets: [vegan, celiac]
scheduler:
  tasks:
    sql_maintenance:
      enabled: false
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logger.Level != "debug" || !cfg.Logger.JSON {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if !cfg.IsAdmin(42) || cfg.IsAdmin(7) {
		t.Error("IsAdmin does not match admin_user_id 42")
	}
	if cfg.Gemini.Temperature != 0.2 || cfg.Gemini.Timeout != 30*time.Second {
		t.Errorf("Gemini = %+v", cfg.Gemini)
	}
	if diff := cmp.Diff([]string{"vegan", "celiac"}, cfg.Assistant.DefaultDiets); diff != "" {
		t.Errorf("DefaultDiets mismatch (-want +got):\n%s", diff)
	}
	if cfg.Scheduler.Tasks["sql_maintenance"].Enabled {
		t.Error("sql_maintenance should be disabled by the file")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing api key", body: "logger:\n  level: info\n"},
		{name: "bad log level", body: "gemini:\n  api_key: k\nlogger:\n  level: loud\n"},
		{name: "overlap not below chunk size", body: "gemini:\n  api_key: k\nknowledge:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{name: "prompt turns above history cap", body: "gemini:\n  api_key: k\nassistant:\n  history_cap: 4\n  prompt_history_turns: 5\n"},
		{name: "enabled task without schedule", body: "gemini:\n  api_key: k\nscheduler:\n  tasks:\n    extra:\n      enabled: true\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tc.body))
			if !errors.Is(err, config.ErrConfiguration) {
				t.Errorf("LoadConfig() error = %v, want ErrConfiguration", err)
			}
		})
	}
}
