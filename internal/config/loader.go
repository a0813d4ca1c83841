package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NUTRIBOT_GEMINI_API_KEY.
const EnvPrefix = "NUTRIBOT"

// ErrConfiguration wraps every load or validation failure.
var ErrConfiguration = errors.New("configuration error")

// LoadConfig reads the YAML file at path over the defaults, applies
// NUTRIBOT_* environment overrides and validates the result. A missing file
// is not an error; everything then comes from defaults and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// An explicit path reports a missing file as fs.ErrNotExist rather than
	// ConfigFileNotFoundError.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// IsAdmin reports whether userID is the configured administrator.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Telegram.AdminUserID != 0 && userID == c.Telegram.AdminUserID
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.vision_model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_output_tokens", 1024)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 2)
	v.SetDefault("gemini.timeout", 2*time.Minute)
	v.SetDefault("gemini.system_instruction", DefaultSystemInstruction)

	v.SetDefault("database.path", "knowledge.db")

	v.SetDefault("knowledge.seed_file", "data/knowledge")
	v.SetDefault("knowledge.chunk_size", 500)
	v.SetDefault("knowledge.chunk_overlap", 50)

	v.SetDefault("catalog.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.max_failures", 5)
	v.SetDefault("catalog.reset_interval", time.Minute)
	v.SetDefault("catalog.user_agent", "nutribot/1.0")

	v.SetDefault("assistant.history_cap", 20)
	v.SetDefault("assistant.prompt_history_turns", 5)
	v.SetDefault("assistant.summary_turns", 50)
	v.SetDefault("assistant.max_peers", 5)
	v.SetDefault("assistant.tool_timeout", 30*time.Second)
	v.SetDefault("assistant.tool_concurrency", 4)
	v.SetDefault("assistant.inference_timeout", 60*time.Second)
	v.SetDefault("assistant.session_idle_timeout", 24*time.Hour)
	v.SetDefault("assistant.default_diets", []string{"celiac", "diabetes", "vegan", "lactose", "nut_allergy"})

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance":  map[string]any{"enabled": true, "schedule": "0 0 3 * * *"},
		"session_sweep":    map[string]any{"enabled": true, "schedule": "0 */15 * * * *"},
		"knowledge_reload": map[string]any{"enabled": false, "schedule": "0 0 * * * *"},
	})

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.unauthorized", DefaultMessages.Unauthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.provide_message", DefaultMessages.ProvideMessage)
	v.SetDefault("messages.reset_confirm", DefaultMessages.ResetConfirm)
	v.SetDefault("messages.profile_updated", DefaultMessages.ProfileUpdated)
	v.SetDefault("messages.profile_usage", DefaultMessages.ProfileUsage)
	v.SetDefault("messages.analyze_progress", DefaultMessages.AnalyzeProgress)
	v.SetDefault("messages.analyze_needs_photo", DefaultMessages.AnalyzeNeedsPhoto)
	v.SetDefault("messages.analyze_failed", DefaultMessages.AnalyzeFailed)
	v.SetDefault("messages.insights_header", DefaultMessages.InsightsHeader)
	v.SetDefault("messages.stats_fmt", DefaultMessages.StatsFmt)
	v.SetDefault("messages.ask_age", DefaultMessages.AskAge)
	v.SetDefault("messages.ask_conditions", DefaultMessages.AskConditions)
	v.SetDefault("messages.ask_diet", DefaultMessages.AskDiet)
}
