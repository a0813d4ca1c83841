// Package config defines the application configuration and loads it from a
// YAML file, NUTRIBOT_* environment variables and built-in defaults.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the root configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig configures the chat surface. The token is checked when the
// bot is created, so the command line tools can run without one.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"gte=0"`

	// BotInfo is filled from getMe at startup.
	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig configures inference and vision calls.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"             validate:"required"`
	ModelName         string        `mapstructure:"model_name"          validate:"required"`
	VisionModelName   string        `mapstructure:"vision_model_name"   validate:"required"`
	Temperature       float32       `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	TopP              float32       `mapstructure:"top_p"               validate:"gte=0,lte=1"`
	MaxOutputTokens   int32         `mapstructure:"max_output_tokens"   validate:"gt=0"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	SystemInstruction string        `mapstructure:"system_instruction"`
}

// DatabaseConfig locates the knowledge database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// KnowledgeConfig controls how reference documents are indexed.
type KnowledgeConfig struct {
	SeedFile     string `mapstructure:"seed_file"`
	ChunkSize    int    `mapstructure:"chunk_size"    validate:"gte=50"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// CatalogConfig configures the product catalog client.
type CatalogConfig struct {
	BaseURL       string        `mapstructure:"base_url"       validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout"        validate:"min=1s"`
	MaxFailures   int           `mapstructure:"max_failures"   validate:"gte=1"`
	ResetInterval time.Duration `mapstructure:"reset_interval" validate:"min=1s"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// AssistantConfig tunes the per-turn pipeline.
type AssistantConfig struct {
	HistoryCap         int           `mapstructure:"history_cap"          validate:"gte=1"`
	PromptHistoryTurns int           `mapstructure:"prompt_history_turns" validate:"gte=1,ltefield=HistoryCap"`
	SummaryTurns       int           `mapstructure:"summary_turns"        validate:"gte=1"`
	MaxPeers           int           `mapstructure:"max_peers"            validate:"gte=1"`
	ToolTimeout        time.Duration `mapstructure:"tool_timeout"         validate:"min=1s"`
	ToolConcurrency    int           `mapstructure:"tool_concurrency"     validate:"gte=1"`
	InferenceTimeout   time.Duration `mapstructure:"inference_timeout"    validate:"min=1s"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" validate:"min=1m"`
	DefaultDiets       []string      `mapstructure:"default_diets"        validate:"dive,required"`
}

// SchedulerConfig lists the scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing strings.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"             validate:"required"`
	Help              string `mapstructure:"help"                validate:"required"`
	Unauthorized      string `mapstructure:"unauthorized"        validate:"required"`
	GeneralError      string `mapstructure:"general_error"       validate:"required"`
	ProvideMessage    string `mapstructure:"provide_message"     validate:"required"`
	ResetConfirm      string `mapstructure:"reset_confirm"       validate:"required"`
	ProfileUpdated    string `mapstructure:"profile_updated"     validate:"required"`
	ProfileUsage      string `mapstructure:"profile_usage"       validate:"required"`
	AnalyzeProgress   string `mapstructure:"analyze_progress"    validate:"required"`
	AnalyzeNeedsPhoto string `mapstructure:"analyze_needs_photo" validate:"required"`
	AnalyzeFailed     string `mapstructure:"analyze_failed"      validate:"required"`
	InsightsHeader    string `mapstructure:"insights_header"     validate:"required"`
	StatsFmt          string `mapstructure:"stats_fmt"           validate:"required"`
	AskAge            string `mapstructure:"ask_age"             validate:"required"`
	AskConditions     string `mapstructure:"ask_conditions"      validate:"required"`
	AskDiet           string `mapstructure:"ask_diet"            validate:"required"`
}
