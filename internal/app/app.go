// Package app wires the NutriBot components together from a loaded
// configuration. The bot, chat and analyze commands all start from Build.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nutriverse/nutribot/internal/analysis"
	"github.com/nutriverse/nutribot/internal/assistant"
	"github.com/nutriverse/nutribot/internal/catalog"
	"github.com/nutriverse/nutribot/internal/community"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/database"
	"github.com/nutriverse/nutribot/internal/gemini"
	"github.com/nutriverse/nutribot/internal/profile"
	"github.com/nutriverse/nutribot/internal/prompt"
	"github.com/nutriverse/nutribot/internal/tools"
)

// App holds the initialized components.
type App struct {
	Config      *config.Config
	DB          *sqlx.DB
	Knowledge   database.Store
	LLM         gemini.Client
	Catalog     *catalog.Client
	Profiles    *profile.Store
	Peers       *community.SimilarityEngine
	Insights    *community.Aggregator
	Analyzer    *analysis.Analyzer
	Coordinator *analysis.Coordinator
	Tools       *tools.Executor
	Prompts     *prompt.Assembler
	Assistant   *assistant.Assistant
}

// Option overrides a component Build would otherwise create.
type Option func(*options)

type options struct {
	llm        gemini.Client
	httpClient *http.Client
	skipSeed   bool
}

// WithLLM uses c instead of a Gemini client built from the config.
func WithLLM(c gemini.Client) Option {
	return func(o *options) { o.llm = c }
}

// WithHTTPClient sets the HTTP client of the product catalog.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithoutSeed skips loading the knowledge seed documents.
func WithoutSeed() Option {
	return func(o *options) { o.skipSeed = true }
}

// Build opens the database, loads the knowledge seed and creates every
// component. Close releases what Build opened.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	startTime := time.Now()
	componentTimes := map[string]int64{}
	track := func(name string, since time.Time) {
		componentTimes[name] = time.Since(since).Milliseconds()
	}

	stepStart := time.Now()
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	knowledge := database.NewStore(db, logger)
	track("database", stepStart)

	a := &App{Config: cfg, DB: db, Knowledge: knowledge}

	if !o.skipSeed && cfg.Knowledge.SeedFile != "" {
		stepStart = time.Now()
		n, err := database.LoadPath(ctx, knowledge, cfg.Knowledge.SeedFile, cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
		if err != nil {
			logger.Warn("Failed to load knowledge seed, continuing without it", "path", cfg.Knowledge.SeedFile, "error", err)
		} else {
			logger.Info("Loaded knowledge seed", "path", cfg.Knowledge.SeedFile, "passages", n)
		}
		track("knowledge_seed", stepStart)
	}

	stepStart = time.Now()
	a.LLM = o.llm
	if a.LLM == nil {
		a.LLM, err = gemini.NewClient(ctx, cfg.Gemini, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
	}
	track("gemini", stepStart)

	a.Catalog = catalog.NewClient(catalog.Config{
		BaseURL:       cfg.Catalog.BaseURL,
		Timeout:       cfg.Catalog.Timeout,
		MaxFailures:   cfg.Catalog.MaxFailures,
		ResetInterval: cfg.Catalog.ResetInterval,
		UserAgent:     cfg.Catalog.UserAgent,
	}, o.httpClient, logger)

	a.Profiles = profile.NewStore(logger, profile.WithHistoryCap(cfg.Assistant.HistoryCap))
	a.Peers = community.NewSimilarityEngine(a.Profiles, logger)
	a.Insights = community.NewAggregator(a.Profiles, logger)
	a.Analyzer = analysis.NewAnalyzer(a.LLM, knowledge, logger)
	a.Coordinator = analysis.NewCoordinator(a.LLM, a.Catalog, a.Analyzer, a.Profiles, logger)

	a.Tools = tools.NewExecutor(tools.Deps{
		Peers:        a.Peers,
		Insights:     a.Insights,
		Analyzer:     a.Analyzer,
		Products:     a.Coordinator,
		MaxPeers:     cfg.Assistant.MaxPeers,
		DefaultDiets: cfg.Assistant.DefaultDiets,
	}, logger,
		tools.WithConcurrency(cfg.Assistant.ToolConcurrency),
		tools.WithTimeout(cfg.Assistant.ToolTimeout),
	)

	a.Prompts = prompt.NewAssembler(prompt.Config{
		Profiles:     a.Profiles,
		Knowledge:    knowledge,
		Insights:     a.Insights,
		Peers:        a.Peers,
		HistoryTurns: cfg.Assistant.PromptHistoryTurns,
	}, logger)

	a.Assistant = assistant.New(assistant.Deps{
		Profiles: a.Profiles,
		Tools:    a.Tools,
		Prompts:  a.Prompts,
		LLM:      a.LLM,
	}, assistant.Config{
		InferenceTimeout: cfg.Assistant.InferenceTimeout,
		SummaryTurns:     cfg.Assistant.SummaryTurns,
	}, logger)

	logger.Info("Components initialized",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"component_times_ms", componentTimes)
	return a, nil
}

// Close releases the database.
func (a *App) Close() {
	if a.DB != nil {
		database.CloseDB(a.DB)
	}
}
