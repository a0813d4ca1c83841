package tasks_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"

	"github.com/nutriverse/nutribot/internal/bot/tasks"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/database"
	"github.com/nutriverse/nutribot/internal/profile"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newDeps(t *testing.T) (tasks.TaskDeps, *profile.Store, *clock) {
	t.Helper()
	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	clk := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	sessions := profile.NewStore(nil, profile.WithClock(clk.Now))
	cfg := &config.Config{
		Assistant: config.AssistantConfig{SessionIdleTimeout: time.Hour},
		Knowledge: config.KnowledgeConfig{ChunkSize: 200, ChunkOverlap: 20},
	}
	return tasks.TaskDeps{
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Knowledge: database.NewStore(db, nil),
		Sessions:  sessions,
		Config:    cfg,
	}, sessions, clk
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()
	deps, _, _ := newDeps(t)

	got := lo.Keys(tasks.RegisterAllTasks(deps))
	slices.Sort(got)
	want := []string{tasks.TaskKnowledgeReload, tasks.TaskSessionSweep, tasks.TaskSQLMaintenance}
	if !slices.Equal(got, want) {
		t.Errorf("registered tasks = %v, want %v", got, want)
	}
}

func TestSessionSweepTask(t *testing.T) {
	t.Parallel()
	deps, sessions, clk := newDeps(t)

	if err := sessions.Ensure("idle"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	clk.Advance(2 * time.Hour)
	if _, err := sessions.GetOrCreate("active"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if err := tasks.RegisterAllTasks(deps)[tasks.TaskSessionSweep](context.Background()); err != nil {
		t.Fatalf("session sweep error = %v", err)
	}
	if _, ok := sessions.Get("idle"); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := sessions.Get("active"); !ok {
		t.Error("active session was swept")
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()
	deps, _, _ := newDeps(t)
	task := tasks.RegisterAllTasks(deps)[tasks.TaskSQLMaintenance]

	if err := task(context.Background()); err != nil {
		t.Fatalf("sql maintenance error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := task(ctx); err == nil {
		t.Error("sql maintenance with cancelled context should fail")
	}
}

func TestKnowledgeReloadTask(t *testing.T) {
	t.Parallel()
	deps, _, _ := newDeps(t)
	ctx := context.Background()

	// No seed path configured: nothing to do.
	if err := tasks.RegisterAllTasks(deps)[tasks.TaskKnowledgeReload](ctx); err != nil {
		t.Fatalf("reload without seed path error = %v", err)
	}

	dir := t.TempDir()
	doc := "Honey must not be given to infants under 12 months.\nLimit added sugar for children."
	if err := os.WriteFile(filepath.Join(dir, "infants.md"), []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	deps.Config.Knowledge.SeedFile = dir

	if err := tasks.RegisterAllTasks(deps)[tasks.TaskKnowledgeReload](ctx); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	got, err := deps.Knowledge.Search(ctx, "honey", 3)
	if err != nil || len(got) != 1 {
		t.Errorf("Search(honey) after reload = %q, %v", got, err)
	}

	deps.Config.Knowledge.SeedFile = filepath.Join(dir, "missing")
	if err := tasks.RegisterAllTasks(deps)[tasks.TaskKnowledgeReload](ctx); err == nil {
		t.Error("reload of a missing path should fail")
	}
}
