package bot

import (
	"context"
	"slices"
	"testing"

	"github.com/nutriverse/nutribot/internal/bot/tasks"
	"github.com/nutriverse/nutribot/internal/config"
)

func TestSchedulerStartsEnabledTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":      {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":     {Enabled: false, Schedule: "0 0 3 * * *"},
		"bad_schedule": {Enabled: true, Schedule: "not a cron"},
		"unregistered": {Enabled: true, Schedule: "0 0 3 * * *"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled":      noop,
		"disabled":     noop,
		"bad_schedule": noop,
	}

	s, err := NewScheduler(nil, cfg, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if got := s.Jobs(); !slices.Equal(got, []string{"enabled"}) {
		t.Errorf("Jobs() = %v, want [enabled]", got)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, config.SchedulerConfig{}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() before Start() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
