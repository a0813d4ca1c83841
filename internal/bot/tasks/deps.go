// Package tasks holds the scheduled maintenance tasks of NutriBot.
package tasks

import (
	"log/slog"
	"time"

	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/database"
)

// Sessions is the part of the profile store the session sweep needs.
type Sessions interface {
	Sweep(idle time.Duration) int
	Len() int
}

// TaskDeps holds the collaborators of the scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Knowledge database.Store
	Sessions  Sessions
	Config    *config.Config
}
