package tasks

import "context"

// Task names, matching the keys of the scheduler.tasks config section.
const (
	TaskSQLMaintenance  = "sql_maintenance"
	TaskSessionSweep    = "session_sweep"
	TaskKnowledgeReload = "knowledge_reload"
)

// ScheduledTaskFunc is the signature of a scheduled task.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks builds the task table keyed by task name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		TaskSQLMaintenance:  newSQLMaintenanceTask(deps),
		TaskSessionSweep:    newSessionSweepTask(deps),
		TaskKnowledgeReload: newKnowledgeReloadTask(deps),
	}
	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
