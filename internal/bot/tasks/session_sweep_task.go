package tasks

import "context"

// newSessionSweepTask forgets users idle for longer than the configured
// session timeout.
func newSessionSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskSessionSweep)
	idle := deps.Config.Assistant.SessionIdleTimeout

	return func(ctx context.Context) error {
		removed := deps.Sessions.Sweep(idle)
		log.InfoContext(ctx, "Session sweep completed", "removed", removed, "remaining", deps.Sessions.Len(), "idle_timeout", idle)
		return nil
	}
}
