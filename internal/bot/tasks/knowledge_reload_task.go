package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nutriverse/nutribot/internal/database"
)

const knowledgeReloadTimeout = 5 * time.Minute

// newKnowledgeReloadTask re-indexes the knowledge seed path so edits to the
// reference documents reach the running bot.
func newKnowledgeReloadTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskKnowledgeReload)
	kc := deps.Config.Knowledge

	return func(ctx context.Context) error {
		if kc.SeedFile == "" {
			log.DebugContext(ctx, "No knowledge seed path configured, skipping reload")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, knowledgeReloadTimeout)
		defer cancel()

		started := time.Now()
		n, err := database.LoadPath(ctx, deps.Knowledge, kc.SeedFile, kc.ChunkSize, kc.ChunkOverlap)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.WarnContext(ctx, "Knowledge reload timed out", "path", kc.SeedFile, "stored", n)
			}
			return fmt.Errorf("knowledge reload failed: %w", err)
		}
		log.InfoContext(ctx, "Knowledge reloaded", "path", kc.SeedFile, "passages", n, "duration", time.Since(started))
		return nil
	}
}
