package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
	"github.com/todopop/backend/internal/store"
)

const (
	defaultSweepPageSize = 100
	defaultBatchDelay    = 100 * time.Millisecond
)

// OverdueSweeper fails ongoing tasks whose due date has passed. It walks
// the overdue set in cursor-ordered pages so a large backlog never loads
// into memory at once.
type OverdueSweeper struct {
	logger     *zap.Logger
	tasks      store.TaskStore
	pageSize   int
	batchDelay time.Duration
}

// NewOverdueSweeper creates a new overdue sweeper. A non-positive pageSize
// falls back to the default.
func NewOverdueSweeper(logger *zap.Logger, tasks store.TaskStore, pageSize int) *OverdueSweeper {
	if pageSize <= 0 {
		pageSize = defaultSweepPageSize
	}
	return &OverdueSweeper{
		logger:     logger,
		tasks:      tasks,
		pageSize:   pageSize,
		batchDelay: defaultBatchDelay,
	}
}

// Run sweeps all tasks overdue as of now and returns how many it failed.
// Marking a task FAILED removes it from the overdue query, so a rerun or a
// crash-restart picks up only what is left.
func (s *OverdueSweeper) Run(ctx context.Context, now time.Time) (int, error) {
	started := time.Now()
	total := 0
	afterID := ""

	for {
		page, err := s.tasks.ListOverdue(ctx, now, s.pageSize, afterID)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}

		ids := make([]string, 0, len(page))
		for _, task := range page {
			ids = append(ids, task.ID)
		}
		if err := s.tasks.BatchUpdateStatus(ctx, ids, model.TaskStatusFailed, now); err != nil {
			return total, err
		}
		total += len(ids)
		afterID = page[len(page)-1].ID

		if len(page) < s.pageSize {
			break
		}
		// Breathe between pages so the sweep doesn't monopolize the store.
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(s.batchDelay):
		}
	}

	if total > 0 {
		s.logger.Info("Overdue sweep finished",
			zap.Int("failed", total),
			zap.Duration("took", time.Since(started)))
	}
	return total, nil
}
