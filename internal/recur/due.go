package recur

import (
	"time"

	"github.com/todopop/backend/internal/model"
)

// IsDueNow reports whether the task should currently be visible in a due
// list. The comparison is at day granularity: a task due at 23:59 today is
// due for the whole day.
func IsDueNow(task model.Task, now time.Time) bool {
	if !task.Recurring() {
		return true
	}
	if task.Status == model.TaskStatusCompleted && task.NextOccurrence == nil {
		// Recurrence exhausted; nothing left to show.
		return false
	}
	if task.NextOccurrence == nil {
		return true
	}
	return !StartOfDay(*task.NextOccurrence).After(StartOfDay(now))
}
