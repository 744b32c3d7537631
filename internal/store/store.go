package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/todopop/backend/internal/model"
)

// MaxBatchSize is the document store's atomic batch write limit.
const MaxBatchSize = 500

// TaskStore defines the task persistence surface consumed by the engine.
type TaskStore interface {
	// Create stores a new task
	Create(ctx context.Context, task *model.Task) error

	// Get retrieves a task by id, ErrTaskNotFound when missing
	Get(ctx context.Context, id string) (*model.Task, error)

	// Update overwrites the stored task
	Update(ctx context.Context, task *model.Task) error

	// Delete removes a task by id
	Delete(ctx context.Context, id string) error

	// ListByUser retrieves a user's tasks, newest first
	ListByUser(ctx context.Context, userID string) ([]*model.Task, error)

	// ListOverdue retrieves ongoing tasks with due_date <= now, paginated by
	// an id cursor (pass the last id of the previous page, "" for the first)
	ListOverdue(ctx context.Context, now time.Time, limit int, afterID string) ([]*model.Task, error)

	// BatchUpdateStatus moves all given tasks to status in one atomic write
	BatchUpdateStatus(ctx context.Context, ids []string, status model.TaskStatus, now time.Time) error
}

// ScheduleStore defines the schedule-entry persistence surface.
type ScheduleStore interface {
	// Create stores a new schedule entry
	Create(ctx context.Context, entry *model.ScheduleEntry) error

	// Get retrieves an entry by id, ErrScheduleEntryNotFound when missing
	Get(ctx context.Context, id string) (*model.ScheduleEntry, error)

	// ListStartingBetween retrieves entries with from <= start_at < to,
	// across all users, ordered by start time
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.ScheduleEntry, error)
}

// UserStore defines the identity lookup surface.
type UserStore interface {
	// Save creates or replaces a user record
	Save(ctx context.Context, user *model.User) error

	// Get retrieves a user by id, ErrUserNotFound when missing
	Get(ctx context.Context, id string) (*model.User, error)
}

// Open opens the SQLite database and verifies the connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
