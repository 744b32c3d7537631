package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
)

// SQLiteTaskStore implements TaskStore using SQLite
type SQLiteTaskStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteTaskStore creates a new SQLite-backed task store
func NewSQLiteTaskStore(logger *zap.Logger, db *sql.DB) (*SQLiteTaskStore, error) {
	s := &SQLiteTaskStore{
		logger: logger,
		db:     db,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize creates the necessary tables if they don't exist
func (s *SQLiteTaskStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			due_date DATETIME,
			next_occurrence DATETIME,
			repeat_settings TEXT,
			tags TEXT,
			template_id TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize tasks table: %w", err)
	}
	return nil
}

// Create implements TaskStore.Create
func (s *SQLiteTaskStore) Create(ctx context.Context, task *model.Task) error {
	repeatStr, err := marshalRepeat(task.RepeatSettings)
	if err != nil {
		return err
	}
	tagsStr, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, title, description, status, due_date, next_occurrence,
			repeat_settings, tags, template_id, created_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Title,
		sql.NullString{String: task.Description, Valid: task.Description != ""},
		string(task.Status),
		nullTime(task.DueDate),
		nullTime(task.NextOccurrence),
		repeatStr,
		tagsStr,
		sql.NullString{String: task.TemplateID, Valid: task.TemplateID != ""},
		task.CreatedAt,
		task.UpdatedAt,
		nullTime(task.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get implements TaskStore.Get
func (s *SQLiteTaskStore) Get(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+" WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return task, nil
}

// Update implements TaskStore.Update
func (s *SQLiteTaskStore) Update(ctx context.Context, task *model.Task) error {
	repeatStr, err := marshalRepeat(task.RepeatSettings)
	if err != nil {
		return err
	}
	tagsStr, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			user_id = ?,
			title = ?,
			description = ?,
			status = ?,
			due_date = ?,
			next_occurrence = ?,
			repeat_settings = ?,
			tags = ?,
			template_id = ?,
			updated_at = ?,
			completed_at = ?
		WHERE id = ?`,
		task.UserID,
		task.Title,
		sql.NullString{String: task.Description, Valid: task.Description != ""},
		string(task.Status),
		nullTime(task.DueDate),
		nullTime(task.NextOccurrence),
		repeatStr,
		tagsStr,
		sql.NullString{String: task.TemplateID, Valid: task.TemplateID != ""},
		task.UpdatedAt,
		nullTime(task.CompletedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete implements TaskStore.Delete
func (s *SQLiteTaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListByUser implements TaskStore.ListByUser
func (s *SQLiteTaskStore) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		taskSelect+" WHERE user_id = ? ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListOverdue implements TaskStore.ListOverdue
func (s *SQLiteTaskStore) ListOverdue(ctx context.Context, now time.Time, limit int, afterID string) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, taskSelect+`
		WHERE due_date IS NOT NULL AND due_date <= ?
		  AND status = ?
		  AND id > ?
		ORDER BY id
		LIMIT ?`,
		now, string(model.TaskStatusOngoing), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// BatchUpdateStatus implements TaskStore.BatchUpdateStatus. The whole batch
// commits or rolls back as one unit.
func (s *SQLiteTaskStore) BatchUpdateStatus(ctx context.Context, ids []string, status model.TaskStatus, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > MaxBatchSize {
		return ErrBatchTooLarge
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare batch update: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, string(status), now, id); err != nil {
			return fmt.Errorf("failed to update task %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	s.logger.Info("Batch status update committed",
		zap.Int("count", len(ids)),
		zap.String("status", string(status)))
	return nil
}

const taskSelect = `
	SELECT id, user_id, title, description, status, due_date, next_occurrence,
	       repeat_settings, tags, template_id, created_at, updated_at, completed_at
	FROM tasks`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var task model.Task
	var description, repeatStr, tagsStr, templateID sql.NullString
	var status string
	var dueDate, nextOccurrence, completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&status,
		&dueDate,
		&nextOccurrence,
		&repeatStr,
		&tagsStr,
		&templateID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	if description.Valid {
		task.Description = description.String
	}
	if templateID.Valid {
		task.TemplateID = templateID.String
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if nextOccurrence.Valid {
		t := nextOccurrence.Time
		task.NextOccurrence = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if repeatStr.Valid && repeatStr.String != "" {
		var settings model.RepeatSettings
		if err := json.Unmarshal([]byte(repeatStr.String), &settings); err != nil {
			return nil, fmt.Errorf("failed to decode repeat settings: %w", err)
		}
		task.RepeatSettings = &settings
	}
	if tagsStr.Valid && tagsStr.String != "" {
		if err := json.Unmarshal([]byte(tagsStr.String), &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return tasks, nil
}

func marshalRepeat(settings *model.RepeatSettings) (sql.NullString, error) {
	if settings == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode repeat settings: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
