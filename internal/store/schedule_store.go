package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
)

// SQLiteScheduleStore implements ScheduleStore using SQLite
type SQLiteScheduleStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteScheduleStore creates a new SQLite-backed schedule entry store
func NewSQLiteScheduleStore(logger *zap.Logger, db *sql.DB) (*SQLiteScheduleStore, error) {
	s := &SQLiteScheduleStore{
		logger: logger,
		db:     db,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteScheduleStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schedule_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			completed INTEGER NOT NULL DEFAULT 0,
			start_at DATETIME,
			end_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_schedule_entries_user_id ON schedule_entries(user_id);
		CREATE INDEX IF NOT EXISTS idx_schedule_entries_start_at ON schedule_entries(start_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schedule_entries table: %w", err)
	}
	return nil
}

// Create implements ScheduleStore.Create
func (s *SQLiteScheduleStore) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_entries (
			id, user_id, type, title, description, completed,
			start_at, end_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		string(entry.Type),
		entry.Title,
		sql.NullString{String: entry.Description, Valid: entry.Description != ""},
		entry.Completed,
		nullTime(entry.StartAt),
		nullTime(entry.EndAt),
		entry.CreatedAt,
		nullTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule entry: %w", err)
	}
	return nil
}

// Get implements ScheduleStore.Get
func (s *SQLiteScheduleStore) Get(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	row := s.db.QueryRowContext(ctx, scheduleSelect+" WHERE id = ?", id)
	entry, err := scanScheduleEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
	}
	return entry, nil
}

// ListStartingBetween implements ScheduleStore.ListStartingBetween. The
// window is half-open: from <= start_at < to.
func (s *SQLiteScheduleStore) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, scheduleSelect+`
		WHERE start_at IS NOT NULL AND start_at >= ? AND start_at < ?
		ORDER BY start_at, id`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.ScheduleEntry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return entries, nil
}

const scheduleSelect = `
	SELECT id, user_id, type, title, description, completed,
	       start_at, end_at, created_at, updated_at
	FROM schedule_entries`

func scanScheduleEntry(row rowScanner) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	var entryType string
	var description sql.NullString
	var startAt, endAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entryType,
		&entry.Title,
		&description,
		&entry.Completed,
		&startAt,
		&endAt,
		&entry.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Type = model.ScheduleEntryType(entryType)
	if description.Valid {
		entry.Description = description.String
	}
	if startAt.Valid {
		t := startAt.Time
		entry.StartAt = &t
	}
	if endAt.Valid {
		t := endAt.Time
		entry.EndAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		entry.UpdatedAt = &t
	}

	return &entry, nil
}
