package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
)

// SQLiteUserStore implements UserStore using SQLite
type SQLiteUserStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteUserStore creates a new SQLite-backed user store
func NewSQLiteUserStore(logger *zap.Logger, db *sql.DB) (*SQLiteUserStore, error) {
	s := &SQLiteUserStore{
		logger: logger,
		db:     db,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteUserStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			push_token TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize users table: %w", err)
	}
	return nil
}

// Save implements UserStore.Save. Device tokens get re-registered on every
// app launch, so an upsert keeps the latest one.
func (s *SQLiteUserStore) Save(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, push_token)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			push_token = excluded.push_token`,
		user.ID,
		sql.NullString{String: user.DisplayName, Valid: user.DisplayName != ""},
		sql.NullString{String: user.PushToken, Valid: user.PushToken != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Get implements UserStore.Get
func (s *SQLiteUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	var displayName, pushToken sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, display_name, push_token FROM users WHERE id = ?", id).
		Scan(&user.ID, &displayName, &pushToken)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if displayName.Valid {
		user.DisplayName = displayName.String
	}
	if pushToken.Valid {
		user.PushToken = pushToken.String
	}
	return &user, nil
}
