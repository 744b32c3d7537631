package store

import "errors"

var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrScheduleEntryNotFound is returned when a schedule entry is not found
	ErrScheduleEntryNotFound = errors.New("schedule entry not found")

	// ErrBatchTooLarge is returned when a batch write exceeds the store limit
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
