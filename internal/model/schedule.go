package model

import (
	"time"
)

// ScheduleEntryType distinguishes calendar entry kinds
type ScheduleEntryType string

const (
	ScheduleEntryEvent ScheduleEntryType = "EVENT"
	ScheduleEntryTask  ScheduleEntryType = "TASK"
	ScheduleEntryHabit ScheduleEntryType = "HABIT"
)

// ScheduleEntry represents a calendar event owned by a user. Consumed
// read-only by the upcoming-schedule notifier.
type ScheduleEntry struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        ScheduleEntryType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Completed   bool              `json:"completed"`
	StartAt     *time.Time        `json:"start_at,omitempty"`
	EndAt       *time.Time        `json:"end_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}
