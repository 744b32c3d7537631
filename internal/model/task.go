package model

import (
	"time"
)

// TaskStatus represents the current status of a task
type TaskStatus string

const (
	TaskStatusOngoing   TaskStatus = "ONGOING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Frequency represents how often a repeating task recurs
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	// FrequencyCustom is reserved; the calculator yields no occurrence for it.
	FrequencyCustom Frequency = "custom"
)

// RepeatSettings describes the recurrence pattern of a task.
type RepeatSettings struct {
	Frequency   Frequency  `json:"frequency"`
	Interval    int        `json:"interval,omitempty"`      // every N units, >= 1, default 1
	DaysOfWeek  []int      `json:"days_of_week,omitempty"`  // 0 = Sunday .. 6 = Saturday, weekly only
	DaysOfMonth []int      `json:"days_of_month,omitempty"` // 1..31, monthly only
	EndDate     *time.Time `json:"end_date,omitempty"`
	// LastCompleted is the instant the most recent instance generated from
	// this rule was marked complete. Used as the default calculation anchor.
	LastCompleted *time.Time `json:"last_completed,omitempty"`
}

// Task represents a schedulable to-do item
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`

	// DueDate is the caller-facing deadline; NextOccurrence is when the task
	// next becomes actionable. A nil NextOccurrence on a recurring task means
	// the recurrence has ended.
	DueDate        *time.Time      `json:"due_date,omitempty"`
	NextOccurrence *time.Time      `json:"next_occurrence,omitempty"`
	RepeatSettings *RepeatSettings `json:"repeat_settings,omitempty"`

	Tags []string `json:"tags,omitempty"`

	// TemplateID links a generated instance back to the task it was spawned
	// from when a recurring task is completed.
	TemplateID string `json:"template_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Recurring reports whether the task carries a repeat rule.
func (t *Task) Recurring() bool {
	return t.RepeatSettings != nil
}
