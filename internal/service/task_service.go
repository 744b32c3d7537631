package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
	"github.com/todopop/backend/internal/recur"
	"github.com/todopop/backend/internal/store"
)

// TaskService owns the task lifecycle. Completing a repeating task spawns
// its next instance; the completed row stays behind as history.
type TaskService struct {
	logger *zap.Logger
	tasks  store.TaskStore
}

// NewTaskService creates a new task service
func NewTaskService(logger *zap.Logger, tasks store.TaskStore) *TaskService {
	return &TaskService{
		logger: logger,
		tasks:  tasks,
	}
}

// CreateTaskInput carries the fields a client supplies for a new task.
type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time
	Repeat      *model.RepeatSettings
	Tags        []string
}

// UpdateTaskInput carries a partial update. Nil pointer fields are left
// unchanged; the Clear flags reset their optional counterparts.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Repeat       *model.RepeatSettings
	ClearRepeat  bool
	Tags         []string
}

// Create stores a new ongoing task. For repeating tasks the first
// occurrence is computed from the due date.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.TaskStatusOngoing,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.Repeat != nil {
		settings := *input.Repeat
		task.RepeatSettings = &settings
		task.NextOccurrence = recur.Next(settings, recur.Anchor{
			Reference: input.DueDate,
			Now:       now,
		})
	} else {
		task.NextOccurrence = input.DueDate
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Created task",
		zap.String("id", task.ID),
		zap.String("user_id", task.UserID),
		zap.Bool("recurring", task.Recurring()))
	return task, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.Get(ctx, id)
}

// Update applies a partial update and recomputes the next occurrence when
// either the repeat rule or the due date changed.
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}

	scheduleChanged := false
	if input.ClearDueDate {
		task.DueDate = nil
		scheduleChanged = true
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
		scheduleChanged = true
	}
	if input.ClearRepeat {
		task.RepeatSettings = nil
		scheduleChanged = true
	} else if input.Repeat != nil {
		settings := *input.Repeat
		task.RepeatSettings = &settings
		scheduleChanged = true
	}

	if scheduleChanged {
		if task.RepeatSettings != nil {
			task.NextOccurrence = recur.Next(*task.RepeatSettings, recur.Anchor{
				Reference: task.DueDate,
				Existing:  task.NextOccurrence,
				Now:       time.Now(),
			})
		} else {
			task.NextOccurrence = task.DueDate
		}
	}

	task.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks a task as done. A repeating task also gets a fresh
// ongoing instance for its next occurrence; the returned successor is nil
// when the rule produced no further instant or the task does not repeat.
func (s *TaskService) Complete(ctx context.Context, id string, completedAt time.Time) (*model.Task, *model.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if task.Status.Terminal() {
		return nil, nil, fmt.Errorf("task %s is already %s", id, task.Status)
	}

	task.Status = model.TaskStatusCompleted
	task.CompletedAt = &completedAt
	task.UpdatedAt = completedAt

	var successor *model.Task
	if task.Recurring() {
		settings := *task.RepeatSettings
		settings.LastCompleted = &completedAt
		task.RepeatSettings = &settings
		// The completed row is history; any future instance lives on the
		// successor.
		task.NextOccurrence = nil

		next := recur.Next(settings, recur.Anchor{Now: completedAt})
		if next != nil {
			templateID := task.TemplateID
			if templateID == "" {
				templateID = task.ID
			}
			successor = &model.Task{
				ID:             uuid.New().String(),
				UserID:         task.UserID,
				Title:          task.Title,
				Description:    task.Description,
				Status:         model.TaskStatusOngoing,
				DueDate:        next,
				NextOccurrence: next,
				RepeatSettings: &settings,
				Tags:           task.Tags,
				TemplateID:     templateID,
				CreatedAt:      completedAt,
				UpdatedAt:      completedAt,
			}
		}
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, nil, err
	}
	if successor != nil {
		if err := s.tasks.Create(ctx, successor); err != nil {
			return nil, nil, fmt.Errorf("failed to create successor task: %w", err)
		}
		s.logger.Info("Spawned successor task",
			zap.String("completed_id", task.ID),
			zap.String("successor_id", successor.ID),
			zap.Timep("next_occurrence", successor.NextOccurrence))
	}

	return task, successor, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// ListVisible returns the user's tasks that should appear on today's list.
func (s *TaskService) ListVisible(ctx context.Context, userID string, now time.Time) ([]*model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Task, 0, len(tasks))
	for _, task := range tasks {
		if recur.IsDueNow(*task, now) {
			visible = append(visible, task)
		}
	}
	return visible, nil
}
