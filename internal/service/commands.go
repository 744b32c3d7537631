package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/todopop/backend/internal/model"
)

const taskStream = "TASKS"

// CreateTaskCommand is the wire form of a task creation request.
type CreateTaskCommand struct {
	UserID      string                `json:"user_id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	Repeat      *model.RepeatSettings `json:"repeat,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
}

// CompleteTaskCommand is the wire form of a task completion request.
type CompleteTaskCommand struct {
	ID          string     `json:"id"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DeleteTaskCommand is the wire form of a task deletion request.
type DeleteTaskCommand struct {
	ID string `json:"id"`
}

// CommandConsumer applies task commands published by the mobile clients'
// sync gateway. Commands arrive over JetStream so a consumer restart
// replays anything missed.
type CommandConsumer struct {
	logger *zap.Logger
	js     nats.JetStreamContext
	tasks  *TaskService
}

// NewCommandConsumer creates a new task command consumer
func NewCommandConsumer(js nats.JetStreamContext, logger *zap.Logger, tasks *TaskService) *CommandConsumer {
	return &CommandConsumer{
		logger: logger,
		js:     js,
		tasks:  tasks,
	}
}

// Start ensures the command stream exists and subscribes to the task
// command subjects with durable consumers.
func (c *CommandConsumer) Start(ctx context.Context) error {
	_, err := c.js.StreamInfo(taskStream)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     taskStream,
			Subjects: []string{"task.*"},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
			MaxMsgs:  -1,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		c.logger.Info("Created task command stream", zap.String("name", taskStream))
	} else {
		c.logger.Info("Using existing task command stream", zap.String("name", taskStream))
	}

	if _, err := c.js.Subscribe("task.create", func(msg *nats.Msg) {
		var cmd CreateTaskCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.logger.Error("Failed to unmarshal create command", zap.Error(err))
			return
		}
		if _, err := c.tasks.Create(ctx, CreateTaskInput{
			UserID:      cmd.UserID,
			Title:       cmd.Title,
			Description: cmd.Description,
			DueDate:     cmd.DueDate,
			Repeat:      cmd.Repeat,
			Tags:        cmd.Tags,
		}); err != nil {
			c.logger.Error("Failed to create task", zap.Error(err))
		}
	}, nats.Durable("task-create-consumer")); err != nil {
		return fmt.Errorf("failed to subscribe to task.create: %w", err)
	}

	if _, err := c.js.Subscribe("task.complete", func(msg *nats.Msg) {
		var cmd CompleteTaskCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.logger.Error("Failed to unmarshal complete command", zap.Error(err))
			return
		}
		completedAt := time.Now()
		if cmd.CompletedAt != nil {
			completedAt = *cmd.CompletedAt
		}
		if _, _, err := c.tasks.Complete(ctx, cmd.ID, completedAt); err != nil {
			c.logger.Error("Failed to complete task",
				zap.String("id", cmd.ID),
				zap.Error(err))
		}
	}, nats.Durable("task-complete-consumer")); err != nil {
		return fmt.Errorf("failed to subscribe to task.complete: %w", err)
	}

	if _, err := c.js.Subscribe("task.delete", func(msg *nats.Msg) {
		var cmd DeleteTaskCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.logger.Error("Failed to unmarshal delete command", zap.Error(err))
			return
		}
		if err := c.tasks.Delete(ctx, cmd.ID); err != nil {
			c.logger.Error("Failed to delete task",
				zap.String("id", cmd.ID),
				zap.Error(err))
		}
	}, nats.Durable("task-delete-consumer")); err != nil {
		return fmt.Errorf("failed to subscribe to task.delete: %w", err)
	}

	return nil
}
