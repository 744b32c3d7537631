package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/todopop/backend/internal/notify"
	"github.com/todopop/backend/internal/store"
)

// UpcomingNotifier pushes a heads-up for schedule entries starting in the
// current minute. Each run covers the half-open window
// [truncate(now), truncate(now)+1m), so back-to-back runs never overlap.
type UpcomingNotifier struct {
	logger     *zap.Logger
	schedules  store.ScheduleStore
	users      store.UserStore
	dispatcher notify.Dispatcher
}

// NewUpcomingNotifier creates a new upcoming-schedule notifier
func NewUpcomingNotifier(logger *zap.Logger, schedules store.ScheduleStore, users store.UserStore, dispatcher notify.Dispatcher) *UpcomingNotifier {
	return &UpcomingNotifier{
		logger:     logger,
		schedules:  schedules,
		users:      users,
		dispatcher: dispatcher,
	}
}

// Run notifies for entries starting in now's minute and returns how many
// notifications went out. A bad entry (missing user, no device token,
// delivery failure) is skipped without affecting the rest.
func (n *UpcomingNotifier) Run(ctx context.Context, now time.Time) (int, error) {
	from := now.Truncate(time.Minute)
	to := from.Add(time.Minute)

	entries, err := n.schedules.ListStartingBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range entries {
		if entry.Completed || entry.StartAt == nil {
			continue
		}

		user, err := n.users.Get(ctx, entry.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				n.logger.Debug("Skipping entry for unknown user",
					zap.String("entry_id", entry.ID),
					zap.String("user_id", entry.UserID))
			} else {
				n.logger.Warn("Failed to load user for entry",
					zap.String("entry_id", entry.ID),
					zap.Error(err))
			}
			continue
		}
		if user.PushToken == "" {
			continue
		}

		notification := &notify.Notification{
			UserID:  user.ID,
			Token:   user.PushToken,
			Title:   entry.Title,
			Body:    fmt.Sprintf("Starts at %s", notify.FormatStartTime(*entry.StartAt)),
			EntryID: entry.ID,
		}
		if err := n.dispatcher.Dispatch(ctx, notification); err != nil {
			n.logger.Error("Failed to dispatch notification",
				zap.String("entry_id", entry.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		n.logger.Info("Sent upcoming-schedule notifications",
			zap.Int("sent", sent),
			zap.Time("window_start", from))
	}
	return sent, nil
}
