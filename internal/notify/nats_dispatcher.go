package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	notificationStream = "NOTIFICATIONS"
	pushSubject        = "notify.push"
)

// NATSDispatcher publishes notifications to JetStream, where the push
// gateway workers pick them up for delivery.
type NATSDispatcher struct {
	logger *zap.Logger
	js     nats.JetStreamContext
}

// NewNATSDispatcher creates a dispatcher and ensures the notification
// stream exists.
func NewNATSDispatcher(js nats.JetStreamContext, logger *zap.Logger) (*NATSDispatcher, error) {
	d := &NATSDispatcher{
		logger: logger,
		js:     js,
	}

	_, err := js.StreamInfo(notificationStream)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return nil, fmt.Errorf("failed to get stream info: %w", err)
		}

		_, err = js.AddStream(&nats.StreamConfig{
			Name:     notificationStream,
			Subjects: []string{"notify.*"},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
			MaxMsgs:  -1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("Created notification stream", zap.String("name", notificationStream))
	} else {
		logger.Info("Using existing notification stream", zap.String("name", notificationStream))
	}

	return d, nil
}

// Dispatch implements Dispatcher.
func (d *NATSDispatcher) Dispatch(ctx context.Context, notification *Notification) error {
	if notification.SentAt.IsZero() {
		notification.SentAt = time.Now()
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if _, err := d.js.Publish(pushSubject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug("Dispatched notification",
		zap.String("user_id", notification.UserID),
		zap.String("entry_id", notification.EntryID))
	return nil
}
