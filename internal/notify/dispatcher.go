package notify

import (
	"context"
	"time"
)

// Notification is a single push message bound for one device.
type Notification struct {
	UserID  string    `json:"user_id"`
	Token   string    `json:"token"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	EntryID string    `json:"entry_id,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Dispatcher delivers notifications to the push gateway.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification *Notification) error
}

const startTimeLayout = "2006.01.02(Mon) PM 03:04"

// FormatStartTime renders a schedule start time the way the mobile client
// displays it, e.g. "2024.07.01(Mon) AM 09:00".
func FormatStartTime(t time.Time) string {
	return t.Format(startTimeLayout)
}
