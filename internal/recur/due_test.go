package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/todopop/backend/internal/model"
)

func TestIsDueNow(t *testing.T) {
	repeat := &model.RepeatSettings{Frequency: model.FrequencyDaily, Interval: 1}
	now := time.Date(2024, time.March, 10, 0, 1, 0, 0, time.UTC)

	tests := []struct {
		name string
		task model.Task
		want bool
	}{
		{
			name: "Non-Recurring Always Visible",
			task: model.Task{Status: model.TaskStatusOngoing},
			want: true,
		},
		{
			name: "Exhausted Recurrence Hidden",
			task: model.Task{
				Status:         model.TaskStatusCompleted,
				RepeatSettings: repeat,
			},
			want: false,
		},
		{
			name: "Recurring Without Occurrence Still Visible While Ongoing",
			task: model.Task{
				Status:         model.TaskStatusOngoing,
				RepeatSettings: repeat,
			},
			want: true,
		},
		{
			name: "Due Later Today Counts All Day",
			task: model.Task{
				Status:         model.TaskStatusOngoing,
				RepeatSettings: repeat,
				NextOccurrence: timePtr(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)),
			},
			want: true,
		},
		{
			name: "Past Occurrence Visible",
			task: model.Task{
				Status:         model.TaskStatusOngoing,
				RepeatSettings: repeat,
				NextOccurrence: timePtr(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)),
			},
			want: true,
		},
		{
			name: "Future Occurrence Hidden",
			task: model.Task{
				Status:         model.TaskStatusOngoing,
				RepeatSettings: repeat,
				NextOccurrence: timePtr(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDueNow(tt.task, now))
		})
	}
}
