package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/todopop/backend/internal/testutil"
)

func TestRecordRun(t *testing.T) {
	r := NewStatsReporter(nil, time.Minute, zaptest.NewLogger(t))

	r.RecordRun("overdue-sweep", 12, 80*time.Millisecond, nil)
	r.RecordRun("overdue-sweep", 3, 40*time.Millisecond, nil)
	r.RecordRun("overdue-sweep", 0, 10*time.Millisecond, errors.New("db locked"))
	r.RecordRun("upcoming-notify", 2, 5*time.Millisecond, nil)

	stats := r.GetStats()
	require.Len(t, stats, 2)

	sweep := stats["overdue-sweep"]
	assert.EqualValues(t, 3, sweep.Runs)
	assert.EqualValues(t, 1, sweep.Failures)
	assert.EqualValues(t, 15, sweep.Processed)
	require.NotNil(t, sweep.LastRunAt)

	notify := stats["upcoming-notify"]
	assert.EqualValues(t, 1, notify.Runs)
	assert.Zero(t, notify.Failures)
}

func TestStatsReporterPublishes(t *testing.T) {
	js, cleanup := testutil.SetupJetStream(t)
	defer cleanup()

	r := NewStatsReporter(js, 200*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	r.RecordRun("overdue-sweep", 5, 30*time.Millisecond, nil)

	messages, err := testutil.ConsumeMessages(js, "metrics.system", 5*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, messages)

	var snapshot struct {
		Timestamp time.Time  `json:"timestamp"`
		Jobs      []JobStats `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(messages[0], &snapshot))
	assert.False(t, snapshot.Timestamp.IsZero())
	require.Len(t, snapshot.Jobs, 1)
	assert.Equal(t, "overdue-sweep", snapshot.Jobs[0].Name)
	assert.EqualValues(t, 5, snapshot.Jobs[0].Processed)
}
