package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 29, DaysInMonth(2024, time.February)) // leap year
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "Plain Addition",
			start:  date(2024, time.January, 15),
			months: 1,
			want:   date(2024, time.February, 15),
		},
		{
			name:   "Clamps Into February",
			start:  date(2024, time.January, 31),
			months: 1,
			want:   date(2024, time.February, 29),
		},
		{
			name:   "Crosses Year Boundary",
			start:  date(2024, time.November, 30),
			months: 3,
			want:   date(2025, time.February, 28),
		},
		{
			name:   "Negative Months",
			start:  date(2024, time.March, 31),
			months: -1,
			want:   date(2024, time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsClamped(tt.start, tt.months))
		})
	}

	t.Run("Preserves Clock Time", func(t *testing.T) {
		start := time.Date(2024, time.January, 31, 9, 30, 15, 0, time.UTC)
		got := AddMonthsClamped(start, 1)
		assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 15, 0, time.UTC), got)
	})
}

func TestStartOfDayAndSameDay(t *testing.T) {
	late := time.Date(2024, time.March, 10, 23, 59, 59, 0, time.UTC)
	early := time.Date(2024, time.March, 10, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, date(2024, time.March, 10), StartOfDay(late))
	assert.True(t, SameDay(late, early))
	assert.False(t, SameDay(late, late.Add(time.Second)))
}
