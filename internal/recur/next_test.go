package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todopop/backend/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestNextDaily(t *testing.T) {
	anchor := date(2024, time.January, 1)

	tests := []struct {
		name     string
		interval int
		want     time.Time
	}{
		{"Every Day", 1, date(2024, time.January, 2)},
		{"Every Third Day", 3, date(2024, time.January, 4)},
		{"Zero Interval Defaults To One", 0, date(2024, time.January, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.RepeatSettings{
				Frequency:     model.FrequencyDaily,
				Interval:      tt.interval,
				LastCompleted: timePtr(anchor),
			}
			got := Next(settings, Anchor{Now: anchor})
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNextWeekly(t *testing.T) {
	// 2024-01-01 is a Monday.
	monday := date(2024, time.January, 1)

	t.Run("No Explicit Days", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyWeekly,
			Interval:      2,
			LastCompleted: timePtr(monday),
		}
		got := Next(settings, Anchor{Now: monday})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 15), *got)
	})

	t.Run("Reference On Match Day Moves Within Week", func(t *testing.T) {
		// Anchor is a caller reference and itself a match day; the result is
		// the next remaining match day in the same week, not the anchor.
		settings := model.RepeatSettings{
			Frequency:  model.FrequencyWeekly,
			Interval:   1,
			DaysOfWeek: []int{1, 3, 5},
		}
		got := Next(settings, Anchor{Reference: timePtr(monday), Now: monday})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 3), *got) // Wednesday
	})

	t.Run("Reference On Match Day With Interval Jumps Full Cycle", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:  model.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []int{1, 3, 5},
		}
		got := Next(settings, Anchor{Reference: timePtr(monday), Now: monday})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 15), *got) // Monday two weeks on
	})

	t.Run("Reference Off Match Day Scans Forward", func(t *testing.T) {
		// 2024-01-02 is a Tuesday.
		tuesday := date(2024, time.January, 2)
		settings := model.RepeatSettings{
			Frequency:  model.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []int{1, 3, 5},
		}
		got := Next(settings, Anchor{Reference: timePtr(tuesday), Now: tuesday})
		require.NotNil(t, got)
		// First match Wednesday Jan 3, then (interval-1) weeks on.
		assert.Equal(t, date(2024, time.January, 10), *got)
	})

	t.Run("Completion Anchor Excludes Anchor Day", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyWeekly,
			Interval:      1,
			DaysOfWeek:    []int{1},
			LastCompleted: timePtr(monday),
		}
		got := Next(settings, Anchor{Now: monday})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 8), *got) // next Monday
	})

	t.Run("Weekdays Evaluated Ascending", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyWeekly,
			Interval:      1,
			DaysOfWeek:    []int{5, 3}, // out of order on purpose
			LastCompleted: timePtr(monday),
		}
		got := Next(settings, Anchor{Now: monday})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 3), *got) // Wednesday before Friday
	})
}

func TestNextMonthly(t *testing.T) {
	t.Run("Plain Interval Preserves Day", func(t *testing.T) {
		anchor := date(2024, time.January, 15)
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyMonthly,
			Interval:      2,
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.March, 15), *got)
	})

	t.Run("Plain Interval Clamps Short Months", func(t *testing.T) {
		anchor := date(2024, time.January, 31)
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyMonthly,
			Interval:      1,
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.February, 29), *got)
	})

	t.Run("Explicit Day Skips Months Without It", func(t *testing.T) {
		anchor := date(2024, time.January, 31)
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyMonthly,
			DaysOfMonth:   []int{31},
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		// February has no 31st; no clamping to the 28th/29th.
		assert.Equal(t, date(2024, time.March, 31), *got)
	})

	t.Run("Explicit Days Match Within Month", func(t *testing.T) {
		anchor := date(2024, time.January, 5)
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyMonthly,
			DaysOfMonth:   []int{1, 10, 20},
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 10), *got)
	})

	t.Run("Reference On Match Day With Interval Jumps Full Cycle", func(t *testing.T) {
		anchor := date(2024, time.January, 10)
		settings := model.RepeatSettings{
			Frequency:   model.FrequencyMonthly,
			Interval:    3,
			DaysOfMonth: []int{10},
		}
		got := Next(settings, Anchor{Reference: timePtr(anchor), Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.April, 10), *got)
	})

	t.Run("Rolls To First Day Set Entry Of Next Month", func(t *testing.T) {
		anchor := date(2024, time.January, 25)
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyMonthly,
			DaysOfMonth:   []int{5, 20},
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.February, 5), *got)
	})
}

func TestNextAnchorResolution(t *testing.T) {
	now := date(2024, time.June, 1)

	t.Run("Reference Wins Over LastCompleted", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyDaily,
			Interval:      1,
			LastCompleted: timePtr(date(2024, time.May, 1)),
		}
		ref := date(2024, time.May, 20)
		got := Next(settings, Anchor{Reference: &ref, Now: now})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.May, 21), *got)
	})

	t.Run("Existing Occurrence Is Back-Shifted One Interval", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency: model.FrequencyWeekly,
			Interval:  2,
		}
		existing := date(2024, time.May, 20)
		got := Next(settings, Anchor{Existing: &existing, Now: now})
		require.NotNil(t, got)
		// Base is existing minus 2 weeks, so the next cycle lands back on it.
		assert.Equal(t, existing, *got)
	})

	t.Run("Falls Back To Now", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency: model.FrequencyDaily,
			Interval:  1,
		}
		got := Next(settings, Anchor{Now: now})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.June, 2), *got)
	})

	t.Run("Invalid Anchor Yields Nil", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency: model.FrequencyDaily,
			Interval:  1,
		}
		got := Next(settings, Anchor{})
		assert.Nil(t, got)
	})
}

func TestNextTermination(t *testing.T) {
	anchor := date(2024, time.January, 1)

	t.Run("End Date Respected", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyDaily,
			Interval:      7,
			EndDate:       timePtr(date(2024, time.January, 5)),
			LastCompleted: timePtr(anchor),
		}
		assert.Nil(t, Next(settings, Anchor{Now: anchor}))
	})

	t.Run("End Date On Result Still Occurs", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyDaily,
			Interval:      4,
			EndDate:       timePtr(date(2024, time.January, 5)),
			LastCompleted: timePtr(anchor),
		}
		got := Next(settings, Anchor{Now: anchor})
		require.NotNil(t, got)
		assert.Equal(t, date(2024, time.January, 5), *got)
	})

	t.Run("Custom Frequency Unsupported", func(t *testing.T) {
		settings := model.RepeatSettings{
			Frequency:     model.FrequencyCustom,
			Interval:      2,
			DaysOfWeek:    []int{1, 2},
			LastCompleted: timePtr(anchor),
		}
		assert.Nil(t, Next(settings, Anchor{Now: anchor}))
	})

	t.Run("Missing Frequency Yields Nil", func(t *testing.T) {
		settings := model.RepeatSettings{LastCompleted: timePtr(anchor)}
		assert.Nil(t, Next(settings, Anchor{Now: anchor}))
	})
}

func TestNextProperties(t *testing.T) {
	anchors := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 29),
		date(2024, time.December, 31),
	}
	rules := []model.RepeatSettings{
		{Frequency: model.FrequencyDaily, Interval: 1},
		{Frequency: model.FrequencyDaily, Interval: 5},
		{Frequency: model.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0, 6}},
		{Frequency: model.FrequencyWeekly, Interval: 3},
		{Frequency: model.FrequencyMonthly, Interval: 1, DaysOfMonth: []int{31}},
		{Frequency: model.FrequencyMonthly, Interval: 2},
	}

	for _, anchor := range anchors {
		for _, rule := range rules {
			settings := rule
			settings.LastCompleted = timePtr(anchor)

			first := Next(settings, Anchor{Now: anchor})
			second := Next(settings, Anchor{Now: anchor})
			require.NotNil(t, first)
			require.NotNil(t, second)

			// Deterministic for fixed inputs.
			assert.Equal(t, *first, *second)
			// Strictly after the anchor.
			assert.True(t, first.After(anchor),
				"next %v not after anchor %v for %+v", *first, anchor, rule)
		}
	}
}
