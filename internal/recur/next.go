package recur

import (
	"sort"
	"time"

	"github.com/todopop/backend/internal/model"
)

// Anchor bundles the candidate reference instants for a next-occurrence
// calculation. Resolution priority: Reference, then the rule's
// LastCompleted, then Existing minus one interval, then Now.
type Anchor struct {
	// Reference is an explicit caller-supplied reference date, e.g. a newly
	// set due date. When present, a base that already falls on an allowed
	// day is treated as the start of its own cycle.
	Reference *time.Time

	// Existing is the task's currently stored next occurrence. It is
	// back-shifted by one interval so the calculation lands on the cycle
	// after it.
	Existing *time.Time

	// Now is the last-resort anchor. Callers pass it explicitly; the
	// calculator never reads the ambient clock.
	Now time.Time
}

// Next computes the next qualifying instant for the rule, or nil when the
// recurrence has ended or cannot produce one (unsupported frequency, invalid
// anchor, end date passed). nil is a normal terminal outcome, not an error.
func Next(settings model.RepeatSettings, anchor Anchor) *time.Time {
	interval := settings.Interval
	if interval < 1 {
		interval = 1
	}

	base, hasReference := resolveBase(settings, anchor, interval)
	if base.IsZero() {
		return nil
	}

	var next time.Time
	switch settings.Frequency {
	case model.FrequencyDaily:
		next = base.AddDate(0, 0, interval)

	case model.FrequencyWeekly:
		days := normalizeDays(settings.DaysOfWeek, 0, 6)
		switch {
		case len(days) == 0:
			next = base.AddDate(0, 0, interval*7)
		case interval > 1 && hasReference && containsInt(days, int(base.Weekday())):
			// A reference date already on an allowed weekday starts its own
			// cycle: the next occurrence is a full interval away.
			next = base.AddDate(0, 0, interval*7)
		default:
			next = nextWeekday(base, days).AddDate(0, 0, (interval-1)*7)
		}

	case model.FrequencyMonthly:
		days := normalizeDays(settings.DaysOfMonth, 1, 31)
		switch {
		case len(days) == 0:
			next = AddMonthsClamped(base, interval)
		case interval > 1 && hasReference && containsInt(days, base.Day()):
			next = AddMonthsClamped(base, interval)
		default:
			next = AddMonthsClamped(nextMonthDay(base, days), interval-1)
		}

	default:
		// custom and unknown frequencies produce no occurrence
		return nil
	}

	if settings.EndDate != nil && next.After(*settings.EndDate) {
		return nil
	}
	return &next
}

func resolveBase(settings model.RepeatSettings, anchor Anchor, interval int) (time.Time, bool) {
	switch {
	case anchor.Reference != nil:
		return *anchor.Reference, true
	case settings.LastCompleted != nil:
		return *settings.LastCompleted, false
	case anchor.Existing != nil:
		switch settings.Frequency {
		case model.FrequencyWeekly:
			return anchor.Existing.AddDate(0, 0, -interval*7), false
		case model.FrequencyMonthly:
			return AddMonthsClamped(*anchor.Existing, -interval), false
		default:
			return anchor.Existing.AddDate(0, 0, -interval), false
		}
	default:
		return anchor.Now, false
	}
}

// nextWeekday returns the first instant strictly after base whose weekday is
// in days, keeping base's clock time. Scanning day by day gives the
// ascending-weekday tie-break within each week.
func nextWeekday(base time.Time, days []int) time.Time {
	d := base.AddDate(0, 0, 1)
	for i := 0; i < 6; i++ {
		if containsInt(days, int(d.Weekday())) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// nextMonthDay returns the first valid calendar day strictly after base
// drawn from days. Within base's own month the clock time is preserved;
// when the scan rolls into a later month it restarts at midnight. Days that
// do not exist in a month (e.g. 31 in February) are skipped, not clamped.
func nextMonthDay(base time.Time, days []int) time.Time {
	y, m, _ := base.Date()
	for _, day := range days {
		if day > base.Day() && day <= DaysInMonth(y, m) {
			return time.Date(y, m, day,
				base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
		}
	}

	cursor := time.Date(y, m, 1, 0, 0, 0, 0, base.Location()).AddDate(0, 1, 0)
	for {
		cy, cm, _ := cursor.Date()
		for _, day := range days {
			if day <= DaysInMonth(cy, cm) {
				return time.Date(cy, cm, day, 0, 0, 0, 0, base.Location())
			}
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
}

// normalizeDays filters to [min, max], dedupes and sorts ascending.
func normalizeDays(days []int, min, max int) []int {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < min || d > max || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
