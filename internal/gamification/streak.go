package gamification

import "time"

const dateLayout = "2006-01-02"

// TodayString formats now as a YYYY-MM-DD calendar date. This is the only
// clock-facing helper in the streak logic; everything below takes the date
// as an explicit parameter so it stays deterministic under test.
func TodayString(now time.Time) string {
	return now.Format(dateLayout)
}

// IsActiveToday reports whether stats already recorded activity for today.
func IsActiveToday(stats UserStats, today string) bool {
	return stats.LastActiveDate == today
}

// UpdateStreak advances the consecutive-day streak given activity on
// today. Transitions from LastActiveDate:
//
//	same day      — no-op, input returned unchanged
//	empty         — first ever activity, streak starts at 1
//	gap of 1 day  — streak extends
//	gap > 1 day   — streak resets to 1, longest streak untouched
//
// The gap is computed from calendar dates, so month and year boundaries
// behave correctly.
func UpdateStreak(stats UserStats, today string) UserStats {
	if stats.LastActiveDate == today {
		return stats
	}

	out := stats
	out.LastActiveDate = today

	if stats.LastActiveDate == "" {
		out.CurrentStreak = 1
		out.LongestStreak = max(1, stats.LongestStreak)
		return out
	}

	switch daysBetween(stats.LastActiveDate, today) {
	case 1:
		out.CurrentStreak = stats.CurrentStreak + 1
		out.LongestStreak = max(out.CurrentStreak, stats.LongestStreak)
	default:
		out.CurrentStreak = 1
	}
	return out
}

// daysBetween returns the number of calendar days from date a to date b.
// Unparseable dates count as an unbounded gap so a corrupt date resets
// the streak instead of extending it.
func daysBetween(a, b string) int {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	if errA != nil || errB != nil {
		return 1 << 30
	}
	return int(tb.Sub(ta).Hours() / 24)
}
