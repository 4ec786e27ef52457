package gamification

// UpdateSessionStats folds one completed recording session into the
// cumulative counters. It does not mutate its input; the returned value
// carries the updated totals. Inputs are simply additive — validation is
// the caller's concern.
func UpdateSessionStats(stats UserStats, words int, durationMs int64) UserStats {
	out := stats
	out.TotalWordsTranscribed += words
	out.TotalRecordingTimeMs += durationMs
	out.TotalSessions++
	return out
}

// DerivedStats are display metrics computed on demand from UserStats.
// Never persisted.
type DerivedStats struct {
	AverageWordsPerSession    float64 `json:"averageWordsPerSession"`
	AverageSessionDurationSec float64 `json:"averageSessionDurationSec"`
	TotalHours                float64 `json:"totalHours"`
	TotalMinutes              float64 `json:"totalMinutes"`
	WordsPerMinute            float64 `json:"wordsPerMinute"`
}

// Derived computes the derived metrics for stats. A zero session count is
// substituted with 1 to keep the averages defined; words-per-minute is 0
// when no recording time has accumulated, since the substitution trick
// would otherwise produce a nonsense rate.
func Derived(stats UserStats) DerivedStats {
	sessions := stats.TotalSessions
	if sessions == 0 {
		sessions = 1
	}

	minutes := float64(stats.TotalRecordingTimeMs) / 60000.0

	wpm := 0.0
	if stats.TotalRecordingTimeMs > 0 {
		wpm = float64(stats.TotalWordsTranscribed) / minutes
	}

	return DerivedStats{
		AverageWordsPerSession:    float64(stats.TotalWordsTranscribed) / float64(sessions),
		AverageSessionDurationSec: float64(stats.TotalRecordingTimeMs) / 1000.0 / float64(sessions),
		TotalHours:                minutes / 60.0,
		TotalMinutes:              minutes,
		WordsPerMinute:            wpm,
	}
}
