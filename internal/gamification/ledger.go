package gamification

import (
	"sort"
	"time"
)

// UnlockOutcome reports the result of a single unlock attempt.
type UnlockOutcome struct {
	State         AchievementsState
	NewlyUnlocked bool
	XPAwarded     int
}

// IsAchievementUnlocked reports whether id has an unlock record.
func IsAchievementUnlocked(state AchievementsState, id string) bool {
	_, ok := state[id]
	return ok
}

// UnlockAchievement records an unlock for id at the given time. The first
// record is immutable: a duplicate attempt returns the original state
// unchanged with no XP, which makes replayed events safe.
func UnlockAchievement(state AchievementsState, id string, xpReward int, at time.Time) UnlockOutcome {
	if _, already := state[id]; already {
		return UnlockOutcome{State: state}
	}
	out := make(AchievementsState, len(state)+1)
	for k, v := range state {
		out[k] = v
	}
	out[id] = UnlockRecord{UnlockedAt: at, XPAwarded: xpReward}
	return UnlockOutcome{State: out, NewlyUnlocked: true, XPAwarded: xpReward}
}

// TotalAchievementXP sums the XP awarded across all recorded unlocks.
func TotalAchievementXP(state AchievementsState) int {
	total := 0
	for _, rec := range state {
		total += rec.XPAwarded
	}
	return total
}

// UnlockedAchievementIDs returns the recorded ids in sorted order.
func UnlockedAchievementIDs(state AchievementsState) []string {
	ids := make([]string, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AchievementUnlockTime returns when id was unlocked, if it was.
func AchievementUnlockTime(state AchievementsState, id string) (time.Time, bool) {
	rec, ok := state[id]
	return rec.UnlockedAt, ok
}
