package gamification

import (
	"fmt"
	"sync"
	"time"
)

// AchievementCallback is invoked once per newly unlocked achievement,
// after the aggregate has been persisted.
type AchievementCallback func(a Achievement)

// ProgressCallback is invoked once per successfully persisted update with
// the XP delta and resulting level tuple.
type ProgressCallback func(xpGained int, level LevelSystem, leveledUp bool)

// SessionResult is returned by RecordSession.
type SessionResult struct {
	XPGained        int      `json:"xpGained"`
	NewAchievements []string `json:"newAchievements"`
	LeveledUp       bool     `json:"leveledUp"`
	OldLevel        int      `json:"oldLevel"`
	NewLevel        int      `json:"newLevel"`
}

// DailyBonusResult is returned by CheckDailyLoginBonus.
type DailyBonusResult struct {
	BonusAwarded    bool     `json:"bonusAwarded"`
	XPGained        int      `json:"xpGained"`
	NewAchievements []string `json:"newAchievements"`
	CurrentStreak   int      `json:"currentStreak"`
}

// Engine is the single entry point for gamification updates. Every
// operation is one serialized load-transform-save cycle over the
// persisted aggregate; the mutex guarantees recorder invocations never
// interleave their read and write. All calculation is delegated to the
// pure functions in this package.
type Engine struct {
	mu   sync.Mutex
	repo Repository
	now  func() time.Time

	onAchievement AchievementCallback
	onProgress    ProgressCallback
}

// NewEngine creates an Engine backed by repo, using the system clock.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// OnAchievement registers the unlock callback. Must be set before events
// start flowing.
func (e *Engine) OnAchievement(cb AchievementCallback) {
	e.onAchievement = cb
}

// OnProgress registers the progress callback. Must be set before events
// start flowing.
func (e *Engine) OnProgress(cb ProgressCallback) {
	e.onProgress = cb
}

// RecordSession folds one completed recording session into the aggregate:
// stats, streak, session XP, achievement check and unlock, final level,
// one persisted write. A session with zero words or duration still earns
// the fixed session bonus.
//
// Level-based achievements are evaluated against a provisional level
// computed before achievement XP is summed; the final level is recomputed
// afterwards. An unlock reachable only through other achievements' XP in
// the same call is deferred to the next event, which keeps a single event
// from cascading.
func (e *Engine) RecordSession(words int, durationMs int64) (SessionResult, error) {
	e.mu.Lock()
	d, err := e.repo.Load()
	if err != nil {
		e.mu.Unlock()
		return SessionResult{}, fmt.Errorf("record session: %w", err)
	}

	today := TodayString(e.now())

	stats := UpdateSessionStats(d.Stats, words, durationMs)
	if stats.FirstSessionDate == "" {
		stats.FirstSessionDate = today
	}
	if !IsActiveToday(stats, today) {
		stats = UpdateStreak(stats, today)
	}

	sessionXP := SessionXP(words, durationMs)
	oldLevel := d.Level.Level
	newXP := d.Level.CurrentXP + sessionXP
	provisional := LevelFromXP(newXP)

	newIDs := CheckAchievements(stats, provisional, d.Achievements)
	achievements, achievementXP, unlocked := e.unlockAll(d.Achievements, newIDs)

	finalLevel := LevelSystemFromXP(newXP + achievementXP)

	d.Stats = stats
	d.Level = finalLevel
	d.Achievements = achievements
	if err := e.repo.Save(d); err != nil {
		e.mu.Unlock()
		return SessionResult{}, fmt.Errorf("record session: %w", err)
	}
	e.mu.Unlock()

	result := SessionResult{
		XPGained:        sessionXP + achievementXP,
		NewAchievements: newIDs,
		LeveledUp:       finalLevel.Level > oldLevel,
		OldLevel:        oldLevel,
		NewLevel:        finalLevel.Level,
	}
	e.notify(result.XPGained, finalLevel, result.LeveledUp, unlocked)
	return result, nil
}

// TrackFeatureUsage folds one discrete feature event into the aggregate
// and runs the same check-unlock-persist pipeline as RecordSession, minus
// session XP and streak handling. Only achievement XP is awarded. It
// returns the ids of any newly qualifying achievements.
func (e *Engine) TrackFeatureUsage(ev FeatureEvent, meta EventMeta) ([]string, error) {
	e.mu.Lock()
	d, err := e.repo.Load()
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("track feature usage: %w", err)
	}

	today := TodayString(e.now())
	fu, err := applyFeatureEvent(d.Stats.FeatureUsage, ev, meta, today)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	stats := d.Stats
	stats.FeatureUsage = fu

	oldLevel := d.Level.Level
	newIDs := CheckAchievements(stats, d.Level.Level, d.Achievements)
	achievements, achievementXP, unlocked := e.unlockAll(d.Achievements, newIDs)

	finalLevel := LevelSystemFromXP(d.Level.CurrentXP + achievementXP)

	d.Stats = stats
	d.Level = finalLevel
	d.Achievements = achievements
	if err := e.repo.Save(d); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("track feature usage: %w", err)
	}
	e.mu.Unlock()

	e.notify(achievementXP, finalLevel, finalLevel.Level > oldLevel, unlocked)
	return newIDs, nil
}

// CheckDailyLoginBonus awards the daily login XP once per calendar day.
// The first call of a day also counts as streak activity; a repeat call
// reports no award and writes nothing.
func (e *Engine) CheckDailyLoginBonus() (DailyBonusResult, error) {
	e.mu.Lock()
	d, err := e.repo.Load()
	if err != nil {
		e.mu.Unlock()
		return DailyBonusResult{}, fmt.Errorf("daily login bonus: %w", err)
	}

	today := TodayString(e.now())
	if d.Stats.LastLoginBonusDate == today {
		streak := d.Stats.CurrentStreak
		e.mu.Unlock()
		return DailyBonusResult{NewAchievements: []string{}, CurrentStreak: streak}, nil
	}

	stats := d.Stats
	stats.LastLoginBonusDate = today
	if !IsActiveToday(stats, today) {
		stats = UpdateStreak(stats, today)
	}

	oldLevel := d.Level.Level
	newXP := d.Level.CurrentXP + XPDailyBonus
	provisional := LevelFromXP(newXP)

	newIDs := CheckAchievements(stats, provisional, d.Achievements)
	achievements, achievementXP, unlocked := e.unlockAll(d.Achievements, newIDs)

	finalLevel := LevelSystemFromXP(newXP + achievementXP)

	d.Stats = stats
	d.Level = finalLevel
	d.Achievements = achievements
	if err := e.repo.Save(d); err != nil {
		e.mu.Unlock()
		return DailyBonusResult{}, fmt.Errorf("daily login bonus: %w", err)
	}
	e.mu.Unlock()

	result := DailyBonusResult{
		BonusAwarded:    true,
		XPGained:        XPDailyBonus + achievementXP,
		NewAchievements: newIDs,
		CurrentStreak:   stats.CurrentStreak,
	}
	e.notify(result.XPGained, finalLevel, finalLevel.Level > oldLevel, unlocked)
	return result, nil
}

// Unlock is the direct unlock path, used by admin tooling and promotional
// unlocks. The award is idempotent: a second call for the same id changes
// nothing and reports false.
func (e *Engine) Unlock(id string, xpReward int) (bool, error) {
	e.mu.Lock()
	d, err := e.repo.Load()
	if err != nil {
		e.mu.Unlock()
		return false, fmt.Errorf("unlock achievement: %w", err)
	}

	outcome := UnlockAchievement(d.Achievements, id, xpReward, e.now())
	if !outcome.NewlyUnlocked {
		e.mu.Unlock()
		return false, nil
	}

	oldLevel := d.Level.Level
	finalLevel := LevelSystemFromXP(d.Level.CurrentXP + outcome.XPAwarded)

	d.Achievements = outcome.State
	d.Level = finalLevel
	if err := e.repo.Save(d); err != nil {
		e.mu.Unlock()
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	e.mu.Unlock()

	var unlocked []Achievement
	if a, ok := AchievementByID(id); ok {
		unlocked = append(unlocked, a)
	}
	e.notify(outcome.XPAwarded, finalLevel, finalLevel.Level > oldLevel, unlocked)
	return true, nil
}

// Reset restores the all-default aggregate. This is the only operation
// that clears achievement records.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.repo.Save(NewGamificationData()); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// Data returns a deep-copied snapshot of the current aggregate.
func (e *Engine) Data() (*GamificationData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.repo.Load()
	if err != nil {
		return nil, fmt.Errorf("gamification data: %w", err)
	}
	return d.Clone(), nil
}

// unlockAll records every id in catalog order, resolving XP rewards from
// the catalog. Ids without a catalog entry are skipped; the ledger keeps
// the overall pipeline idempotent regardless of repeated matcher output.
func (e *Engine) unlockAll(state AchievementsState, ids []string) (AchievementsState, int, []Achievement) {
	total := 0
	var unlocked []Achievement
	for _, id := range ids {
		a, ok := AchievementByID(id)
		if !ok {
			continue
		}
		outcome := UnlockAchievement(state, id, a.XPReward, e.now())
		if !outcome.NewlyUnlocked {
			continue
		}
		state = outcome.State
		total += outcome.XPAwarded
		unlocked = append(unlocked, a)
	}
	return state, total, unlocked
}

// notify fires the registered callbacks outside the engine lock, only
// after the write has completed: once per unlocked achievement, once for
// the aggregate change.
func (e *Engine) notify(xpGained int, level LevelSystem, leveledUp bool, unlocked []Achievement) {
	if e.onAchievement != nil {
		for _, a := range unlocked {
			e.onAchievement(a)
		}
	}
	if e.onProgress != nil {
		e.onProgress(xpGained, level, leveledUp)
	}
}
