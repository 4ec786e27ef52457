package gamification

import "time"

// UserStats holds the cumulative usage counters for the local user.
// All counters are monotonically non-decreasing except CurrentStreak,
// which resets to 1 when a calendar gap breaks the streak.
type UserStats struct {
	TotalWordsTranscribed int   `json:"totalWordsTranscribed"`
	TotalRecordingTimeMs  int64 `json:"totalRecordingTimeMs"`
	TotalSessions         int   `json:"totalSessions"`

	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`

	// Calendar dates as YYYY-MM-DD strings in local time.
	LastActiveDate     string `json:"lastActiveDate"`
	FirstSessionDate   string `json:"firstSessionDate"`
	LastLoginBonusDate string `json:"lastLoginBonusDate"`

	FeatureUsage FeatureUsageStats `json:"featureUsage"`
}

// FeatureUsageStats counts discrete feature events. It feeds both the
// analytics surface and the achievement rule table.
type FeatureUsageStats struct {
	FormattingByModel   map[string]int `json:"formattingByModel"`
	ReformattingCount   int            `json:"reformattingCount"`
	TitleGenerations    int            `json:"titleGenerations"`
	VoiceCommandsByType map[string]int `json:"voiceCommandsByType"`
	CustomTriggerCount  int            `json:"customTriggerCount"`
	WordReplacements    int            `json:"wordReplacements"`
	TerminalPastesByApp map[string]int `json:"terminalPastesByApp"`
	HotkeysByAction     map[string]int `json:"hotkeysByAction"`
	SettingsChanges     int            `json:"settingsChanges"`
	FeatureToggles      int            `json:"featureToggles"`
	EnginesUsed         []string       `json:"enginesUsed"`

	// FirstUseDates records the YYYY-MM-DD date each feature event type
	// was first seen, keyed by event name.
	FirstUseDates map[string]string `json:"firstUseDates"`
}

// LevelSystem is the derived level tuple. CurrentXP is the source of
// truth; everything else is recomputed from it and never edited by hand.
type LevelSystem struct {
	CurrentXP           int    `json:"currentXP"`
	Level               int    `json:"level"`
	Rank                string `json:"rank"`
	RankIcon            string `json:"rankIcon"`
	XPForCurrentLevel   int    `json:"xpForCurrentLevel"`
	TotalXPForNextLevel int    `json:"totalXPForNextLevel"`
	XPToNextLevel       int    `json:"xpToNextLevel"`
}

// UnlockRecord is the immutable record of a single achievement unlock.
type UnlockRecord struct {
	UnlockedAt time.Time `json:"unlockedAt"`
	XPAwarded  int       `json:"xpAwarded"`
}

// AchievementsState maps achievement ID to its unlock record. Keys are
// never removed or overwritten outside of an administrative reset.
type AchievementsState map[string]UnlockRecord

// Metadata tracks persistence bookkeeping for the aggregate.
type Metadata struct {
	LastSaved   time.Time `json:"lastSaved"`
	TotalSaves  int       `json:"totalSaves"`
	BackupCount int       `json:"backupCount"`
}

// GamificationData is the single persisted aggregate. It is mutated only
// through the Engine orchestrators and written as one atomic update.
type GamificationData struct {
	Version      int               `json:"version"`
	Stats        UserStats         `json:"stats"`
	Level        LevelSystem       `json:"level"`
	Achievements AchievementsState `json:"achievements"`
	Meta         Metadata          `json:"metadata"`
}

// NewGamificationData returns the all-default aggregate with initialized
// maps and the current schema version.
func NewGamificationData() *GamificationData {
	d := &GamificationData{
		Version:      dataVersion,
		Level:        LevelSystemFromXP(0),
		Achievements: make(AchievementsState),
	}
	d.Stats.FeatureUsage.initMaps()
	return d
}

// initMaps ensures all map fields are non-nil after deserialization.
func (f *FeatureUsageStats) initMaps() {
	if f.FormattingByModel == nil {
		f.FormattingByModel = make(map[string]int)
	}
	if f.VoiceCommandsByType == nil {
		f.VoiceCommandsByType = make(map[string]int)
	}
	if f.TerminalPastesByApp == nil {
		f.TerminalPastesByApp = make(map[string]int)
	}
	if f.HotkeysByAction == nil {
		f.HotkeysByAction = make(map[string]int)
	}
	if f.FirstUseDates == nil {
		f.FirstUseDates = make(map[string]string)
	}
}

func (d *GamificationData) initMaps() {
	if d.Achievements == nil {
		d.Achievements = make(AchievementsState)
	}
	d.Stats.FeatureUsage.initMaps()
}

// Clone returns a deep copy of the aggregate with all maps duplicated.
func (d *GamificationData) Clone() *GamificationData {
	cp := *d
	cp.Stats = d.Stats.clone()
	cp.Achievements = make(AchievementsState, len(d.Achievements))
	for k, v := range d.Achievements {
		cp.Achievements[k] = v
	}
	return &cp
}

func (s UserStats) clone() UserStats {
	cp := s
	cp.FeatureUsage = s.FeatureUsage.clone()
	return cp
}

func (f FeatureUsageStats) clone() FeatureUsageStats {
	cp := f
	cp.FormattingByModel = copyIntMap(f.FormattingByModel)
	cp.VoiceCommandsByType = copyIntMap(f.VoiceCommandsByType)
	cp.TerminalPastesByApp = copyIntMap(f.TerminalPastesByApp)
	cp.HotkeysByAction = copyIntMap(f.HotkeysByAction)
	cp.FirstUseDates = make(map[string]string, len(f.FirstUseDates))
	for k, v := range f.FirstUseDates {
		cp.FirstUseDates[k] = v
	}
	cp.EnginesUsed = make([]string, len(f.EnginesUsed))
	copy(cp.EnginesUsed, f.EnginesUsed)
	return cp
}

func copyIntMap(m map[string]int) map[string]int {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
