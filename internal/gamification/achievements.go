package gamification

// Category groups related achievements in the UI.
type Category string

const (
	CategoryMilestone     Category = "milestone"
	CategoryWords         Category = "words"
	CategoryStreak        Category = "streak"
	CategorySpeed         Category = "speed"
	CategoryTime          Category = "time"
	CategoryLevel         Category = "level"
	CategoryAIMastery     Category = "ai-mastery"
	CategoryCustomization Category = "customization"
	CategoryEfficiency    Category = "efficiency"
	CategoryIntegration   Category = "integration"
	CategoryExploration   Category = "exploration"
)

// Achievement is one entry of the read-only catalog. The rule table below
// mirrors these ids; the catalog itself carries only display data and the
// XP reward.
type Achievement struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	XPReward    int      `json:"xpReward"`
	Category    Category `json:"category"`
	Order       int      `json:"order"`
}

// ruleInput is the snapshot a metric selector reads. Level is the
// provisional level supplied by the orchestrator, not necessarily the
// final one for the current event.
type ruleInput struct {
	Stats   UserStats
	Derived DerivedStats
	Level   int
}

// rule is one row of the declarative threshold table: an achievement
// qualifies when Metric(input) >= Threshold. Adding an achievement means
// adding a catalog entry and one row here.
type rule struct {
	ID        string
	Metric    func(in ruleInput) float64
	Threshold float64
}

// CheckAchievements returns the ids of all achievements whose rule now
// passes and which are not yet recorded in state, in catalog order. It
// never mutates anything; repeated calls may return the same id until the
// ledger records the unlock.
func CheckAchievements(stats UserStats, level int, state AchievementsState) []string {
	in := ruleInput{Stats: stats, Derived: Derived(stats), Level: level}
	ids := []string{}
	for _, r := range ruleTable {
		if _, already := state[r.ID]; already {
			continue
		}
		if r.Metric(in) >= r.Threshold {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Catalog returns a copy of the full achievement catalog in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// AchievementByID looks up a catalog entry.
func AchievementByID(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Metric selectors shared by several rules.

func sessions(in ruleInput) float64 { return float64(in.Stats.TotalSessions) }
func words(in ruleInput) float64    { return float64(in.Stats.TotalWordsTranscribed) }

// longestStreak deliberately reads the longest streak rather than the
// current one, so a broken-then-rebuilt streak still counts.
func longestStreak(in ruleInput) float64 { return float64(in.Stats.LongestStreak) }

func wpm(in ruleInput) float64   { return in.Derived.WordsPerMinute }
func hours(in ruleInput) float64 { return in.Derived.TotalHours }
func level(in ruleInput) float64 { return float64(in.Level) }

// formattingOps counts AI formatting operations across every model plus
// reformat requests.
func formattingOps(in ruleInput) float64 {
	total := in.Stats.FeatureUsage.ReformattingCount
	for _, n := range in.Stats.FeatureUsage.FormattingByModel {
		total += n
	}
	return float64(total)
}

func formattingModels(in ruleInput) float64 {
	return float64(len(in.Stats.FeatureUsage.FormattingByModel))
}

func titleGenerations(in ruleInput) float64 {
	return float64(in.Stats.FeatureUsage.TitleGenerations)
}

func voiceCommands(in ruleInput) float64 {
	total := 0
	for _, n := range in.Stats.FeatureUsage.VoiceCommandsByType {
		total += n
	}
	return float64(total)
}

func customTriggers(in ruleInput) float64 {
	return float64(in.Stats.FeatureUsage.CustomTriggerCount)
}

func wordReplacements(in ruleInput) float64 {
	return float64(in.Stats.FeatureUsage.WordReplacements)
}

func terminalPastes(in ruleInput) float64 {
	total := 0
	for _, n := range in.Stats.FeatureUsage.TerminalPastesByApp {
		total += n
	}
	return float64(total)
}

func terminalApps(in ruleInput) float64 {
	return float64(len(in.Stats.FeatureUsage.TerminalPastesByApp))
}

func hotkeyUses(in ruleInput) float64 {
	total := 0
	for _, n := range in.Stats.FeatureUsage.HotkeysByAction {
		total += n
	}
	return float64(total)
}

func settingsChanges(in ruleInput) float64 {
	return float64(in.Stats.FeatureUsage.SettingsChanges)
}

func featureToggles(in ruleInput) float64 {
	return float64(in.Stats.FeatureUsage.FeatureToggles)
}

func enginesUsed(in ruleInput) float64 {
	return float64(len(in.Stats.FeatureUsage.EnginesUsed))
}

// ruleTable holds one row per achievement, in catalog order.
var ruleTable = []rule{

	// ── Milestones (session count) ─────────────────────────────────────
	{ID: "first-steps", Metric: sessions, Threshold: 1},
	{ID: "dedicated-scribe", Metric: sessions, Threshold: 10},
	{ID: "century-club", Metric: sessions, Threshold: 100},
	{ID: "session-legend", Metric: sessions, Threshold: 500},

	// ── Words ──────────────────────────────────────────────────────────
	{ID: "wordsmith", Metric: words, Threshold: 1000},
	{ID: "storyteller", Metric: words, Threshold: 10000},
	{ID: "novelist", Metric: words, Threshold: 50000},
	{ID: "epic-author", Metric: words, Threshold: 100000},
	{ID: "word-legend", Metric: words, Threshold: 500000},

	// ── Streaks (longest, not current) ─────────────────────────────────
	{ID: "warming-up", Metric: longestStreak, Threshold: 3},
	{ID: "week-warrior", Metric: longestStreak, Threshold: 7},
	{ID: "monthly-habit", Metric: longestStreak, Threshold: 30},
	{ID: "streak-centurion", Metric: longestStreak, Threshold: 100},

	// ── Speed (derived words per minute) ───────────────────────────────
	{ID: "quick-tongue", Metric: wpm, Threshold: 150},
	{ID: "rapid-fire", Metric: wpm, Threshold: 200},
	{ID: "supersonic", Metric: wpm, Threshold: 250},

	// ── Time (derived total hours) ─────────────────────────────────────
	{ID: "first-hour", Metric: hours, Threshold: 1},
	{ID: "time-traveler", Metric: hours, Threshold: 10},
	{ID: "voice-veteran", Metric: hours, Threshold: 50},
	{ID: "hundred-hours", Metric: hours, Threshold: 100},

	// ── Level ──────────────────────────────────────────────────────────
	{ID: "rising-star", Metric: level, Threshold: 10},
	{ID: "seasoned-pro", Metric: level, Threshold: 25},
	{ID: "elite-scribe", Metric: level, Threshold: 50},
	{ID: "transcendent", Metric: level, Threshold: 100},

	// ── AI mastery ─────────────────────────────────────────────────────
	{ID: "first-polish", Metric: formattingOps, Threshold: 1},
	{ID: "polish-pro", Metric: formattingOps, Threshold: 50},
	{ID: "model-explorer", Metric: formattingModels, Threshold: 3},
	{ID: "headline-writer", Metric: titleGenerations, Threshold: 10},

	// ── Customization ──────────────────────────────────────────────────
	{ID: "personalizer", Metric: wordReplacements, Threshold: 1},
	{ID: "replacement-pro", Metric: wordReplacements, Threshold: 50},
	{ID: "tinkerer", Metric: settingsChanges, Threshold: 25},
	{ID: "switchboard", Metric: featureToggles, Threshold: 10},

	// ── Efficiency ─────────────────────────────────────────────────────
	{ID: "command-rookie", Metric: voiceCommands, Threshold: 1},
	{ID: "command-pro", Metric: voiceCommands, Threshold: 50},
	{ID: "trigger-smith", Metric: customTriggers, Threshold: 5},

	// ── Integration ────────────────────────────────────────────────────
	{ID: "terminal-initiate", Metric: terminalPastes, Threshold: 1},
	{ID: "terminal-addict", Metric: terminalPastes, Threshold: 100},
	{ID: "multi-terminal", Metric: terminalApps, Threshold: 3},
	{ID: "hotkey-hero", Metric: hotkeyUses, Threshold: 100},

	// ── Exploration ────────────────────────────────────────────────────
	{ID: "engine-curious", Metric: enginesUsed, Threshold: 2},
	{ID: "engine-collector", Metric: enginesUsed, Threshold: 3},
}

// catalog is the authoritative display catalog. Order values match slice
// position so UI surfaces can sort without re-deriving it.
var catalog = buildCatalog()

func buildCatalog() []Achievement {
	list := []Achievement{

		// Milestones
		{ID: "first-steps", Name: "First Steps", Description: "Complete your first recording session", Icon: "👣", XPReward: 50, Category: CategoryMilestone},
		{ID: "dedicated-scribe", Name: "Dedicated Scribe", Description: "Complete 10 recording sessions", Icon: "✍️", XPReward: 100, Category: CategoryMilestone},
		{ID: "century-club", Name: "Century Club", Description: "Complete 100 recording sessions", Icon: "💯", XPReward: 250, Category: CategoryMilestone},
		{ID: "session-legend", Name: "Session Legend", Description: "Complete 500 recording sessions", Icon: "🏛️", XPReward: 500, Category: CategoryMilestone},

		// Words
		{ID: "wordsmith", Name: "Wordsmith", Description: "Transcribe 1,000 words", Icon: "🔤", XPReward: 50, Category: CategoryWords},
		{ID: "storyteller", Name: "Storyteller", Description: "Transcribe 10,000 words", Icon: "📖", XPReward: 100, Category: CategoryWords},
		{ID: "novelist", Name: "Novelist", Description: "Transcribe 50,000 words", Icon: "📚", XPReward: 250, Category: CategoryWords},
		{ID: "epic-author", Name: "Epic Author", Description: "Transcribe 100,000 words", Icon: "🖋️", XPReward: 500, Category: CategoryWords},
		{ID: "word-legend", Name: "Word Legend", Description: "Transcribe 500,000 words", Icon: "🌌", XPReward: 1000, Category: CategoryWords},

		// Streaks
		{ID: "warming-up", Name: "Warming Up", Description: "Reach a 3-day streak", Icon: "🔥", XPReward: 50, Category: CategoryStreak},
		{ID: "week-warrior", Name: "Week Warrior", Description: "Reach a 7-day streak", Icon: "🗓️", XPReward: 100, Category: CategoryStreak},
		{ID: "monthly-habit", Name: "Monthly Habit", Description: "Reach a 30-day streak", Icon: "📆", XPReward: 250, Category: CategoryStreak},
		{ID: "streak-centurion", Name: "Streak Centurion", Description: "Reach a 100-day streak", Icon: "⚔️", XPReward: 1000, Category: CategoryStreak},

		// Speed
		{ID: "quick-tongue", Name: "Quick Tongue", Description: "Average 150 words per minute", Icon: "💨", XPReward: 100, Category: CategorySpeed},
		{ID: "rapid-fire", Name: "Rapid Fire", Description: "Average 200 words per minute", Icon: "🚀", XPReward: 250, Category: CategorySpeed},
		{ID: "supersonic", Name: "Supersonic", Description: "Average 250 words per minute", Icon: "⚡", XPReward: 500, Category: CategorySpeed},

		// Time
		{ID: "first-hour", Name: "First Hour", Description: "Record for 1 hour total", Icon: "⏰", XPReward: 50, Category: CategoryTime},
		{ID: "time-traveler", Name: "Time Traveler", Description: "Record for 10 hours total", Icon: "⏳", XPReward: 100, Category: CategoryTime},
		{ID: "voice-veteran", Name: "Voice Veteran", Description: "Record for 50 hours total", Icon: "🎤", XPReward: 250, Category: CategoryTime},
		{ID: "hundred-hours", Name: "Hundred Hours", Description: "Record for 100 hours total", Icon: "🕰️", XPReward: 500, Category: CategoryTime},

		// Level
		{ID: "rising-star", Name: "Rising Star", Description: "Reach level 10", Icon: "⭐", XPReward: 100, Category: CategoryLevel},
		{ID: "seasoned-pro", Name: "Seasoned Pro", Description: "Reach level 25", Icon: "🌠", XPReward: 250, Category: CategoryLevel},
		{ID: "elite-scribe", Name: "Elite Scribe", Description: "Reach level 50", Icon: "💫", XPReward: 500, Category: CategoryLevel},
		{ID: "transcendent", Name: "Transcendent", Description: "Reach level 100", Icon: "🌟", XPReward: 1000, Category: CategoryLevel},

		// AI mastery
		{ID: "first-polish", Name: "First Polish", Description: "Format a transcript with AI", Icon: "✨", XPReward: 50, Category: CategoryAIMastery},
		{ID: "polish-pro", Name: "Polish Pro", Description: "Run 50 AI formatting operations", Icon: "🪄", XPReward: 150, Category: CategoryAIMastery},
		{ID: "model-explorer", Name: "Model Explorer", Description: "Format with 3 different AI models", Icon: "🧭", XPReward: 150, Category: CategoryAIMastery},
		{ID: "headline-writer", Name: "Headline Writer", Description: "Generate 10 titles", Icon: "🗞️", XPReward: 100, Category: CategoryAIMastery},

		// Customization
		{ID: "personalizer", Name: "Personalizer", Description: "Create your first word replacement", Icon: "🧩", XPReward: 50, Category: CategoryCustomization},
		{ID: "replacement-pro", Name: "Replacement Pro", Description: "Apply 50 word replacements", Icon: "🔄", XPReward: 150, Category: CategoryCustomization},
		{ID: "tinkerer", Name: "Tinkerer", Description: "Change settings 25 times", Icon: "🔧", XPReward: 100, Category: CategoryCustomization},
		{ID: "switchboard", Name: "Switchboard", Description: "Toggle 10 features", Icon: "🎛️", XPReward: 100, Category: CategoryCustomization},

		// Efficiency
		{ID: "command-rookie", Name: "Command Rookie", Description: "Use your first voice command", Icon: "🗣️", XPReward: 50, Category: CategoryEfficiency},
		{ID: "command-pro", Name: "Command Pro", Description: "Use 50 voice commands", Icon: "📢", XPReward: 150, Category: CategoryEfficiency},
		{ID: "trigger-smith", Name: "Trigger Smith", Description: "Fire 5 custom triggers", Icon: "🎚️", XPReward: 100, Category: CategoryEfficiency},

		// Integration
		{ID: "terminal-initiate", Name: "Terminal Initiate", Description: "Paste into a terminal for the first time", Icon: "💻", XPReward: 50, Category: CategoryIntegration},
		{ID: "terminal-addict", Name: "Terminal Addict", Description: "Paste into terminals 100 times", Icon: "🖥️", XPReward: 250, Category: CategoryIntegration},
		{ID: "multi-terminal", Name: "Multi-Terminal", Description: "Paste into 3 different terminal apps", Icon: "🪟", XPReward: 150, Category: CategoryIntegration},
		{ID: "hotkey-hero", Name: "Hotkey Hero", Description: "Use hotkeys 100 times", Icon: "⌨️", XPReward: 150, Category: CategoryIntegration},

		// Exploration
		{ID: "engine-curious", Name: "Engine Curious", Description: "Try 2 transcription engines", Icon: "🔍", XPReward: 100, Category: CategoryExploration},
		{ID: "engine-collector", Name: "Engine Collector", Description: "Try 3 transcription engines", Icon: "🛰️", XPReward: 250, Category: CategoryExploration},
	}

	for i := range list {
		list[i].Order = i
	}
	return list
}
