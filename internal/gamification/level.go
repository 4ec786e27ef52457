package gamification

import "math"

// XP curve parameters. Advancing from level n to n+1 costs
// floor(baseXP * growthRate^(n-1)) XP: 100, 150, 225, 337, ...
const (
	baseXP     = 100
	growthRate = 1.5
)

// XP award amounts for recorded activity.
const (
	XPPerWord      = 1
	XPPerMinute    = 10
	XPSessionBonus = 25
	XPDailyBonus   = 50
)

// Rank is a cosmetic title band derived from level.
type Rank struct {
	MinLevel int    `json:"minLevel"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
}

// rankTable is ordered by ascending MinLevel; RankForLevel picks the
// highest entry the level qualifies for.
var rankTable = []Rank{
	{MinLevel: 1, Name: "Initiate", Icon: "🌱"},
	{MinLevel: 5, Name: "Apprentice", Icon: "📜"},
	{MinLevel: 10, Name: "Adept", Icon: "🎙️"},
	{MinLevel: 20, Name: "Specialist", Icon: "⚡"},
	{MinLevel: 30, Name: "Expert", Icon: "🎯"},
	{MinLevel: 40, Name: "Virtuoso", Icon: "🎼"},
	{MinLevel: 50, Name: "Master", Icon: "🏆"},
	{MinLevel: 65, Name: "Grandmaster", Icon: "👑"},
	{MinLevel: 80, Name: "Luminary", Icon: "🌟"},
	{MinLevel: 100, Name: "Singularity", Icon: "🧠"},
}

// levelUpCost returns the XP needed to advance from level to level+1.
func levelUpCost(level int) int {
	return int(math.Floor(baseXP * math.Pow(growthRate, float64(level-1))))
}

// XPForLevel returns the cumulative XP required to reach level. Level 1
// costs nothing.
func XPForLevel(level int) int {
	total := 0
	for n := 1; n < level; n++ {
		total += levelUpCost(n)
	}
	return total
}

// LevelFromXP returns the highest level fully paid for by xp. Negative XP
// clamps to level 1.
func LevelFromXP(xp int) int {
	level := 1
	total := 0
	for {
		cost := levelUpCost(level)
		if xp < total+cost {
			return level
		}
		total += cost
		level++
	}
}

// RankForLevel returns the rank band the level falls in.
func RankForLevel(level int) Rank {
	rank := rankTable[0]
	for _, r := range rankTable {
		if level >= r.MinLevel {
			rank = r
		}
	}
	return rank
}

// LevelSystemFromXP derives the full level tuple from xp. The result is a
// pure function of xp; XPToNextLevel is strictly positive for any finite
// input because LevelFromXP stops one level short of overrun.
func LevelSystemFromXP(xp int) LevelSystem {
	level := LevelFromXP(xp)
	rank := RankForLevel(level)
	current := XPForLevel(level)
	next := current + levelUpCost(level)
	return LevelSystem{
		CurrentXP:           xp,
		Level:               level,
		Rank:                rank.Name,
		RankIcon:            rank.Icon,
		XPForCurrentLevel:   current,
		TotalXPForNextLevel: next,
		XPToNextLevel:       next - xp,
	}
}

// SessionXP returns the base XP earned by a completed recording session,
// before any achievement awards.
func SessionXP(words int, durationMs int64) int {
	return words*XPPerWord + int(durationMs/60000)*XPPerMinute + XPSessionBonus
}
