package ws

import (
	"github.com/scribeflow/backend/internal/gamification"
)

type MessageType string

const (
	MsgSnapshot            MessageType = "snapshot"
	MsgProgress            MessageType = "progress"
	MsgAchievementUnlocked MessageType = "achievement_unlocked"
	MsgReset               MessageType = "reset"
	MsgError               MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// SnapshotPayload carries the full aggregate, sent on connect and after
// administrative resets.
type SnapshotPayload struct {
	Data *gamification.GamificationData `json:"data"`
}

// ProgressPayload is sent once per persisted update.
type ProgressPayload struct {
	XPGained  int                      `json:"xpGained"`
	Level     gamification.LevelSystem `json:"level"`
	LeveledUp bool                     `json:"leveledUp"`
}

// AchievementUnlockedPayload is sent once per newly unlocked achievement,
// after the aggregate write completed.
type AchievementUnlockedPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	XPReward    int    `json:"xpReward"`
	Category    string `json:"category"`
}
