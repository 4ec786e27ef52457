// Package demo drives the real gamification engine with synthetic usage
// so the overlay and tray surfaces can be developed without a microphone.
package demo

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/scribeflow/backend/internal/gamification"
)

var demoModels = []string{"gpt-4o-mini", "claude-haiku", "local-llama"}

var demoCommands = []string{"undo", "new-line", "delete-that", "stop-recording"}

var demoTerminals = []string{"iterm2", "gnome-terminal", "alacritty"}

var demoEngines = []string{"whisper-local", "whisper-api", "deepgram"}

// Generator replays a plausible mix of recording sessions and feature
// events through the engine.
type Generator struct {
	engine *gamification.Engine
	rng    *rand.Rand
}

func NewGenerator(engine *gamification.Engine) *Generator {
	return &Generator{
		engine: engine,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits one synthetic event per interval until ctx is cancelled.
// Roughly every third event is a recording session; the rest exercise
// the feature counters so achievement unlocks keep arriving.
func (g *Generator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.emit()
		}
	}
}

func (g *Generator) emit() {
	if g.rng.Intn(3) == 0 {
		words := 40 + g.rng.Intn(220)
		durationMs := int64(15+g.rng.Intn(150)) * 1000
		res, err := g.engine.RecordSession(words, durationMs)
		if err != nil {
			log.Printf("demo session error: %v", err)
			return
		}
		if len(res.NewAchievements) > 0 {
			log.Printf("demo session unlocked %v", res.NewAchievements)
		}
		return
	}

	ev, meta := g.randomFeature()
	if _, err := g.engine.TrackFeatureUsage(ev, meta); err != nil {
		log.Printf("demo feature error: %v", err)
	}
}

func (g *Generator) randomFeature() (gamification.FeatureEvent, gamification.EventMeta) {
	switch g.rng.Intn(8) {
	case 0:
		return gamification.EventFormatting, gamification.EventMeta{Model: pick(g.rng, demoModels)}
	case 1:
		return gamification.EventVoiceCommand, gamification.EventMeta{CommandType: pick(g.rng, demoCommands)}
	case 2:
		return gamification.EventTerminalPaste, gamification.EventMeta{TargetApp: pick(g.rng, demoTerminals)}
	case 3:
		return gamification.EventHotkey, gamification.EventMeta{Action: "toggle-recording"}
	case 4:
		return gamification.EventWordReplacement, gamification.EventMeta{}
	case 5:
		return gamification.EventEngineUsed, gamification.EventMeta{Engine: pick(g.rng, demoEngines)}
	case 6:
		return gamification.EventTitleGeneration, gamification.EventMeta{}
	default:
		return gamification.EventSettingsChange, gamification.EventMeta{}
	}
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}
