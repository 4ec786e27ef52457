package gamification

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned when the shell reports an event type the
// dispatch table does not recognize.
var ErrUnknownEvent = errors.New("unknown feature event")

// FeatureEvent identifies one discrete feature-usage event reported by
// the desktop shell.
type FeatureEvent string

const (
	EventFormatting      FeatureEvent = "formatting"
	EventReformatting    FeatureEvent = "reformatting"
	EventTitleGeneration FeatureEvent = "title_generation"
	EventVoiceCommand    FeatureEvent = "voice_command"
	EventCustomTrigger   FeatureEvent = "custom_trigger"
	EventWordReplacement FeatureEvent = "word_replacement"
	EventTerminalPaste   FeatureEvent = "terminal_paste"
	EventHotkey          FeatureEvent = "hotkey"
	EventSettingsChange  FeatureEvent = "settings_change"
	EventFeatureToggle   FeatureEvent = "feature_toggle"
	EventEngineUsed      FeatureEvent = "engine_used"
)

// EventMeta carries the optional qualifier for an event. Only the field
// matching the event type is read; absent qualifiers fall back to
// "unknown" so counters stay keyed.
type EventMeta struct {
	Model       string `json:"model,omitempty"`
	CommandType string `json:"commandType,omitempty"`
	TargetApp   string `json:"targetApp,omitempty"`
	Action      string `json:"action,omitempty"`
	Engine      string `json:"engine,omitempty"`
}

// applyFeatureEvent folds one event into the feature counters. Each event
// type maps to exactly one mutation. The first occurrence of each event
// type stamps FirstUseDates with today. Unknown event types are an error.
func applyFeatureEvent(fu FeatureUsageStats, ev FeatureEvent, meta EventMeta, today string) (FeatureUsageStats, error) {
	out := fu.clone()

	switch ev {
	case EventFormatting:
		out.FormattingByModel[orUnknown(meta.Model)]++
	case EventReformatting:
		out.ReformattingCount++
	case EventTitleGeneration:
		out.TitleGenerations++
	case EventVoiceCommand:
		out.VoiceCommandsByType[orUnknown(meta.CommandType)]++
	case EventCustomTrigger:
		out.CustomTriggerCount++
	case EventWordReplacement:
		out.WordReplacements++
	case EventTerminalPaste:
		out.TerminalPastesByApp[orUnknown(meta.TargetApp)]++
	case EventHotkey:
		out.HotkeysByAction[orUnknown(meta.Action)]++
	case EventSettingsChange:
		out.SettingsChanges++
	case EventFeatureToggle:
		out.FeatureToggles++
	case EventEngineUsed:
		out.EnginesUsed = appendUnique(out.EnginesUsed, orUnknown(meta.Engine))
	default:
		return fu, fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
	}

	if _, seen := out.FirstUseDates[string(ev)]; !seen {
		out.FirstUseDates[string(ev)] = today
	}
	return out, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
