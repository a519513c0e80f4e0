package risk

import (
	"strings"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
)

const baseScore = 20

// severeWeatherWords trigger at most one +30 per location.
var severeWeatherWords = []string{"storm", "heavy rain", "flood", "cyclone", "hurricane", "severe", "snow"}

// emergencyTriggers add +25 per location that mentions any of them.
var emergencyTriggers = []string{"accident", "closure", "evacuat"}

// Score is the deterministic supplemental risk heuristic: base 20, +30 per
// location with severe weather wording, +25 per location with emergency
// trigger wording, +10 for ground transport, +5 for air, clamped to [0,100].
func Score(weather, emergency map[string]lookup.Result, transport string) int {
	score := baseScore
	for _, wd := range weather {
		raw := strings.ToLower(wd.RawText)
		for _, w := range severeWeatherWords {
			if strings.Contains(raw, w) {
				score += 30
				break
			}
		}
	}
	for _, ed := range emergency {
		raw := strings.ToLower(ed.RawText)
		for _, w := range emergencyTriggers {
			if strings.Contains(raw, w) {
				score += 25
				break
			}
		}
	}
	switch transport {
	case "bus", "train", "motorbike", "car":
		score += 10
	case "flight", "plane":
		score += 5
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// levelFromScore fills the risk_level enum when the model did not supply one.
func levelFromScore(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}
