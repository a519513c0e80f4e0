package risk

import (
	"strings"
	"testing"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
)

func TestScoreBaseOnly(t *testing.T) {
	if got := Score(nil, nil, ""); got != 20 {
		t.Fatalf("Score = %d, want 20", got)
	}
}

func TestScoreSevereWeatherPlusBus(t *testing.T) {
	weather := map[string]lookup.Result{"Colombo": {RawText: "storm warning issued"}}
	if got := Score(weather, nil, "bus"); got != 60 {
		t.Fatalf("Score = %d, want 60", got)
	}
}

func TestScoreEmergencyPlusFlight(t *testing.T) {
	emergency := map[string]lookup.Result{"Kandy": {RawText: "major accident on A1"}}
	if got := Score(nil, emergency, "flight"); got != 50 {
		t.Fatalf("Score = %d, want 50", got)
	}
}

func TestScoreOnePlusThirtyPerLocation(t *testing.T) {
	// Multiple severe words in one location still add 30 once.
	weather := map[string]lookup.Result{"Colombo": {RawText: "storm with heavy rain and flood risk"}}
	if got := Score(weather, nil, ""); got != 50 {
		t.Fatalf("Score = %d, want 50", got)
	}
}

func TestScoreMultipleLocationsEachContribute(t *testing.T) {
	weather := map[string]lookup.Result{
		"Colombo": {RawText: "storm incoming"},
		"Kandy":   {RawText: "severe winds"},
	}
	emergency := map[string]lookup.Result{
		"Colombo": {RawText: "road closure reported"},
		"Kandy":   {RawText: "evacuation underway"},
	}
	// 20 + 30 + 30 + 25 + 25 + 10 = 140 → clamp 100.
	if got := Score(weather, emergency, "car"); got != 100 {
		t.Fatalf("Score = %d, want 100", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	weather := map[string]lookup.Result{"Colombo": {RawText: "STORM Warning"}}
	if got := Score(weather, nil, ""); got != 50 {
		t.Fatalf("Score = %d, want 50", got)
	}
}

func TestScoreDegradedLookupContributesNothing(t *testing.T) {
	weather := map[string]lookup.Result{"Colombo": {RawText: "lookup failed: connection refused", Degraded: true}}
	if got := Score(weather, nil, "walk"); got != 20 {
		t.Fatalf("Score = %d, want 20", got)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	cases := []struct {
		weather   string
		emergency string
		transport string
	}{
		{"", "", ""},
		{"storm", "accident", "bus"},
		{strings.Repeat("storm flood hurricane ", 10), "closure evacuation accident", "train"},
		{"sunny", "calm", "ferry"},
	}
	for _, c := range cases {
		w := map[string]lookup.Result{"A": {RawText: c.weather}, "B": {RawText: c.weather}, "C": {RawText: c.weather}}
		e := map[string]lookup.Result{"A": {RawText: c.emergency}, "B": {RawText: c.emergency}}
		got := Score(w, e, c.transport)
		if got < 0 || got > 100 {
			t.Fatalf("Score out of range: %d for %+v", got, c)
		}
	}
}

func TestLevelFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{0, LevelLow}, {39, LevelLow}, {40, LevelMedium}, {59, LevelMedium},
		{60, LevelHigh}, {79, LevelHigh}, {80, LevelCritical}, {100, LevelCritical},
	}
	for _, c := range cases {
		if got := levelFromScore(c.score); got != c.want {
			t.Fatalf("levelFromScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}
