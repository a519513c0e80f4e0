package report

import (
	"strings"
	"testing"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/advisory"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/emergency"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

func sampleInput() Input {
	score := 80
	return Input{
		Assessment: risk.Assessment{
			Locations:          []string{"Colombo"},
			Time:               "tonight",
			TransportMode:      "bus",
			RiskScore:          &score,
			RiskScoreFinal:     70,
			RiskLevel:          risk.LevelHigh,
			Reasons:            []string{"heavy rain expected"},
			RecommendedActions: []string{"delay departure"},
			Summary:            "Storm warnings active.",
			WeatherData: map[string]lookup.Result{
				"Colombo": {RawText: "Heavy rain and storms expected overnight."},
			},
			EmergencyData: map[string]lookup.Result{
				"Colombo": {RawText: "", Degraded: true},
			},
			Metadata: risk.Metadata{
				Model:             "test-model",
				StagesExecuted:    []string{"extracting", "done"},
				SupplementalScore: 60,
			},
		},
		Advisory: advisory.Result{AdviceText: "Carry a raincoat and charge your phone."},
		Emergency: emergency.Result{Plan: emergency.Plan{
			Kind: emergency.PlanByLocationList,
			Locations: []emergency.LocationPlan{{
				Location:          "Colombo",
				EmergencyContacts: map[string]string{"police": "119"},
				NextSteps:         []string{"move to high ground"},
			}},
		}},
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	md := BuildMarkdown(sampleInput())

	for _, want := range []string{
		"# Trip Safety Report",
		"- Locations: Colombo",
		"- Transport: bus",
		"**70 / 100**",
		"**High**",
		"heavy rain expected",
		"delay departure",
		"Storm warnings active.",
		"## Weather",
		"Heavy rain and storms expected overnight.",
		"## Emergency Services",
		"Lookup unavailable",
		"## Travel Advisory",
		"Carry a raincoat",
		"## Emergency Plan",
		"| police | 119 |",
		"move to high ground",
		"| Model | test-model |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestBuildMarkdownDegradedBanner(t *testing.T) {
	in := sampleInput()
	in.Assessment.RiskScore = nil
	in.Assessment.Metadata.LLMFailed = true
	md := BuildMarkdown(in)
	if !strings.Contains(md, "> DEGRADED") {
		t.Fatal("missing degraded banner")
	}
	if !strings.Contains(md, "model score unavailable") {
		t.Fatal("missing supplemental-only line")
	}
}

func TestBuildMarkdownRawTextPlan(t *testing.T) {
	in := sampleInput()
	in.Emergency.Plan = emergency.Plan{Kind: emergency.PlanRawText, RawText: "Call local services."}
	md := BuildMarkdown(in)
	if !strings.Contains(md, "Call local services.") {
		t.Fatal("raw-text plan not rendered")
	}
}

func TestBuildMarkdownNoLocations(t *testing.T) {
	in := sampleInput()
	in.Assessment.Locations = nil
	in.Assessment.WeatherData = nil
	in.Assessment.EmergencyData = nil
	md := BuildMarkdown(in)
	if !strings.Contains(md, "- Locations: unknown") {
		t.Fatal("missing unknown fallback")
	}
	if strings.Contains(md, "## Weather") {
		t.Fatal("weather section should be omitted")
	}
}

func TestBuildHTML(t *testing.T) {
	htmlDoc, err := BuildHTML("# Trip Safety Report\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("BuildHTML: %v", err)
	}
	if !strings.Contains(htmlDoc, "<h1") || !strings.Contains(htmlDoc, "<table>") {
		t.Fatalf("html = %s", htmlDoc)
	}
}
