package emergency

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/llm"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

type fakeCaller struct {
	reply string
	err   error
	seen  string
}

func (f *fakeCaller) Generate(_ context.Context, _, prompt string) (string, error) {
	f.seen = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCaller) ModelName() string { return "test-model" }

func TestPlanByLocationList(t *testing.T) {
	reply := `{"locations": [{"location": "Colombo", "emergency_contacts": {"police": "119"}, "next_steps": ["call 119", "move to shelter"]}]}`
	a := NewAgent(&fakeCaller{reply: reply})

	got := a.Plan(context.Background(), risk.Assessment{Locations: []string{"Colombo"}})
	if got.Agent != AgentName {
		t.Fatalf("agent = %q", got.Agent)
	}
	if got.Plan.Kind != PlanByLocationList {
		t.Fatalf("kind = %s", got.Plan.Kind)
	}
	lp := got.Plan.Locations[0]
	if lp.Location != "Colombo" || lp.EmergencyContacts["police"] != "119" || len(lp.NextSteps) != 2 {
		t.Fatalf("location plan = %+v", lp)
	}
	if got.Raw != reply {
		t.Fatalf("raw reply not kept: %q", got.Raw)
	}
}

func TestPlanByLocationMap(t *testing.T) {
	reply := `{"Colombo": {"emergency_contacts": {"ambulance": "1990"}, "next_steps": ["stay indoors"]}, "Kandy": {"next_steps": ["avoid A1"]}}`
	a := NewAgent(&fakeCaller{reply: reply})

	got := a.Plan(context.Background(), risk.Assessment{})
	if got.Plan.Kind != PlanByLocationMap {
		t.Fatalf("kind = %s", got.Plan.Kind)
	}
	if got.Plan.ByLocation["Colombo"].EmergencyContacts["ambulance"] != "1990" {
		t.Fatalf("colombo plan = %+v", got.Plan.ByLocation["Colombo"])
	}
	if got.Plan.ByLocation["Kandy"].NextSteps[0] != "avoid A1" {
		t.Fatalf("kandy plan = %+v", got.Plan.ByLocation["Kandy"])
	}
}

func TestPlanFencedReplyRecovered(t *testing.T) {
	a := NewAgent(&fakeCaller{reply: "Here is the plan:\n```json\n{\"locations\": [{\"location\": \"Galle\", \"next_steps\": [\"keep documents dry\"]}]}\n```"})
	got := a.Plan(context.Background(), risk.Assessment{})
	if got.Plan.Kind != PlanByLocationList || got.Plan.Locations[0].Location != "Galle" {
		t.Fatalf("plan = %+v", got.Plan)
	}
}

func TestPlanDoubleEncodedReplyRecovered(t *testing.T) {
	a := NewAgent(&fakeCaller{reply: `{"emergency_plan": "{\"Colombo\": {\"next_steps\": [\"call 119\"]}}"}`})
	got := a.Plan(context.Background(), risk.Assessment{})
	if got.Plan.Kind != PlanByLocationMap {
		t.Fatalf("kind = %s plan=%+v", got.Plan.Kind, got.Plan)
	}
}

func TestPlanUnparseableReplyDegradesToRawText(t *testing.T) {
	a := NewAgent(&fakeCaller{reply: "Sorry, I can only help with travel plans."})
	got := a.Plan(context.Background(), risk.Assessment{})
	if got.Plan.Kind != PlanRawText {
		t.Fatalf("kind = %s", got.Plan.Kind)
	}
	if !strings.Contains(got.Plan.RawText, "travel plans") {
		t.Fatalf("raw text = %q", got.Plan.RawText)
	}
}

func TestPlanModelFailure(t *testing.T) {
	a := NewAgent(&fakeCaller{err: errors.New("boom")})
	got := a.Plan(context.Background(), risk.Assessment{})
	if !got.Degraded {
		t.Fatal("expected degraded flag")
	}
	if got.Plan.Kind != PlanRawText || got.Plan.RawText != llm.FailedSentinel {
		t.Fatalf("plan = %+v", got.Plan)
	}
}

func TestPlanChecklistKeyVariants(t *testing.T) {
	reply := `{"locations": [{"location": "Colombo", "quick_response_checklist": ["breathe", "dial 119"]}]}`
	a := NewAgent(&fakeCaller{reply: reply})
	got := a.Plan(context.Background(), risk.Assessment{})
	if len(got.Plan.Locations[0].ResponseChecklist) != 2 {
		t.Fatalf("checklist = %+v", got.Plan.Locations[0])
	}
}

func TestPlanPromptEmbedsAssessment(t *testing.T) {
	caller := &fakeCaller{reply: "{}"}
	a := NewAgent(caller)
	a.Plan(context.Background(), risk.Assessment{Locations: []string{"Matara"}})
	if !strings.Contains(caller.seen, "Matara") || !strings.Contains(caller.seen, "next_steps") {
		t.Fatalf("prompt missing pieces:\n%s", caller.seen)
	}
}
