// Package emergency produces a per-location emergency plan from a completed
// risk assessment. Model output arrives in whatever JSON shape the model
// chose; a single normalization step maps every shape into one tagged Plan.
package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/coerce"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/llm"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

const AgentName = "emergency_agent"

const systemPrompt = "You are Emergency Agent. When risk is high or emergency is detected, provide contact " +
	"info, immediate steps, and how to call local services. If the assessment has actionable " +
	"emergency info, structure it clearly."

type PlanKind string

const (
	PlanByLocationList PlanKind = "by_location_list"
	PlanByLocationMap  PlanKind = "by_location_map"
	PlanRawText        PlanKind = "raw_text"
	PlanEmpty          PlanKind = "empty"
)

// LocationPlan holds the per-location structure the model is asked for.
type LocationPlan struct {
	Location          string            `json:"location,omitempty"`
	EmergencyContacts map[string]string `json:"emergency_contacts,omitempty"`
	NextSteps         []string          `json:"next_steps,omitempty"`
	ResponseChecklist []string          `json:"response_checklist,omitempty"`
}

// Plan is the tagged variant over the shapes models actually return: a list
// of per-location records, a mapping keyed by location, unstructured text, or
// nothing at all. Exactly one of the payload fields is set, per Kind.
type Plan struct {
	Kind       PlanKind                `json:"kind"`
	Locations  []LocationPlan          `json:"locations,omitempty"`
	ByLocation map[string]LocationPlan `json:"by_location,omitempty"`
	RawText    string                  `json:"raw_text,omitempty"`
}

type Result struct {
	Agent    string `json:"agent"`
	Plan     Plan   `json:"emergency_plan"`
	Raw      string `json:"raw"`
	Degraded bool   `json:"degraded,omitempty"`
}

type Agent struct {
	caller llm.Caller
}

func NewAgent(caller llm.Caller) *Agent {
	return &Agent{caller: caller}
}

// Plan invokes the model once and normalizes whatever comes back. Unparseable
// output degrades to a raw-text plan; the raw reply is always kept.
func (a *Agent) Plan(ctx context.Context, assessment risk.Assessment) Result {
	prompt := fmt.Sprintf(
		"Assessment:\n%s\n\n"+
			"Return in JSON: locations -> list of {location, emergency_contacts, next_steps, 3-min response checklist}\n",
		assessmentJSON(assessment),
	)
	reply := llm.Call(ctx, a.caller, AgentName, systemPrompt, prompt)
	parsed := coerce.NormalizeEmergency(reply.Text)
	return Result{
		Agent:    AgentName,
		Plan:     normalizePlan(parsed, reply.Text),
		Raw:      reply.Text,
		Degraded: reply.Failed,
	}
}

func assessmentJSON(assessment risk.Assessment) string {
	blob, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Sprintf("%+v", assessment)
	}
	return string(blob)
}

// normalizePlan maps any parsed JSON shape into one canonical Plan case.
func normalizePlan(parsed map[string]any, raw string) Plan {
	if len(parsed) == 0 {
		if strings.TrimSpace(raw) == "" {
			return Plan{Kind: PlanEmpty}
		}
		return Plan{Kind: PlanRawText, RawText: raw}
	}

	if arr, ok := parsed["locations"].([]any); ok {
		list := make([]LocationPlan, 0, len(arr))
		for _, item := range arr {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			list = append(list, locationPlanFromMap(stringFrom(m["location"]), m))
		}
		if len(list) > 0 {
			return Plan{Kind: PlanByLocationList, Locations: list}
		}
	}

	byLocation := map[string]LocationPlan{}
	for key, v := range parsed {
		if m, ok := v.(map[string]any); ok {
			byLocation[key] = locationPlanFromMap(key, m)
		}
	}
	if len(byLocation) > 0 {
		return Plan{Kind: PlanByLocationMap, ByLocation: byLocation}
	}

	if s := stringFrom(parsed["raw_text"]); s != "" {
		return Plan{Kind: PlanRawText, RawText: s}
	}
	return Plan{Kind: PlanRawText, RawText: raw}
}

func locationPlanFromMap(location string, m map[string]any) LocationPlan {
	lp := LocationPlan{Location: location}
	if contacts, ok := m["emergency_contacts"].(map[string]any); ok {
		lp.EmergencyContacts = make(map[string]string, len(contacts))
		for label, v := range contacts {
			lp.EmergencyContacts[label] = stringify(v)
		}
	}
	lp.NextSteps = stringsFrom(m["next_steps"])
	for _, key := range []string{"response_checklist", "quick_response_checklist", "checklist", "3-min response checklist"} {
		if steps := stringsFrom(m[key]); len(steps) > 0 {
			lp.ResponseChecklist = steps
			break
		}
	}
	return lp
}

func stringFrom(v any) string {
	s, _ := v.(string)
	return s
}

func stringsFrom(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(blob)
}
