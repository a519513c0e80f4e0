// Package advisory produces practical travel advice from a completed risk
// assessment. The output is free text, not machine-parseable JSON.
package advisory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/llm"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

const AgentName = "advisory_agent"

const systemPrompt = "You are Advisory Agent. Given a risk assessment (structured JSON), produce " +
	"tailored, practical advice for the user: packing, timing, alternate routes, " +
	"how to reduce risk, and short checklist items."

type Result struct {
	Agent              string          `json:"agent"`
	AdviceText         string          `json:"advice_text"`
	OriginalAssessment risk.Assessment `json:"original_assessment"`
	Degraded           bool            `json:"degraded,omitempty"`
}

type Agent struct {
	caller llm.Caller
}

func NewAgent(caller llm.Caller) *Agent {
	return &Agent{caller: caller}
}

// Advise invokes the model once. A failed call surfaces the sentinel text as
// the advice with the Degraded flag set; it never fails the request.
func (a *Agent) Advise(ctx context.Context, assessment risk.Assessment) Result {
	prompt := fmt.Sprintf(
		"Risk assessment JSON:\n%s\n\n"+
			"Produce:\n"+
			"1) A friendly advisory message (3-6 bullet points)\n"+
			"2) A short checklist of items to carry (e.g., medications, charger, documents)\n"+
			"3) Accessibility / special-needs considerations if any\n",
		assessmentJSON(assessment),
	)
	reply := llm.Call(ctx, a.caller, AgentName, systemPrompt, prompt)
	return Result{
		Agent:              AgentName,
		AdviceText:         reply.Text,
		OriginalAssessment: assessment,
		Degraded:           reply.Failed,
	}
}

func assessmentJSON(assessment risk.Assessment) string {
	blob, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Sprintf("%+v", assessment)
	}
	return string(blob)
}
