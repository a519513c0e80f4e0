// Package report renders a completed trip assessment as markdown, HTML,
// and PDF.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/advisory"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/emergency"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
)

const Disclaimer = "This assessment is automated guidance, not professional travel or safety advice. " +
	"Verify conditions with local authorities before departing."

// Input bundles the three stage results a report is built from.
type Input struct {
	Assessment risk.Assessment
	Advisory   advisory.Result
	Emergency  emergency.Result
}

func BuildMarkdown(in Input) string {
	a := in.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "# Trip Safety Report\n\n")
	fmt.Fprintf(&b, "- Locations: %s\n", joinOr(a.Locations, "unknown"))
	if a.Time != "" {
		fmt.Fprintf(&b, "- Time: %s\n", a.Time)
	}
	if a.TransportMode != "" {
		fmt.Fprintf(&b, "- Transport: %s\n", a.TransportMode)
	}
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	if a.Metadata.LLMFailed {
		fmt.Fprintf(&b, "> DEGRADED: The language model was unavailable. Scores below come from local heuristics only.\n\n")
	}

	fmt.Fprintf(&b, "## Risk\n\n")
	fmt.Fprintf(&b, "- Final score: **%d / 100**\n", a.RiskScoreFinal)
	fmt.Fprintf(&b, "- Level: **%s**\n", a.RiskLevel)
	if a.RiskScore != nil {
		fmt.Fprintf(&b, "- Model score: %d (blended with a supplemental score of %d)\n", *a.RiskScore, a.Metadata.SupplementalScore)
	} else {
		fmt.Fprintf(&b, "- Supplemental score: %d (model score unavailable)\n", a.Metadata.SupplementalScore)
	}
	b.WriteString("\n")

	if len(a.Reasons) > 0 {
		fmt.Fprintf(&b, "### Reasons\n\n")
		for _, r := range a.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}
	if len(a.RecommendedActions) > 0 {
		fmt.Fprintf(&b, "### Recommended Actions\n\n")
		for _, r := range a.RecommendedActions {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if a.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", a.Summary)
	}

	writeLookups(&b, "Weather", a.WeatherData, a.Locations)
	writeLookups(&b, "Emergency Services", a.EmergencyData, a.Locations)

	if in.Advisory.AdviceText != "" {
		fmt.Fprintf(&b, "## Travel Advisory\n\n%s\n\n", in.Advisory.AdviceText)
	}

	writeEmergencyPlan(&b, in.Emergency.Plan)

	fmt.Fprintf(&b, "## Pipeline Metadata\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| Model | %s |\n", a.Metadata.Model)
	fmt.Fprintf(&b, "| Stages | %s |\n", strings.Join(a.Metadata.StagesExecuted, ", "))
	fmt.Fprintf(&b, "| Duration | %d ms |\n", a.Metadata.DurationMS)
	fmt.Fprintf(&b, "| Degraded lookups | %d |\n", a.Metadata.LookupsDegraded)
	fmt.Fprintf(&b, "| Placeholder location | %t |\n", a.Metadata.PlaceholderUsed)

	return b.String()
}

func writeLookups(b *strings.Builder, title string, data map[string]lookup.Result, locations []string) {
	if len(data) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, loc := range locations {
		res, ok := data[loc]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", loc)
		if res.Degraded {
			fmt.Fprintf(b, "> Lookup unavailable for this location.\n\n")
			continue
		}
		fmt.Fprintf(b, "%s\n\n", res.RawText)
	}
}

func writeEmergencyPlan(b *strings.Builder, plan emergency.Plan) {
	switch plan.Kind {
	case emergency.PlanByLocationList:
		fmt.Fprintf(b, "## Emergency Plan\n\n")
		for _, lp := range plan.Locations {
			writeLocationPlan(b, lp)
		}
	case emergency.PlanByLocationMap:
		fmt.Fprintf(b, "## Emergency Plan\n\n")
		for loc, lp := range plan.ByLocation {
			if lp.Location == "" {
				lp.Location = loc
			}
			writeLocationPlan(b, lp)
		}
	case emergency.PlanRawText:
		if strings.TrimSpace(plan.RawText) != "" {
			fmt.Fprintf(b, "## Emergency Plan\n\n%s\n\n", plan.RawText)
		}
	}
}

func writeLocationPlan(b *strings.Builder, lp emergency.LocationPlan) {
	fmt.Fprintf(b, "### %s\n\n", lp.Location)
	if len(lp.EmergencyContacts) > 0 {
		fmt.Fprintf(b, "| Service | Number |\n|---------|--------|\n")
		for svc, num := range lp.EmergencyContacts {
			fmt.Fprintf(b, "| %s | %s |\n", svc, num)
		}
		b.WriteString("\n")
	}
	if len(lp.NextSteps) > 0 {
		fmt.Fprintf(b, "**Next steps**\n\n")
		for _, s := range lp.NextSteps {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
	if len(lp.ResponseChecklist) > 0 {
		fmt.Fprintf(b, "**Quick response checklist**\n\n")
		for _, s := range lp.ResponseChecklist {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
