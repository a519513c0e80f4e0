package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/coerce"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/llm"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/nlp"
)

const systemPrompt = "You are Risk Assessment Agent. Extract locations, transport modes, time of travel. " +
	"Fetch weather and emergency info using the provided tools, and return a structured " +
	"risk assessment (json) with reasons and recommended severity."

const (
	// PlaceholderLocation is substituted when extraction yields nothing.
	PlaceholderLocation = "unknown"

	summarySentences = 3
)

// Pipeline turns sanitized trip text into a scored Assessment through five
// stages: extracting, looking up, synthesizing, scoring, done. No stage is
// skipped or retried; external failures degrade in place.
type Pipeline struct {
	extractor *nlp.Extractor
	fetcher   lookup.Fetcher
	caller    llm.Caller
}

func NewPipeline(extractor *nlp.Extractor, fetcher lookup.Fetcher, caller llm.Caller) *Pipeline {
	return &Pipeline{extractor: extractor, fetcher: fetcher, caller: caller}
}

// Assess runs the full pipeline. It never fails: worst case the caller gets a
// best-effort Assessment whose metadata records which fallbacks were used.
func (p *Pipeline) Assess(ctx context.Context, text string) Assessment {
	started := time.Now()
	a := Assessment{
		Agent:    AgentName,
		Reasons:  []string{},
		RecommendedActions: []string{},
		Metadata: Metadata{Model: p.caller.ModelName(), StartedAt: started},
	}

	entities := p.extractor.Extract(text)
	a.Entities = entities
	locations := entities.Locations
	if len(locations) == 0 {
		locations = []string{PlaceholderLocation}
		a.Metadata.PlaceholderUsed = true
	}
	p.mark(&a, "extracting")

	a.WeatherData, a.EmergencyData = p.lookupAll(ctx, locations, &a.Metadata)
	p.mark(&a, "looking_up")

	prompt := buildSynthesisPrompt(text, locations, entities, a.WeatherData, a.EmergencyData)
	reply := llm.Call(ctx, p.caller, AgentName, systemPrompt, prompt)
	a.Metadata.LLMFailed = reply.Failed
	parsed := coerce.Coerce(reply.Text)
	if len(parsed) == 0 {
		a.Metadata.CoercionFailed = true
		a.RawText = reply.Text
	}
	p.mark(&a, "synthesizing")

	supplemental := Score(a.WeatherData, a.EmergencyData, entities.TransportMode)
	a.Metadata.SupplementalScore = supplemental
	if modelScore, ok := numberFromAny(parsed["risk_score"]); ok {
		a.RiskScoreFinal = int(math.Round((modelScore + float64(supplemental)) / 2))
		a.Metadata.ModelScoreBlended = true
		rs := int(math.Round(modelScore))
		a.RiskScore = &rs
	} else {
		a.RiskScoreFinal = supplemental
	}
	p.mark(&a, "scoring")

	p.assemble(&a, parsed, locations, entities, reply.Text)
	a.Metadata.CompletedAt = time.Now()
	a.Metadata.DurationMS = a.Metadata.CompletedAt.Sub(started).Milliseconds()
	p.mark(&a, "done")

	log.Printf(
		"trip-risk assess_done locations=%d score_final=%d blended=%t llm_failed=%t lookups_degraded=%d elapsed_ms=%d",
		len(locations), a.RiskScoreFinal, a.Metadata.ModelScoreBlended,
		a.Metadata.LLMFailed, a.Metadata.LookupsDegraded, a.Metadata.DurationMS,
	)
	return a
}

func (p *Pipeline) mark(a *Assessment, stage string) {
	a.Metadata.StagesExecuted = append(a.Metadata.StagesExecuted, stage)
}

// lookupAll fans out one goroutine per location; each fetches weather then
// emergency intel. A failed lookup degrades that location only.
func (p *Pipeline) lookupAll(ctx context.Context, locations []string, meta *Metadata) (map[string]lookup.Result, map[string]lookup.Result) {
	weather := make(map[string]lookup.Result, len(locations))
	emergency := make(map[string]lookup.Result, len(locations))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, loc := range locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			w := p.fetcher.FetchWeather(ctx, loc)
			e := p.fetcher.FetchEmergency(ctx, loc)
			mu.Lock()
			defer mu.Unlock()
			weather[loc] = w
			emergency[loc] = e
			if w.Degraded {
				meta.LookupsDegraded++
			}
			if e.Degraded {
				meta.LookupsDegraded++
			}
		}(loc)
	}
	wg.Wait()
	return weather, emergency
}

func buildSynthesisPrompt(text string, locations []string, entities nlp.Entities, weather, emergency map[string]lookup.Result) string {
	return fmt.Sprintf(
		"User: %s\n"+
			"Extracted locations: %v\n"+
			"Time: %s\n"+
			"Transport: %s\n"+
			"Weather (raw): %s\n"+
			"Emergency intel (raw): %s\n\n"+
			"Produce:\n"+
			"1) JSON object with fields: locations, time, transport_mode, risk_score (0-100), "+
			"risk_level (Low/Medium/High/Critical), reasons (list), recommended_actions (list).\n"+
			"2) Short human summary (1-2 paragraphs).\n",
		text, locations, entities.TimeExpression, entities.TransportMode,
		compactJSON(weather), compactJSON(emergency),
	)
}

func compactJSON(v any) string {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(blob)
}

// assemble merges the coerced model object with the extracted entities,
// preferring the model's fields and falling back to extraction.
func (p *Pipeline) assemble(a *Assessment, parsed map[string]any, locations []string, entities nlp.Entities, rawReply string) {
	a.Locations = stringsFromAny(parsed["locations"])
	if len(a.Locations) == 0 {
		a.Locations = locations
	}
	a.Time = stringFromAny(parsed["time"])
	if a.Time == "" {
		a.Time = entities.TimeExpression
	}
	a.TransportMode = stringFromAny(parsed["transport_mode"])
	if a.TransportMode == "" {
		a.TransportMode = entities.TransportMode
	}
	if reasons := stringsFromAny(parsed["reasons"]); len(reasons) > 0 {
		a.Reasons = reasons
	}
	if actions := stringsFromAny(parsed["recommended_actions"]); len(actions) > 0 {
		a.RecommendedActions = actions
	}
	a.RiskLevel = Level(stringFromAny(parsed["risk_level"]))
	switch a.RiskLevel {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
	default:
		a.RiskLevel = levelFromScore(a.RiskScoreFinal)
	}
	a.Summary = Summarize(rawReply, summarySentences)
}

func numberFromAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func stringsFromAny(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
