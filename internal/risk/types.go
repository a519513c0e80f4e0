package risk

import (
	"time"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/lookup"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/nlp"
)

const AgentName = "risk_assessment_agent"

type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Assessment is the structured, scored result of one pipeline run. It is
// created fresh per request and never mutated after return.
type Assessment struct {
	Locations          []string                 `json:"locations"`
	Time               string                   `json:"time,omitempty"`
	TransportMode      string                   `json:"transport_mode,omitempty"`
	RiskScore          *int                     `json:"risk_score,omitempty"`
	RiskLevel          Level                    `json:"risk_level"`
	Reasons            []string                 `json:"reasons"`
	RecommendedActions []string                 `json:"recommended_actions"`
	RiskScoreFinal     int                      `json:"risk_score_final"`
	WeatherData        map[string]lookup.Result `json:"weather_data"`
	EmergencyData      map[string]lookup.Result `json:"emergency_data"`
	Summary            string                   `json:"summary"`
	// RawText carries the unparsed model reply when coercion yielded
	// nothing usable.
	RawText  string   `json:"raw_text,omitempty"`
	Agent    string   `json:"agent"`
	Entities nlp.Entities `json:"extracted_entities"`
	Metadata Metadata `json:"metadata"`
}

// Metadata records how the run went so callers can tell a clean result from
// one assembled out of fallbacks.
type Metadata struct {
	StagesExecuted    []string  `json:"stages_executed"`
	Model             string    `json:"model"`
	SupplementalScore int       `json:"supplemental_score"`
	ModelScoreBlended bool      `json:"model_score_blended"`
	LLMFailed         bool      `json:"llm_failed"`
	CoercionFailed    bool      `json:"coercion_failed"`
	LookupsDegraded   int       `json:"lookups_degraded"`
	PlaceholderUsed   bool      `json:"placeholder_location_used"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	DurationMS        int64     `json:"duration_ms"`
}
