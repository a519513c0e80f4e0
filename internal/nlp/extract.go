// Package nlp pulls locations, a time expression, and a transport mode out of
// free-text trip descriptions. Every path returns a usable (possibly partial)
// result; malformed input is never an error.
package nlp

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	prose "github.com/jdkato/prose/v2"
)

// Entities is the structured output of extraction. Empty strings mean the
// field is absent. Locations may be empty here; the pipeline substitutes a
// placeholder before downstream use.
type Entities struct {
	Locations      []string `json:"locations"`
	TimeExpression string   `json:"time_expression,omitempty"`
	TransportMode  string   `json:"transport_mode,omitempty"`
}

// Recognizer produces candidate location entities for a text. Implementations
// may fail; the extractor falls back to heuristics on any error.
type Recognizer interface {
	Locations(text string) ([]string, error)
}

// locationLabels are the entity classes treated as places. The prose tagger
// only emits GPE for geography, but recognizers trained on the full OntoNotes
// label set also produce LOC, FAC, and NORP.
var locationLabels = map[string]bool{
	"GPE":  true,
	"LOC":  true,
	"FAC":  true,
	"NORP": true,
}

// ProseRecognizer runs the prose statistical tagger.
type ProseRecognizer struct{}

func (ProseRecognizer) Locations(text string) ([]string, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range doc.Entities() {
		if locationLabels[ent.Label] {
			out = append(out, ent.Text)
		}
	}
	return out, nil
}

// transportModes is a closed vocabulary; first match by this order wins.
var transportModes = []string{"bus", "train", "car", "motorbike", "walk", "flight", "plane", "ferry"}

var (
	capitalizedRe = regexp.MustCompile(`\b([A-Z][a-z]{2,}(?:\s[A-Z][a-z]{2,})?)\b`)
	timeRe        = regexp.MustCompile(`(?i)(tonight|tomorrow|today|at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
)

type Extractor struct {
	rec Recognizer
}

func NewExtractor(rec Recognizer) *Extractor {
	if rec == nil {
		rec = ProseRecognizer{}
	}
	return &Extractor{rec: rec}
}

// Extract never fails. Recognizer errors degrade to the capitalized-words
// heuristic, and absent time or transport fields stay empty.
func (e *Extractor) Extract(text string) Entities {
	return Entities{
		Locations:      e.extractLocations(text),
		TimeExpression: extractTime(text),
		TransportMode:  extractTransportMode(text),
	}
}

func (e *Extractor) extractLocations(text string) []string {
	raw, err := e.rec.Locations(text)
	if err != nil {
		log.Printf("trip-nlp recognizer_failed err=%q", err.Error())
		raw = nil
	}

	seen := map[string]bool{}
	out := []string{}
	for _, loc := range raw {
		s := strings.TrimSpace(loc)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	if len(out) > 0 {
		return out
	}

	// Heuristic fallback: one or two consecutive capitalized words.
	matches := capitalizedRe.FindAllString(text, 2)
	return append(out, matches...)
}

func extractTime(text string) string {
	m := timeRe.FindString(text)
	if m == "" {
		return ""
	}
	if dt, err := dateparse.ParseAny(m); err == nil {
		return dt.Format(time.RFC3339)
	}
	return m
}

func extractTransportMode(text string) string {
	low := strings.ToLower(text)
	for _, mode := range transportModes {
		if strings.Contains(low, mode) {
			return mode
		}
	}
	return ""
}
