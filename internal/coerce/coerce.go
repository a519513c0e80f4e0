// Package coerce recovers structured objects from free-form model output.
// Model replies arrive as plain JSON, JSON inside fenced code blocks, JSON
// embedded in prose, or occasionally double-encoded JSON strings; this package
// turns any of those into a map without ever failing.
package coerce

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

const fence = "```"

// Greedy: first opening brace through last closing brace.
var braceSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// Coerce resolves model output into a structured object. Already-structured
// mappings pass through untouched, strings go through text recovery, and
// anything else yields an empty object. Coerce is idempotent.
func Coerce(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		return fromText(t)
	case nil:
		return map[string]any{}
	default:
		// Structured but not a map (e.g. a typed struct): round-trip it.
		blob, err := json.Marshal(t)
		if err != nil {
			return map[string]any{}
		}
		var out map[string]any
		if err := json.Unmarshal(blob, &out); err != nil {
			return map[string]any{}
		}
		return out
	}
}

func fromText(s string) map[string]any {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]any{}
	}

	if strings.Contains(s, fence) {
		for _, segment := range strings.Split(s, fence) {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			segment = stripLanguageTag(segment)
			if obj, ok := parseObject(segment); ok {
				return obj
			}
			if span := braceSpanRe.FindString(segment); span != "" {
				if obj, ok := parseObject(span); ok {
					return obj
				}
			}
		}
	} else if span := braceSpanRe.FindString(s); span != "" {
		if obj, ok := parseObject(span); ok {
			return obj
		}
	}

	if obj, ok := parseObject(s); ok {
		return obj
	}
	return map[string]any{}
}

func stripLanguageTag(segment string) string {
	low := strings.ToLower(segment)
	if strings.HasPrefix(low, "json") {
		return strings.TrimSpace(segment[len("json"):])
	}
	return segment
}

// parseObject accepts only JSON objects; arrays and scalars are not useful
// recovery targets. Strict parsing comes first, then jsonrepair for the
// almost-JSON the model sometimes emits (single quotes, trailing commas).
func parseObject(s string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err == nil && out != nil {
		return out, true
	}
	if !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return nil, false
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, false
	}
	out = nil
	if err := json.Unmarshal([]byte(repaired), &out); err == nil && out != nil {
		return out, true
	}
	return nil, false
}

// NormalizeEmergency applies Coerce once and, when the result still carries a
// string under raw_text, raw, or emergency_plan, coerces that nested string
// too. Models wrap their JSON answer in explanatory prose or double-encode
// it; this recovers the deeper structure when one exists.
func NormalizeEmergency(v any) map[string]any {
	shallow := Coerce(v)
	for _, key := range []string{"raw_text", "raw", "emergency_plan"} {
		nested, ok := shallow[key].(string)
		if !ok {
			continue
		}
		if deeper := Coerce(nested); len(deeper) > 0 {
			return deeper
		}
	}
	return shallow
}
