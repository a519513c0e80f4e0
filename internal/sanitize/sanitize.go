// Package sanitize cleans raw trip descriptions before any extraction or
// model call sees them.
package sanitize

import (
	"regexp"
	"strings"
)

const RedactionMarker = "[REDACTED_URL]"

const DefaultMaxLen = 2000

var (
	urlRe       = regexp.MustCompile(`(?i)(?:http|https|file)://\S+`)
	scriptRe    = regexp.MustCompile(`(?is)<\s*script.*?>.*?<\s*/\s*script\s*>`)
	lineBreakRe = regexp.MustCompile(`[\r\n]{2,}`)
)

// Normalize truncates text to maxLen, replaces scheme://... tokens with the
// redaction marker, removes script-tag spans, and collapses runs of blank
// lines. It never fails; an empty string is a valid result.
func Normalize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	t := strings.TrimSpace(text)
	if len(t) > maxLen {
		t = t[:maxLen]
	}
	t = urlRe.ReplaceAllString(t, RedactionMarker)
	t = scriptRe.ReplaceAllString(t, "")
	t = lineBreakRe.ReplaceAllString(t, "\n")
	return t
}
