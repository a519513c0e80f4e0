package risk

import (
	"regexp"
	"strings"
)

// Sentence boundary: terminal punctuation followed by whitespace.
var sentenceBoundaryRe = regexp.MustCompile(`([.!?])\s+`)

// Summarize returns the first maxSentences sentences of text, extractively.
func Summarize(text string, maxSentences int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "No text to summarize."
	}
	if maxSentences <= 0 {
		maxSentences = 2
	}
	marked := sentenceBoundaryRe.ReplaceAllString(text, "$1\x1f")
	sentences := strings.Split(marked, "\x1f")
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}
