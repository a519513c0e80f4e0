// Package llm is the model-call boundary: one textual prompt in, one textual
// reply out. Transport failures never escape — callers receive a fixed
// sentinel string and keep going.
package llm

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel       = string(anthropic.ModelClaudeSonnet4_20250514)
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 400

	// FailedSentinel is returned in place of a reply on any transport error.
	FailedSentinel = "LLM call failed."
	// EmptySentinel is returned when the model produced no text content.
	EmptySentinel = "No response from LLM."
)

type Caller interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	ModelName() string
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicCaller struct {
	messages    AnthropicMessager
	model       string
	temperature float64
	maxTokens   int64
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	model := strings.TrimSpace(os.Getenv("TRIP_SAFETY_LLM_MODEL"))
	if model == "" {
		model = DefaultModel
	}
	return &AnthropicCaller{
		messages:    newAnthropicClient(apiKey),
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}, nil
}

func (a *AnthropicCaller) ModelName() string { return a.model }

func (a *AnthropicCaller) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(a.temperature),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// Reply is the failure-absorbing wrapper every agent uses. Failed marks that
// the sentinel was substituted so pipeline metadata can record the fallback.
type Reply struct {
	Text   string
	Failed bool
}

// Call invokes the model once and never returns an error: transport failures
// become FailedSentinel, empty replies become EmptySentinel.
func Call(ctx context.Context, caller Caller, agent, system, prompt string) Reply {
	raw, err := caller.Generate(ctx, system, prompt)
	if err != nil {
		log.Printf("trip-llm call_failed agent=%s err=%q", agent, err.Error())
		return Reply{Text: FailedSentinel, Failed: true}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		log.Printf("trip-llm call_empty agent=%s", agent)
		return Reply{Text: EmptySentinel, Failed: true}
	}
	return Reply{Text: raw}
}
