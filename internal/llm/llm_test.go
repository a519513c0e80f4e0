package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeCaller struct {
	reply string
	err   error
	seen  string
}

func (f *fakeCaller) Generate(_ context.Context, system, prompt string) (string, error) {
	f.seen = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCaller) ModelName() string { return "test-model" }

func TestCallPassesThroughReply(t *testing.T) {
	c := &fakeCaller{reply: "  {\"ok\":true}  "}
	got := Call(context.Background(), c, "risk", "sys", "prompt")
	if got.Failed {
		t.Fatal("unexpected failure flag")
	}
	if got.Text != "{\"ok\":true}" {
		t.Fatalf("reply = %q", got.Text)
	}
	if c.seen != "prompt" {
		t.Fatalf("prompt not forwarded: %q", c.seen)
	}
}

func TestCallConvertsErrorToSentinel(t *testing.T) {
	got := Call(context.Background(), &fakeCaller{err: errors.New("boom")}, "risk", "sys", "p")
	if !got.Failed || got.Text != FailedSentinel {
		t.Fatalf("got %+v", got)
	}
}

func TestCallConvertsEmptyReplyToSentinel(t *testing.T) {
	got := Call(context.Background(), &fakeCaller{reply: "   "}, "risk", "sys", "p")
	if !got.Failed || got.Text != EmptySentinel {
		t.Fatalf("got %+v", got)
	}
}

func TestNewAnthropicCallerFromEnvRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewAnthropicCallerFromEnvModelOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "k")
	t.Setenv("TRIP_SAFETY_LLM_MODEL", "claude-test")
	c, err := NewAnthropicCallerFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if c.ModelName() != "claude-test" {
		t.Fatalf("model = %q", c.ModelName())
	}
}
