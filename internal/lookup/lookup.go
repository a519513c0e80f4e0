// Package lookup fetches unstructured weather and emergency intel for a
// location from a Serper-style search backend. Lookup failures are never
// fatal: a degraded Result carries the error text instead.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://google.serper.dev/search"

	defaultTimeout  = 10 * time.Second
	maxSnippets     = 3
	maxFallbackText = 1000
)

// Result is one lookup outcome for one location. Immutable once produced.
type Result struct {
	RawText     string `json:"raw_text"`
	SourceQuery string `json:"source_query"`
	// Degraded is set when the transport failed and RawText carries the
	// error description rather than search snippets.
	Degraded bool `json:"degraded,omitempty"`
}

// Fetcher is the collaborator contract the pipeline depends on.
type Fetcher interface {
	FetchWeather(ctx context.Context, location string) Result
	FetchEmergency(ctx context.Context, location string) Result
}

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	cfg Config
}

// NewClient never rejects its config: a missing API key just means the
// outbound call goes unauthenticated and degrades at request time.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return &Client{cfg: cfg}
}

func (c *Client) FetchWeather(ctx context.Context, location string) Result {
	return c.search(ctx, fmt.Sprintf("weather in %s next 24 hours", location))
}

func (c *Client) FetchEmergency(ctx context.Context, location string) Result {
	return c.search(ctx, fmt.Sprintf("emergency services in %s helpline, recent incidents, road closures", location))
}

func (c *Client) search(ctx context.Context, query string) Result {
	payload, _ := json.Marshal(map[string]string{"q": query})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return degraded(query, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-KEY", c.cfg.APIKey)
	}

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return degraded(query, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<20))
	if res.StatusCode >= 400 {
		return degraded(query, fmt.Errorf("status code: %d", res.StatusCode))
	}
	return Result{RawText: extractTopText(body), SourceQuery: query}
}

func degraded(query string, err error) Result {
	log.Printf("trip-lookup search_failed query=%q err=%q", query, err.Error())
	return Result{
		RawText:     fmt.Sprintf("lookup failed: %s", err.Error()),
		SourceQuery: query,
		Degraded:    true,
	}
}

// extractTopText pulls up to the first three organic snippets out of the
// search response. An unexpected shape falls back to the truncated body so
// the model still sees something.
func extractTopText(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if organic, ok := parsed["organic"].([]any); ok && len(organic) > 0 {
			snippets := make([]string, 0, maxSnippets)
			for _, item := range organic {
				if len(snippets) >= maxSnippets {
					break
				}
				m, _ := item.(map[string]any)
				snippet, _ := m["snippet"].(string)
				snippets = append(snippets, snippet)
			}
			return strings.Join(snippets, "\n")
		}
	}
	text := string(body)
	if len(text) > maxFallbackText {
		text = text[:maxFallbackText]
	}
	return text
}
