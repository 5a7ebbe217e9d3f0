// Package summarize sends document bytes to a hosted text-generation
// capability and returns a short Bengali description. Failures never
// cross this boundary: every call yields some text.
package summarize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Fixed responses when the capability has no answer or fails.
const (
	MsgNoSummary = "সংক্ষিপ্ত বিবরণ পাওয়া যায়নি।"
	MsgFailed    = "নথি বিশ্লেষণে ত্রুটি হয়েছে।"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-3-flash-preview"
	defaultTimeout = 30 * time.Second
)

// Config holds the connection settings for the capability.
type Config struct {
	APIKey  string
	Model   string        // defaults to defaultModel
	BaseURL string        // defaults to the Google endpoint
	Timeout time.Duration // per-call timeout, defaults to 30s
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New creates a summarization client.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Request/response shapes for the generateContent API. Only the fields
// this client reads are modelled.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	InlineData *inlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize asks the capability what kind of document this appears to
// be, in at most ten Bengali words. The response text is returned
// verbatim. Any failure (network, HTTP status, malformed body) yields
// the fixed failure text instead of an error.
func (c *Client) Summarize(ctx context.Context, name, mimeType string, data []byte) string {
	prompt := fmt.Sprintf(
		"This is a document named %s. Provide a very short summary (max 10 words) of what this document appears to be in Bengali.",
		name,
	)

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
				{Text: prompt},
			},
		}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		slog.Error("failed to encode summarization request", "error", err)
		return MsgFailed
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build summarization request", "error", err)
		return MsgFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("summarization call failed", "name", name, "error", err)
		return MsgFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("summarization call rejected", "name", name, "status", resp.StatusCode)
		return MsgFailed
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Error("malformed summarization response", "name", name, "error", err)
		return MsgFailed
	}

	text := firstText(out)
	if text == "" {
		return MsgNoSummary
	}
	return text
}

func firstText(resp generateResponse) string {
	for _, cand := range resp.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if s := sb.String(); s != "" {
			return s
		}
	}
	return ""
}
