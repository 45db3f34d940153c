// Package gateway implements the language model gateway port over an
// OpenAI-compatible chat-completions HTTP endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Gateway = (*Client)(nil)

// Client implements ports.Gateway against a chat-completions endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a gateway client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the generated text. Any provider
// failure is surfaced as an opaque gateway error; callers at the worker
// boundary convert it into a failed completion record.
func (c *Client) Complete(ctx context.Context, prompt string, params ports.CompletionParams) (string, error) {
	if c.endpoint == "" {
		return "", zerr.New("gateway endpoint is not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       params.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return "", zerr.Wrap(err, "failed to marshal gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", zerr.Wrap(err, "failed to create gateway request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", zerr.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", zerr.With(zerr.New("gateway returned non-success status"), "status", resp.Status)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", zerr.Wrap(err, "failed to decode gateway response")
	}
	if len(decoded.Choices) == 0 {
		return "", zerr.New("gateway response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
