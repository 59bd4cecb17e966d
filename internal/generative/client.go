// Package generative is a minimal client for the generateContent endpoint of
// the Gemini API.
package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Eka2r/Padayon/internal/models"
)

const (
	// DefaultBaseURL is the public Gemini API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"
	// DefaultTimeout bounds one generateContent call.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 2 * 1024 * 1024
)

var (
	// ErrEmptyResponse means the reply carried no candidate text.
	ErrEmptyResponse = errors.New("generative: empty response")
	// ErrMalformedResponse means the reply body could not be decoded.
	ErrMalformedResponse = errors.New("generative: malformed response")
)

// StatusError is returned for non-200 replies.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generative: HTTP %d: %s", e.Status, e.Body)
}

// Malformed reports whether err came from a reply that arrived but could not
// be used. Everything else is a transport failure.
func Malformed(err error) bool {
	var statusErr *StatusError
	return errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) || errors.As(err, &statusErr)
}

// Part is one piece of content.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn on the wire.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// FromTurns converts chat turns into request contents.
func FromTurns(turns []models.ChatTurn) []Content {
	out := make([]Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, Content{Role: t.Role, Parts: []Part{{Text: t.Text}}})
	}
	return out
}

// Client calls generateContent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// New creates a Client for the given API key with default settings.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		apiKey:     apiKey,
	}
}

// WithBaseURL overrides the API root.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = strings.TrimRight(u, "/")
	}
	return c
}

// WithModel overrides the model.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTimeout sets the per-call timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends contents in one request and returns the first text
// part of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, contents []Content) (string, error) {
	const op = "generative.GenerateContent"

	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %w", op, &StatusError{Status: resp.StatusCode, Body: truncate(string(raw), 200)})
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
