package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultMaxTokens = 8192
	anthropicVersion = "2023-06-01"
)

// ClaudeClient streams completions from the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter

	// Stats records the latency of every completed call.
	Stats *LLMStats
}

// Option configures a ClaudeClient.
type Option func(*ClaudeClient)

// WithBaseURL points the client at another Messages API host.
func WithBaseURL(u string) Option {
	return func(c *ClaudeClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMaxTokens caps the length of a generated report.
func WithMaxTokens(n int) Option {
	return func(c *ClaudeClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithRateLimit allows rps requests per second. Zero or less disables the
// limit.
func WithRateLimit(rps float64) Option {
	return func(c *ClaudeClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ClaudeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClaudeClient(apiKey, model string, opts ...Option) *ClaudeClient {
	c := &ClaudeClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   defaultBaseURL,
		maxTokens: defaultMaxTokens,
		// Streams are bounded by the caller's context, not a client timeout.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		Stats:      NewLLMStats(time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string {
	return c.model
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// retryableTypes are stream error types worth another attempt.
var retryableTypes = map[string]bool{
	"overloaded_error": true,
	"rate_limit_error": true,
	"api_error":        true,
}

// Stream sends p and calls onDelta with each text fragment as it arrives.
// It returns the full text once the stream reports message_stop. onDelta
// may be nil.
func (c *ClaudeClient) Stream(ctx context.Context, p Prompt, onDelta func(string)) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    p.System,
		Messages:  []anthropicMessage{{Role: "user", Content: p.User}},
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var (
		full    strings.Builder
		stopped bool
	)
	err = readSSE(resp.Body, func(_, data string) error {
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}
		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				full.WriteString(ev.Delta.Text)
				if onDelta != nil {
					onDelta(ev.Delta.Text)
				}
			}
		case "message_stop":
			stopped = true
		case "error":
			if ev.Error == nil {
				return &APIError{StatusCode: http.StatusOK, Message: data}
			}
			if retryableTypes[ev.Error.Type] {
				return &RetryableError{StatusCode: http.StatusServiceUnavailable, Message: ev.Error.Type + ": " + ev.Error.Message}
			}
			return &APIError{StatusCode: http.StatusOK, Type: ev.Error.Type, Message: ev.Error.Message}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return full.String(), ctx.Err()
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) && !IsRetryable(err) {
			// A broken connection mid-stream.
			err = &RetryableError{Message: err.Error()}
		}
		return full.String(), err
	}
	if !stopped {
		if ctx.Err() != nil {
			return full.String(), ctx.Err()
		}
		return full.String(), &RetryableError{Message: "stream ended before message_stop"}
	}

	c.Stats.Record(time.Since(start))
	return full.String(), nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(raw)}
	}
	var body struct {
		Error *apiErrorBody `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != nil {
		return &APIError{StatusCode: resp.StatusCode, Type: body.Error.Type, Message: body.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
}

// Close releases idle connections.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
