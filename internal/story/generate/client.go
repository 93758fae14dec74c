package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/platform/metrics"
	"github.com/oleandergames/tradecraft/internal/platform/timeouts"
)

// ClientConfig configures the HTTP generation client.
type ClientConfig struct {
	// CompletionsURL is the chat completions endpoint.
	CompletionsURL string
	// APIKey is sent as a bearer token. Never echoed in errors.
	APIKey string
	// Model selects the provider model.
	Model string
	// MaxAttempts bounds retries on transient failures.
	MaxAttempts int
	// AttemptTimeout bounds a single provider call.
	AttemptTimeout time.Duration
	// HTTPClient may be overridden in tests.
	HTTPClient *http.Client
}

// Client is a Generator backed by an OpenAI-compatible chat API.
// Transient provider failures are retried with exponential backoff up
// to MaxAttempts; what escapes here is fatal to the transition.
type Client struct {
	cfg ClientConfig
}

// NewClient validates the config and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.CompletionsURL) == "" {
		return nil, fmt.Errorf("completions url is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = timeouts.Generation
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.AttemptTimeout}
	}
	return &Client{cfg: cfg}, nil
}

// Generate calls the provider and parses its reply into a Segment.
func (c *Client) Generate(ctx context.Context, req Request) (Segment, error) {
	prompt := BuildPrompt(req)

	operation := func() (Segment, error) {
		start := time.Now()
		segment, err := c.attempt(ctx, prompt)
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.GenerationAttempts.WithLabelValues("error").Inc()
			return Segment{}, err
		}
		metrics.GenerationAttempts.WithLabelValues("ok").Inc()
		return segment, nil
	}

	segment, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)))
	if err != nil {
		if errors.CodeOf(err) == errors.CodeGenerationFailed {
			return Segment{}, err
		}
		return Segment{}, errors.Wrap(errors.CodeGenerationFailed, "narrative generation failed", err)
	}
	return segment, nil
}

func (c *Client) attempt(ctx context.Context, prompt string) (Segment, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	requestBody, err := json.Marshal(map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return Segment{}, backoff.Permanent(fmt.Errorf("marshal generation request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.CompletionsURL, bytes.NewReader(requestBody))
	if err != nil {
		return Segment{}, backoff.Permanent(fmt.Errorf("build generation request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	res, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return Segment{}, fmt.Errorf("generation request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return Segment{}, fmt.Errorf("read generation error body: %w", readErr)
		}
		reason := fmt.Errorf("generation request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
			return Segment{}, backoff.Permanent(reason)
		}
		return Segment{}, reason
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Segment{}, fmt.Errorf("decode generation response: %w", err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return Segment{}, fmt.Errorf("generation response missing content")
	}

	segment, err := ParseSegment(payload.Choices[0].Message.Content)
	if err != nil {
		// Malformed model output may come good on a retry.
		return Segment{}, err
	}
	return segment, nil
}
