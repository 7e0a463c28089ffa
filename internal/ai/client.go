// Package ai talks to hosted generative-text APIs.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/pkg/config"
	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

var (
	ErrNotConfigured = errors.New("AI provider not configured")
	ErrEmptyResponse = errors.New("AI provider returned no text")
)

// Client sends a single prompt to the configured provider. It never
// retries and keeps no state between calls.
type Client struct {
	http     *resty.Client
	provider Provider
	api      providerAPI
	apiKey   string
	model    string
}

// Generate returns the model's text answer to prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(c.api.body(c.model, prompt))
	c.api.authorize(req, c.apiKey)

	start := time.Now()
	resp, err := req.Post(c.api.path(c.model))
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.provider, err)
	}

	log.Debug("AI provider call",
		zap.String("provider", string(c.provider)),
		zap.String("model", c.model),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)))

	if resp.IsError() {
		return "", fmt.Errorf("%s API error: %d %s", c.provider, resp.StatusCode(), truncate(resp.String(), 200))
	}

	text, err := c.api.parse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", c.provider, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) Provider() Provider {
	return c.provider
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NewClient builds a client for cfg.Provider. An empty API key yields a
// client whose calls fail with ErrNotConfigured.
func NewClient(cfg config.AIConfig) (*Client, error) {
	provider := Provider(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	api, ok := providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = api.baseURL
	}
	model := cfg.Model
	if model == "" {
		model = api.defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		http:     resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		provider: provider,
		api:      api,
		apiKey:   cfg.APIKey,
		model:    model,
	}, nil
}
