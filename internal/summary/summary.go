// Package summary asks a local Ollama model for a narrative over the
// pull-request statistics tables.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/roivaz/repo-insights/internal/logging"
)

type Config struct {
	Model       string
	OllamaURL   string
	TokenBudget int
	CallTimeout time.Duration
}

type Summarizer interface {
	Summarize(ctx context.Context, stats string) (string, error)
}

type Client struct {
	llm    llms.Model
	budget int
	to     time.Duration
	log    logging.Logger
}

func New(cfg Config, log logging.Logger) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model name is required")
	}
	llm, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.OllamaURL),
		ollama.WithKeepAlive("5m"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewWithModel(llm, cfg, log), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(llm llms.Model, cfg Config, log logging.Logger) *Client {
	return &Client{llm: llm, budget: cfg.TokenBudget, to: cfg.CallTimeout, log: log}
}

func (c *Client) Summarize(ctx context.Context, stats string) (string, error) {
	prompt, truncated := BuildPrompt(stats, c.budget)
	if truncated {
		c.log.Info("summary prompt truncated", "budget", c.budget)
	}
	c.log.Debug("requesting summary", "tokens", estimateTokens(prompt))

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", c.annotateError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty summary response")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *Client) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", c.to, err)
	}
	return err
}
