package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"alfredoptarigan/resume-structurer/internal/config"
)

type claudeGateway struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int64
}

// NewClaudeGateway builds a Claude-backed gateway. SDK retries are off so a
// parse makes at most one outbound call.
func NewClaudeGateway(cfg config.GatewayConfig) ExtractionGateway {
	model := anthropic.Model(cfg.Model)
	if model == "" || strings.HasPrefix(cfg.Model, "gemini") {
		model = anthropic.ModelClaudeSonnet4_5
	}

	return &claudeGateway{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		),
		model:       model,
		temperature: float64(cfg.Temperature),
		maxTokens:   int64(cfg.MaxTokens),
	}
}

func (c *claudeGateway) Name() string { return "claude" }

func (c *claudeGateway) Extract(ctx context.Context, resumeText string) (string, error) {
	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildExtractionPrompt(resumeText))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.StatusCode, fmt.Errorf("failed to call Claude API: %w", err))
		}
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var parts []string
	for _, block := range response.Content {
		if block.Type == "text" {
			parts = append(parts, block.AsText().Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text content in Claude response", ErrGatewayUnavailable)
	}
	return strings.Join(parts, ""), nil
}
