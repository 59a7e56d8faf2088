package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"alfredoptarigan/resume-structurer/internal/config"
)

type geminiGateway struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
}

func NewGeminiGateway(ctx context.Context, cfg config.GatewayConfig) (ExtractionGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGateway{
		client:      client,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (g *geminiGateway) Name() string { return "gemini" }

// Extract implements ExtractionGateway.
func (g *geminiGateway) Extract(ctx context.Context, resumeText string) (string, error) {
	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(BuildExtractionPrompt(resumeText)), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.Code, fmt.Errorf("failed to generate content: %s", apiErr.Message))
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: empty gemini response", ErrGatewayUnavailable)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in gemini response", ErrGatewayUnavailable)
	}
	return text, nil
}
