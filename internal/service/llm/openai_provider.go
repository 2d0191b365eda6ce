package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You map relationships between study concepts and answer only with JSON."

// ChatCompleter is the part of the go-openai client the provider needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements Provider with the OpenAI chat completions API.
type OpenAIProvider struct {
	client ChatCompleter
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider creates a provider. baseURL may point at any
// OpenAI-compatible endpoint; empty means the public API.
func NewOpenAIProvider(apiKey, model, baseURL string, logger *zap.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewOpenAIProviderWithClient(openai.NewClientWithConfig(cfg), model, logger)
}

// NewOpenAIProviderWithClient creates a provider around an existing client.
func NewOpenAIProviderWithClient(client ChatCompleter, model string, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{client: client, model: model, logger: logger.Named("openai")}
}

// IsAvailable implements Provider.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.client != nil
}

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxCompletionTokens = options.MaxTokens
	}
	if options.Format == "json" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	p.logger.Debug("Requesting completion", zap.String("model", p.model))
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			p.logger.Warn("OpenAI API error",
				zap.Int("status", apiErr.HTTPStatusCode),
				zap.String("type", apiErr.Type),
			)
		}
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	p.logger.Debug("Received completion",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
