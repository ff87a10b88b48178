package ai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Compile-time interface check.
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAIProvider. A non-empty baseURL points the
// client at an OpenAI-compatible endpoint.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Complete sends the prompts as a system and a user message and returns the
// first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	slog.Debug("calling OpenAI API", "model", p.model)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: empty response: no choices returned")
	}

	return &Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
