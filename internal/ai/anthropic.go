package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Compile-time interface check.
var _ Provider = (*AnthropicProvider)(nil)

const anthropicMaxTokens = 1024

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	model  string
	client anthropic.Client
}

// NewAnthropicProvider creates an AnthropicProvider. Retries are disabled:
// the pipeline degrades on failure instead of retrying.
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		model:  model,
		client: anthropic.NewClient(opts...),
	}
}

// Complete sends the prompts to the Messages API and concatenates the text
// blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	slog.Debug("calling Anthropic API", "model", p.model)

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("anthropic messages: empty response: no content blocks returned")
	}

	var b strings.Builder
	for _, block := range message.Content {
		b.WriteString(block.Text)
	}

	return &Completion{
		Text:       b.String(),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}
