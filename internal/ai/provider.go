package ai

import (
	"context"
	"fmt"
)

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Complete sends one system + user prompt pair and returns the reply
	// text with the provider-reported token usage.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
