package ai

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "openai" | "anthropic"
	APIKey   string
	Model    string

	// BaseURL overrides the provider's API endpoint. Empty uses the default.
	BaseURL string
}

// Completion is the text of a model reply plus the tokens it consumed.
type Completion struct {
	Text       string
	TokensUsed int
}

// Analysis is the structured reply expected from the analysis prompt.
type Analysis struct {
	Summary    Highlights `json:"summary"`
	Keywords   []string   `json:"keywords"`
	Sentiment  string     `json:"sentiment"`
	Entities   []string   `json:"entities"`
	TokensUsed int        `json:"tokens_used,omitempty"`
}
