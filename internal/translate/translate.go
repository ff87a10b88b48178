// Package translate provides title translation backends.
package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/robinaudi/c-level-rss-daily/internal/ai"
	"github.com/robinaudi/c-level-rss-daily/internal/config"
)

// ErrDisabled is returned by the no-op translator.
var ErrDisabled = errors.New("translation disabled")

// Translator renders text in a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Noop always fails with ErrDisabled, which makes the enrichment stage keep
// the original title.
type Noop struct{}

// Translate implements Translator.
func (Noop) Translate(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

// New picks a backend from config. provider may be nil when no AI key is
// configured; the "ai" backend then degrades to Noop.
func New(cfg config.TranslationConfig, provider ai.Provider) (Translator, error) {
	switch cfg.Provider {
	case "ai":
		if provider == nil {
			return Noop{}, nil
		}
		return ai.NewTranslator(provider), nil
	case "libretranslate":
		return NewLibreTranslate(cfg.Endpoint, cfg.APIKey), nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Provider)
	}
}
