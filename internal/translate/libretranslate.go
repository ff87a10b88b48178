package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Compile-time interface check.
var _ Translator = (*LibreTranslate)(nil)

// LibreTranslate talks to a LibreTranslate-compatible /translate endpoint.
type LibreTranslate struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewLibreTranslate creates a client for the given base endpoint.
func NewLibreTranslate(endpoint, apiKey string) *LibreTranslate {
	return &LibreTranslate{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate implements Translator.
func (l *LibreTranslate) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: "auto",
		Target: libreLanguage(targetLanguage),
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var out libreResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("libretranslate error (status %d): %s", resp.StatusCode, out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out.TranslatedText, nil
}

// libreLanguage maps BCP 47 tags onto LibreTranslate's codes.
func libreLanguage(tag string) string {
	switch strings.ToLower(tag) {
	case "zh-tw", "zh-hant":
		return "zt"
	case "zh-cn", "zh-hans":
		return "zh"
	}
	if base, _, ok := strings.Cut(tag, "-"); ok {
		return strings.ToLower(base)
	}
	return strings.ToLower(tag)
}
