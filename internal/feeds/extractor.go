package feeds

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// browserHeaders sets browser-like request headers so publishers that check
// Accept or User-Agent do not reject the article request.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; rssdaily/1.0; +https://github.com/robinaudi/c-level-rss-daily)")
}

// extractFullText fetches the web page at the given URL and returns its main
// readable text content using go-readability.
func extractFullText(url string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(url, timeout, browserHeaders)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}
