package feeds

import (
	"math"
	"strings"
	"unicode/utf8"
)

// charsPerMinute is the reading speed used for the estimate. Summaries are
// often CJK after translation, so characters are counted rather than words.
const charsPerMinute = 300

// CalculateReadingTime estimates reading time in minutes for the given text
// as round(characters / 300), with a floor of 1 minute. Empty text returns 0.
func CalculateReadingTime(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	minutes := int(math.Round(float64(utf8.RuneCountInString(text)) / charsPerMinute))
	return max(1, minutes)
}
