package extract

import (
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// maxPlainTextChars caps plain text passthrough.
const maxPlainTextChars = 10000

// truncateValid cuts s to at most max bytes, backing the cut up so it
// never lands inside a multi-byte rune. The result is always valid UTF-8
// when the input is.
func truncateValid(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// decodeText sniffs the byte encoding and decodes to UTF-8. Falls back to
// treating the input as UTF-8 when detection or decoding fails.
func decodeText(data []byte) (text, charset string) {
	if utf8.Valid(data) {
		return string(data), "UTF-8"
	}

	detector := chardet.NewTextDetector()
	best, err := detector.DetectBest(data)
	if err != nil {
		return string(data), "UTF-8"
	}

	enc, encErr := htmlindex.Get(best.Charset)
	if encErr != nil {
		return string(data), best.Charset
	}

	decoded, decErr := enc.NewDecoder().Bytes(data)
	if decErr != nil {
		return string(data), best.Charset
	}

	return string(decoded), best.Charset
}

// extractPlainText is an encoding-sniffed passthrough with an explicit
// length cap. The text itself is never rewritten.
func extractPlainText(body []byte, pageURL string) (*ExtractedPage, error) {
	decoded, charset := decodeText(body)

	text := truncateValid(decoded, maxPlainTextChars)

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("Text File - %d characters", len(decoded)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypePlainText,
		Metadata: map[string]any{
			"encoding":  charset,
			"file_size": len(body),
		},
	}, nil
}
