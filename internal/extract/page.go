package extract

import (
	"net/url"
	"strings"
)

// minUsableTextLength is the quality floor: pages with less extracted text
// carry no usable content and are excluded rather than treated as errors.
const minUsableTextLength = 50

// boilerplateTitles are lowercase title fragments that mark interstitial or
// error pages rather than content.
var boilerplateTitles = []string{
	"404",
	"page not found",
	"access denied",
	"just a moment",
	"attention required",
	"are you a robot",
	"error",
}

// ExtractedPage is the normalized output of one extraction.
type ExtractedPage struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Text        string         `json:"text"`
	WordCount   int            `json:"word_count"`
	Type        ContentType    `json:"content_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// IsUsable reports whether the page clears the content quality floor.
func (p *ExtractedPage) IsUsable() bool {
	if p == nil {
		return false
	}

	if len(strings.TrimSpace(p.Text)) < minUsableTextLength {
		return false
	}

	title := strings.ToLower(p.Title)
	for _, bp := range boilerplateTitles {
		if title == bp || strings.HasPrefix(title, bp+" ") || strings.HasPrefix(title, bp+":") {
			return false
		}
	}

	return true
}

// countWords counts whitespace-separated tokens.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// titleFromURL derives a readable title from the URL's last path segment
// when the content itself carries none.
func titleFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "Document"
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	name := segments[len(segments)-1]
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Document"
	}

	return strings.Title(name) //nolint:staticcheck // ASCII URL slugs only
}
