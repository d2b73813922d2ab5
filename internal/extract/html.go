package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order of preference when isolating the main
// content region of a page.
var contentSelectors = []string{
	"main",
	"[role='main']",
	".content",
	".main-content",
	"#content",
	"#main",
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".page-content",
	".text-content",
}

// minSelectorTextLength is the minimum text a selector match must yield to
// be accepted over the paragraph and body fallbacks.
const minSelectorTextLength = 100

// nonContentSelectors lists elements stripped before extracting body text.
const nonContentSelectors = "script, style, nav, header, footer"

// extractHTML parses an HTML page and isolates its title, description, and
// main text.
func extractHTML(body []byte, pageURL string) (*ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := extractPageTitle(doc)
	if title == "" {
		title = titleFromURL(pageURL)
	}

	text := extractMainContent(doc)

	return &ExtractedPage{
		URL:         pageURL,
		Title:       title,
		Description: extractMetaDescription(doc),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeHTML,
	}, nil
}

// extractPageTitle extracts the page title, preferring <title>, then h1,
// then og:title.
func extractPageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}

	return ""
}

// extractMetaDescription extracts the description from meta tags.
func extractMetaDescription(doc *goquery.Document) string {
	if desc, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		return strings.TrimSpace(desc)
	}

	if ogDesc, exists := doc.Find("meta[property='og:description']").Attr("content"); exists {
		return strings.TrimSpace(ogDesc)
	}

	if twDesc, exists := doc.Find("meta[name='twitter:description']").Attr("content"); exists {
		return strings.TrimSpace(twDesc)
	}

	return ""
}

// extractMainContent isolates body text: content selector cascade first,
// then all paragraphs, then the stripped body.
func extractMainContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}

		region.Find(nonContentSelectors).Remove()
		text := normalizeWhitespace(region.Text())
		if len(text) >= minSelectorTextLength {
			return text
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if joined := strings.Join(paragraphs, "\n\n"); len(joined) >= minSelectorTextLength {
		return joined
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	body.Find(nonContentSelectors).Remove()

	return normalizeWhitespace(body.Text())
}

// normalizeWhitespace collapses runs of whitespace introduced by DOM text
// concatenation. It does not alter the words themselves.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
