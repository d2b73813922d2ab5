package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages caps how many pages of a PDF are extracted.
const maxPDFPages = 10

// extractPDF concatenates per-page plain text up to the page cap.
func extractPDF(body []byte, pageURL string) (*ExtractedPage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	totalPages := reader.NumPage()
	pages := totalPages
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var parts []string
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			// A single unreadable page does not invalidate the rest.
			continue
		}

		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, "\n\n")

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("PDF Document - %d pages", totalPages),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypePDF,
		Metadata: map[string]any{
			"pages":     totalPages,
			"file_size": len(body),
		},
	}, nil
}
