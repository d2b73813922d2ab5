package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Preview bounds for tabular formats.
const (
	maxSpreadsheetRows = 20
	maxCSVLines        = 20
)

// extractSpreadsheet renders a structured text preview of the first sheet:
// header row plus the first rows of data.
func extractSpreadsheet(body []byte, pageURL string) (*ExtractedPage, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, rowsErr := f.GetRows(sheets[0])
	if rowsErr != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], rowsErr)
	}

	var columns int
	var parts []string
	parts = append(parts, fmt.Sprintf("Sheet: %s", sheets[0]))

	if len(rows) > 0 {
		columns = len(rows[0])
		parts = append(parts, fmt.Sprintf("Columns: %s", strings.Join(rows[0], " | ")))
	}

	parts = append(parts, "Data Preview:")
	preview := rows
	if len(preview) > 1 {
		preview = preview[1:]
	}
	if len(preview) > maxSpreadsheetRows {
		preview = preview[:maxSpreadsheetRows]
	}
	for _, row := range preview {
		parts = append(parts, strings.Join(row, " | "))
	}

	text := strings.Join(parts, "\n")

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("Spreadsheet - %d rows, %d columns", len(rows), columns),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeSpreadsheet,
		Metadata: map[string]any{
			"sheets":    len(sheets),
			"rows":      len(rows),
			"columns":   columns,
			"file_size": len(body),
		},
	}, nil
}

// extractCSV renders a line preview of encoding-sniffed CSV text.
func extractCSV(body []byte, pageURL string) (*ExtractedPage, error) {
	decoded, charset := decodeText(body)
	lines := strings.Split(decoded, "\n")

	preview := lines
	if len(preview) > maxCSVLines {
		preview = preview[:maxCSVLines]
	}

	parts := append([]string{"CSV Data Preview:"}, preview...)
	text := strings.Join(parts, "\n")

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("CSV File - %d lines", len(lines)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeCSV,
		Metadata: map[string]any{
			"lines":     len(lines),
			"encoding":  charset,
			"file_size": len(body),
		},
	}, nil
}
