package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// wordDocumentEntry is the main document part inside a .docx archive.
const wordDocumentEntry = "word/document.xml"

// extractWord extracts paragraph text from a .docx file. A .docx is a zip
// archive whose main part is WordprocessingML; paragraph (<w:p>) and run
// text (<w:t>) elements carry the content. Legacy binary .doc files are
// not supported.
func extractWord(body []byte, pageURL string) (*ExtractedPage, error) {
	reader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive (legacy .doc is unsupported): %w", err)
	}

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == wordDocumentEntry {
			document = f
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("docx missing %s", wordDocumentEntry)
	}

	rc, openErr := document.Open()
	if openErr != nil {
		return nil, fmt.Errorf("open %s: %w", wordDocumentEntry, openErr)
	}
	defer rc.Close()

	paragraphs, parseErr := wordParagraphs(rc)
	if parseErr != nil {
		return nil, fmt.Errorf("parse %s: %w", wordDocumentEntry, parseErr)
	}

	text := strings.Join(paragraphs, "\n\n")

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("Word Document - %d paragraphs", len(paragraphs)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeWord,
		Metadata: map[string]any{
			"paragraphs": len(paragraphs),
			"file_size":  len(body),
		},
	}, nil
}

// wordParagraphs walks WordprocessingML, grouping run text by paragraph.
func wordParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}

	return paragraphs, nil
}
