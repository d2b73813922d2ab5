package extract

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// maxStructuralDumpChars caps the pretty-printed structural dump of JSON
// and XML documents.
const maxStructuralDumpChars = 2000

// extractJSON pretty-prints the document as a bounded structural dump.
func extractJSON(body []byte, pageURL string) (*ExtractedPage, error) {
	decoded, charset := decodeText(body)

	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(decoded), "", "  "); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	dump := truncateValid(indented.String(), maxStructuralDumpChars)

	text := "JSON Structure:\n\n" + dump

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("JSON Data - %d characters", len(decoded)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeJSON,
		Metadata: map[string]any{
			"encoding":  charset,
			"file_size": len(body),
		},
	}, nil
}

// extractXML walks the element tree and renders an indented dump of tags
// and character data, bounded to the structural dump cap.
func extractXML(body []byte, pageURL string) (*ExtractedPage, error) {
	decoded, charset := decodeText(body)

	dump, err := xmlToText(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	dump = truncateValid(dump, maxStructuralDumpChars)

	text := "XML Structure:\n\n" + dump

	return &ExtractedPage{
		URL:         pageURL,
		Title:       titleFromURL(pageURL),
		Description: fmt.Sprintf("XML Document - %d characters", len(decoded)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeXML,
		Metadata: map[string]any{
			"encoding":  charset,
			"file_size": len(body),
		},
	}, nil
}

// xmlToText renders an indented tag/text dump of an XML document.
func xmlToText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	// Tolerate the loose charset declarations common in the wild; the body
	// was already decoded to UTF-8.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var b strings.Builder
	depth := 0
	sawRoot := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			sawRoot = true
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString("<" + t.Name.Local + ">")
			b.WriteString("\n")
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				b.WriteString(strings.Repeat("  ", depth))
				b.WriteString(text)
				b.WriteString("\n")
			}
		}

		if b.Len() > maxStructuralDumpChars*2 {
			break
		}
	}

	if !sawRoot {
		return "", fmt.Errorf("no xml elements found")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
