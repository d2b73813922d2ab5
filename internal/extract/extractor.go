package extract

import (
	"fmt"
)

// Extract classifies the raw response and delegates to the routine for its
// content type. Given identical bytes and URL the result is byte-identical;
// no extraction routine randomizes.
func Extract(body []byte, contentTypeHeader, pageURL string) (*ExtractedPage, error) {
	ctype := DetectContentType(contentTypeHeader, pageURL, body)
	return ExtractAs(ctype, body, pageURL)
}

// ExtractAs runs the extraction routine for an already-classified response.
func ExtractAs(ctype ContentType, body []byte, pageURL string) (*ExtractedPage, error) {
	switch ctype {
	case TypePDF:
		return extractPDF(body, pageURL)
	case TypeWord:
		return extractWord(body, pageURL)
	case TypeSpreadsheet:
		return extractSpreadsheet(body, pageURL)
	case TypeCSV:
		return extractCSV(body, pageURL)
	case TypeJSON:
		return extractJSON(body, pageURL)
	case TypeXML:
		return extractXML(body, pageURL)
	case TypeFeed:
		return extractFeed(body, pageURL)
	case TypePlainText:
		return extractPlainText(body, pageURL)
	case TypeHTML:
		return extractHTML(body, pageURL)
	default:
		return nil, fmt.Errorf("unknown content type %q", ctype)
	}
}
