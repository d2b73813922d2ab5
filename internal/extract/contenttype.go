// Package extract classifies fetched responses by content type and runs a
// dedicated extraction routine per type, producing a normalized page that
// the analyzer consumes. Extracted text is never rewritten; any truncation
// is explicit and length-bounded.
package extract

import (
	"net/url"
	"strings"
)

// ContentType tags the extraction routine for a fetched response.
type ContentType string

const (
	TypeHTML        ContentType = "html"
	TypePDF         ContentType = "pdf"
	TypeWord        ContentType = "word"
	TypeSpreadsheet ContentType = "spreadsheet"
	TypeCSV         ContentType = "csv"
	TypeJSON        ContentType = "json"
	TypeXML         ContentType = "xml"
	TypeFeed        ContentType = "feed"
	TypePlainText   ContentType = "text"
)

// headerMatchers maps Content-Type header substrings to content types, in
// check order.
var headerMatchers = []struct {
	substr string
	ctype  ContentType
}{
	{"application/pdf", TypePDF},
	{"application/msword", TypeWord},
	{"wordprocessingml", TypeWord},
	{"application/vnd.ms-excel", TypeSpreadsheet},
	{"spreadsheetml", TypeSpreadsheet},
	{"text/csv", TypeCSV},
	{"application/json", TypeJSON},
	{"application/rss+xml", TypeXML},
	{"application/atom+xml", TypeXML},
	{"application/xml", TypeXML},
	{"text/xml", TypeXML},
	{"text/plain", TypePlainText},
}

// extensionMatchers maps URL path extensions to content types.
var extensionMatchers = map[string]ContentType{
	".pdf":  TypePDF,
	".doc":  TypeWord,
	".docx": TypeWord,
	".xls":  TypeSpreadsheet,
	".xlsx": TypeSpreadsheet,
	".csv":  TypeCSV,
	".json": TypeJSON,
	".xml":  TypeXML,
	".rss":  TypeXML,
	".atom": TypeXML,
	".txt":  TypePlainText,
	".md":   TypePlainText,
}

// DetectContentType classifies a response. The Content-Type header wins,
// then the URL path extension; everything else defaults to HTML. XML bodies
// that look like RSS or Atom feeds are reclassified as feeds.
func DetectContentType(contentTypeHeader, rawURL string, body []byte) ContentType {
	detected := detectFromHeader(contentTypeHeader)
	if detected == "" {
		detected = detectFromExtension(rawURL)
	}
	if detected == "" {
		detected = TypeHTML
	}

	if detected == TypeXML && looksLikeFeed(body) {
		return TypeFeed
	}

	return detected
}

func detectFromHeader(header string) ContentType {
	header = strings.ToLower(header)
	if header == "" {
		return ""
	}

	for _, m := range headerMatchers {
		if strings.Contains(header, m.substr) {
			return m.ctype
		}
	}

	return ""
}

func detectFromExtension(rawURL string) ContentType {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.ToLower(parsed.Path)
	for ext, ctype := range extensionMatchers {
		if strings.HasSuffix(path, ext) {
			return ctype
		}
	}

	return ""
}

// feedProbeBytes bounds how much of the body is inspected for feed markers.
const feedProbeBytes = 2048

// looksLikeFeed reports whether an XML body carries RSS or Atom markers.
func looksLikeFeed(body []byte) bool {
	probe := body
	if len(probe) > feedProbeBytes {
		probe = probe[:feedProbeBytes]
	}

	lower := strings.ToLower(string(probe))
	return strings.Contains(lower, "<rss") || strings.Contains(lower, "<feed")
}
