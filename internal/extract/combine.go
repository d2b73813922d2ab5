package extract

import (
	"fmt"
	"sort"
	"strings"
)

// MaxCombinedChars bounds the combined multi-page document handed to the
// analyzer.
const MaxCombinedChars = 75000

// typeBannerWidth is the width of the section banner around each content
// type group.
const typeBannerWidth = 50

// minTruncatedPageChars is the smallest partial page worth including when
// the combined budget is nearly exhausted.
const minTruncatedPageChars = 100

// CombinedDocument is the bounded concatenation of all usable pages from a
// crawl, grouped by content type.
type CombinedDocument struct {
	Title       string
	Description string
	Content     string
	WordCount   int
	PageCount   int
	TypeCounts  map[ContentType]int
}

// Combine groups pages by content type and concatenates them under type
// banners, stopping at the combined budget. The first page supplies the
// document title. Pages are appended in crawl order within each group, so
// content discovered later is what gets truncated first.
func Combine(pages []*ExtractedPage) *CombinedDocument {
	if len(pages) == 0 {
		return &CombinedDocument{TypeCounts: map[ContentType]int{}}
	}

	typeCounts := map[ContentType]int{}
	groups := map[ContentType][]*ExtractedPage{}
	var order []ContentType

	for _, page := range pages {
		if _, seen := groups[page.Type]; !seen {
			order = append(order, page.Type)
		}
		groups[page.Type] = append(groups[page.Type], page)
		typeCounts[page.Type]++
	}

	var b strings.Builder
	wordCount := 0

	for _, ctype := range order {
		if b.Len() >= MaxCombinedChars {
			break
		}

		banner := fmt.Sprintf("\n%s\n%s CONTENT (%d pages)\n%s\n",
			strings.Repeat("=", typeBannerWidth),
			strings.ToUpper(string(ctype)),
			len(groups[ctype]),
			strings.Repeat("=", typeBannerWidth),
		)
		if b.Len()+len(banner) > MaxCombinedChars {
			break
		}
		b.WriteString(banner)

		for _, page := range groups[ctype] {
			section := fmt.Sprintf("\n--- %s (%s) ---\n%s", page.Title, page.URL, page.Text)

			remaining := MaxCombinedChars - b.Len()
			if len(section) <= remaining {
				b.WriteString(section)
				wordCount += page.WordCount
				continue
			}

			// Explicit truncation of the overflowing page, never rewriting.
			if remaining > minTruncatedPageChars {
				b.WriteString(truncateValid(section, remaining-3) + "...")
			}
			break
		}
	}

	first := pages[0]

	return &CombinedDocument{
		Title:       first.Title,
		Description: describeCombined(pages, typeCounts),
		Content:     b.String(),
		WordCount:   wordCount,
		PageCount:   len(pages),
		TypeCounts:  typeCounts,
	}
}

// describeCombined summarizes what a crawl found, e.g.
// "Crawled 4 pages - Types: html(3), pdf(1)".
func describeCombined(pages []*ExtractedPage, typeCounts map[ContentType]int) string {
	types := make([]string, 0, len(typeCounts))
	for ctype, count := range typeCounts {
		types = append(types, fmt.Sprintf("%s(%d)", ctype, count))
	}
	sort.Strings(types)

	return fmt.Sprintf("Crawled %d pages - Types: %s", len(pages), strings.Join(types, ", "))
}
