package extract

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Feed preview bounds.
const (
	maxFeedEntries         = 10
	maxFeedSummaryChars    = 500
)

// extractFeed renders an RSS/Atom feed as feed metadata plus a bounded
// preview of recent entries.
func extractFeed(body []byte, pageURL string) (*ExtractedPage, error) {
	decoded, _ := decodeText(body)

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Feed Title: %s", feed.Title))
	if feed.Description != "" {
		parts = append(parts, fmt.Sprintf("Feed Description: %s", feed.Description))
	}
	parts = append(parts, fmt.Sprintf("Total Entries: %d", len(feed.Items)))

	entries := feed.Items
	if len(entries) > maxFeedEntries {
		entries = entries[:maxFeedEntries]
	}

	for i, item := range entries {
		parts = append(parts, fmt.Sprintf("\n--- Entry %d ---", i+1))
		parts = append(parts, fmt.Sprintf("Title: %s", item.Title))
		if item.Link != "" {
			parts = append(parts, fmt.Sprintf("Link: %s", item.Link))
		}
		if summary := strings.TrimSpace(item.Description); summary != "" {
			if len(summary) > maxFeedSummaryChars {
				summary = summary[:maxFeedSummaryChars] + "..."
			}
			parts = append(parts, fmt.Sprintf("Summary: %s", summary))
		}
	}

	text := strings.Join(parts, "\n")

	title := feed.Title
	if title == "" {
		title = titleFromURL(pageURL)
	}

	feedType := feed.FeedType
	if feedType == "" {
		feedType = "rss"
	}

	return &ExtractedPage{
		URL:         pageURL,
		Title:       title,
		Description: fmt.Sprintf("RSS/Atom Feed - %d entries", len(feed.Items)),
		Text:        text,
		WordCount:   countWords(text),
		Type:        TypeFeed,
		Metadata: map[string]any{
			"entries":   len(feed.Items),
			"feed_type": feedType,
		},
	}, nil
}
