// Package feed watches RSS and Atom feeds and turns new entries into
// resolution work. Polling state lives in SQLite so restarts never
// re-process old entries.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// httpPrefix is the scheme prefix used to decide whether a GUID is a
// usable URL.
const httpPrefix = "http"

// Item is a single entry discovered in a feed.
type Item struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
}

// ParseFeed parses an RSS or Atom body and returns the discovered items.
// Entries without a usable link are silently skipped. An empty feed
// returns a non-nil empty slice.
func ParseFeed(ctx context.Context, body string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		link := extractLink(entry)
		if link == "" {
			continue
		}

		items = append(items, Item{
			URL:         link,
			Title:       entry.Title,
			PublishedAt: formatPublishedAt(entry.PublishedParsed),
		})
	}

	return items, nil
}

// extractLink returns the best available URL from a feed entry,
// preferring the explicit link and falling back to a URL-shaped GUID.
func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}
	return ""
}

// formatPublishedAt converts a parsed time pointer to an RFC3339 string,
// empty when the feed carried no date.
func formatPublishedAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
