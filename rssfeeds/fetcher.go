// Package rssfeeds polls RSS/Atom subscriptions and imports new entries
// through the article extractor.
package rssfeeds

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"stash/extract"
)

// FeedItem is one entry of a fetched feed, trimmed to what the importer needs.
type FeedItem struct {
	GUID        string
	URL         string
	Title       string
	PublishedAt time.Time
}

// FeedSnapshot is the result of fetching one feed.
type FeedSnapshot struct {
	Title string
	Items []FeedItem
}

// FetchFeed retrieves and parses an RSS/Atom feed, returning up to maxItems
// entries in feed order.
func FetchFeed(ctx context.Context, feedURL string, maxItems int) (*FeedSnapshot, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = extract.UserAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	count := min(len(feed.Items), maxItems)
	snapshot := &FeedSnapshot{
		Title: feed.Title,
		Items: make([]FeedItem, 0, count),
	}

	for _, item := range feed.Items[:count] {
		if item.Link == "" {
			continue
		}

		// GUID falls back to the link; feeds without either are useless.
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		snapshot.Items = append(snapshot.Items, FeedItem{
			GUID:        guid,
			URL:         item.Link,
			Title:       item.Title,
			PublishedAt: publishedAt,
		})
	}

	return snapshot, nil
}
