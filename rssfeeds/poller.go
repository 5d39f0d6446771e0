package rssfeeds

import (
	"context"
	"log"
	"time"

	"stash/config"
	"stash/metrics"
	"stash/types"
)

// FeedSource lists subscriptions due for a poll. *storage.Store satisfies it.
type FeedSource interface {
	DueFeeds(ctx context.Context, interval time.Duration) ([]*types.Feed, error)
	MarkFeedFetched(ctx context.Context, id, title string) error
}

// SeenSet remembers already-handled feed entries. *storage.SeenStore
// satisfies it.
type SeenSet interface {
	IsSeen(ctx context.Context, feedID, guid string) (bool, error)
	MarkSeen(ctx context.Context, feedID, guid string) error
}

// PublishFunc hands an import job to a queue. When nil, the poller imports
// inline instead.
type PublishFunc func(job types.ImportJob) error

// Poller periodically fetches due feeds and routes their new entries to the
// importer, either directly or through a queue.
type Poller struct {
	feeds    FeedSource
	seen     SeenSet
	importer *Importer
	publish  PublishFunc
	interval time.Duration
}

// NewPoller wires a poller. publish may be nil for inline imports.
func NewPoller(feeds FeedSource, seen SeenSet, importer *Importer, publish PublishFunc, interval time.Duration) *Poller {
	return &Poller{
		feeds:    feeds,
		seen:     seen,
		importer: importer,
		publish:  publish,
		interval: interval,
	}
}

// Run polls on the configured interval until ctx is canceled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil {
			log.Printf("Feed poll failed: %v", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// PollOnce fetches every due feed once. A failing feed is logged and skipped;
// the remaining feeds still run.
func (p *Poller) PollOnce(ctx context.Context) error {
	due, err := p.feeds.DueFeeds(ctx, p.interval)
	if err != nil {
		return err
	}

	for _, feed := range due {
		if err := p.pollFeed(ctx, feed); err != nil {
			metrics.FeedPollsTotal.WithLabelValues("error").Inc()
			log.Printf("Failed to poll feed %s: %v", feed.URL, err)
			continue
		}
		metrics.FeedPollsTotal.WithLabelValues("ok").Inc()
	}
	return nil
}

func (p *Poller) pollFeed(ctx context.Context, feed *types.Feed) error {
	snapshot, err := FetchFeed(ctx, feed.URL, config.FeedItemLimit)
	if err != nil {
		return err
	}

	var jobs []types.ImportJob
	for _, item := range snapshot.Items {
		seen, err := p.seen.IsSeen(ctx, feed.ID, item.GUID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}
		if err := p.seen.MarkSeen(ctx, feed.ID, item.GUID); err != nil {
			return err
		}

		jobs = append(jobs, types.ImportJob{
			UserID:    feed.UserID,
			FeedID:    feed.ID,
			URL:       item.URL,
			FeedTitle: snapshot.Title,
		})
	}

	if len(jobs) > 0 {
		if p.publish != nil {
			for _, job := range jobs {
				if err := p.publish(job); err != nil {
					return err
				}
			}
			log.Printf("Queued %d new item(s) from %s", len(jobs), feed.URL)
		} else {
			stats := p.importer.ImportAll(ctx, jobs)
			log.Printf("Imported %d/%d new item(s) from %s (%d duplicate, %d failed)",
				stats.Imported, len(jobs), feed.URL, stats.Duplicates, stats.Failed)
		}
	}

	return p.feeds.MarkFeedFetched(ctx, feed.ID, snapshot.Title)
}
