package rssfeeds

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"stash/extract"
	"stash/metrics"
	"stash/storage"
	"stash/types"
)

// Saver persists extracted articles. *storage.Store satisfies it.
type Saver interface {
	SaveItem(ctx context.Context, item *types.Item) (string, error)
}

// ImportStats summarizes one import batch.
type ImportStats struct {
	Imported   int
	Duplicates int
	Failed     int
}

// Importer extracts articles from feed item URLs and saves them. Failures
// are isolated per item; one bad URL never aborts a batch.
type Importer struct {
	store   Saver
	workers int
}

// NewImporter creates an importer running up to workers concurrent
// extractions per batch.
func NewImporter(store Saver, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{store: store, workers: workers}
}

// ImportOne extracts and saves a single feed item. A URL already saved for
// the user counts as a duplicate, not an error.
func (im *Importer) ImportOne(ctx context.Context, job types.ImportJob) error {
	_, err := im.importOne(ctx, job)
	return err
}

func (im *Importer) importOne(ctx context.Context, job types.ImportJob) (result string, err error) {
	start := time.Now()
	article, err := extract.FromURL(ctx, job.URL)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		metrics.ItemsImportedTotal.WithLabelValues("failed").Inc()
		return "failed", err
	}
	metrics.ExtractionsTotal.WithLabelValues("ok").Inc()

	item := &types.Item{
		UserID:      job.UserID,
		URL:         job.URL,
		Kind:        types.KindArticle,
		Title:       article.Title,
		Content:     article.Content,
		Excerpt:     article.Excerpt,
		ImageURL:    article.ImageURL,
		Author:      article.Author,
		PublishedAt: article.PublishedAt,
	}

	if _, err := im.store.SaveItem(ctx, item); err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			metrics.ItemsImportedTotal.WithLabelValues("duplicate").Inc()
			return "duplicate", nil
		}
		metrics.ItemsImportedTotal.WithLabelValues("failed").Inc()
		return "failed", err
	}

	metrics.ItemsImportedTotal.WithLabelValues("imported").Inc()
	return "imported", nil
}

// ImportAll runs a batch of jobs through a worker pool and reports how each
// item fared. Errors are logged per item and the rest of the batch continues.
func (im *Importer) ImportAll(ctx context.Context, jobs []types.ImportJob) ImportStats {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stats   ImportStats
		jobChan = make(chan types.ImportJob)
	)

	for i := 0; i < im.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				result, err := im.importOne(ctx, job)
				if err != nil {
					log.Printf("[worker %d] failed to import %s: %v", workerID, job.URL, err)
				}

				mu.Lock()
				switch result {
				case "imported":
					stats.Imported++
				case "duplicate":
					stats.Duplicates++
				default:
					stats.Failed++
				}
				mu.Unlock()
			}
		}(i)
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()

	return stats
}
