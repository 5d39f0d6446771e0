// Package metrics exposes Prometheus counters for the extraction and feed
// import pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts article extractions by outcome (ok, error).
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_extractions_total",
			Help: "Total number of article extractions.",
		},
		[]string{"outcome"},
	)

	// ExtractionDuration observes how long a single extraction takes.
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stash_extraction_duration_seconds",
			Help:    "Duration of article extractions.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FeedPollsTotal counts feed poll attempts by outcome (ok, error).
	FeedPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_feed_polls_total",
			Help: "Total number of feed poll attempts.",
		},
		[]string{"outcome"},
	)

	// ItemsImportedTotal counts feed items by import result
	// (imported, duplicate, failed).
	ItemsImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_items_imported_total",
			Help: "Total number of feed items run through the importer.",
		},
		[]string{"result"},
	)
)
