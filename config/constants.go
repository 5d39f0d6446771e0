package config

import "time"

// Feed import constants
const (
	// ImportWorkers is the number of concurrent article extractions per batch
	ImportWorkers = 5

	// FeedItemLimit caps how many entries are considered per feed poll
	FeedItemLimit = 20

	// DefaultPollInterval is how often the poller looks for due feeds
	DefaultPollInterval = 15 * time.Minute

	// SeenTTL is how long a feed entry GUID stays in the seen set
	SeenTTL = 14 * 24 * time.Hour
)
