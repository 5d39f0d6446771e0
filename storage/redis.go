package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stash/types"
)

const seenKeyPrefix = "stash:seen:"

// SeenStore remembers which feed entries were already imported, so polling
// the same feed repeatedly does not re-extract old items. Entries expire
// after the configured TTL.
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenStore connects to Redis and verifies connectivity.
func NewSeenStore(addr, password string, ttl time.Duration) (*SeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &SeenStore{client: client, ttl: ttl}, nil
}

func (s *SeenStore) key(feedID, guid string) string {
	return seenKeyPrefix + feedID + ":" + types.GenerateID(guid)
}

// MarkSeen records that a feed entry has been handled.
func (s *SeenStore) MarkSeen(ctx context.Context, feedID, guid string) error {
	return s.client.Set(ctx, s.key(feedID, guid), "1", s.ttl).Err()
}

// IsSeen reports whether a feed entry was handled recently.
func (s *SeenStore) IsSeen(ctx context.Context, feedID, guid string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(feedID, guid)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Close releases the Redis connection.
func (s *SeenStore) Close() error {
	return s.client.Close()
}
