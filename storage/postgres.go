// Package storage persists stash items, tags, highlights and feed
// subscriptions in PostgreSQL, with a Redis-backed seen set for feed polling.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stash/types"
)

// Storage errors.
var (
	ErrDuplicateURL = errors.New("url already saved for this user")
	ErrNotFound     = errors.New("not found")
)

// Store is the PostgreSQL persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	url          TEXT NOT NULL,
	kind         TEXT NOT NULL DEFAULT 'article',
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	excerpt      TEXT NOT NULL DEFAULT '',
	image_url    TEXT NOT NULL DEFAULT '',
	author       TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ,
	saved_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	archived     BOOLEAN NOT NULL DEFAULT false,
	UNIQUE (user_id, url)
);

CREATE TABLE IF NOT EXISTS item_tags (
	item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	name    TEXT NOT NULL,
	PRIMARY KEY (item_id, name)
);

CREATE TABLE IF NOT EXISTS tags (
	user_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	count   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, name)
);

CREATE TABLE IF NOT EXISTS highlights (
	id         TEXT PRIMARY KEY,
	item_id    TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	quote      TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS feeds (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	url             TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	added_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_fetched_at TIMESTAMPTZ,
	UNIQUE (user_id, url)
);
`

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// SaveItem stores a new item and applies its tags. The same URL saved twice
// for one user is rejected with ErrDuplicateURL.
func (s *Store) SaveItem(ctx context.Context, item *types.Item) (string, error) {
	id := types.GenerateID(item.UserID + "|" + item.URL)
	if item.Kind == "" {
		item.Kind = types.KindArticle
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, user_id, url, kind, title, content, excerpt, image_url, author, published_at, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (user_id, url) DO NOTHING`,
		id, item.UserID, item.URL, item.Kind, item.Title, item.Content,
		item.Excerpt, item.ImageURL, item.Author, nullableTime(item.PublishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrDuplicateURL
	}

	for _, name := range item.Tags {
		if err := s.TagItem(ctx, item.UserID, id, name); err != nil {
			return "", err
		}
	}
	return id, nil
}

// GetItem loads a single item with its tags.
func (s *Store) GetItem(ctx context.Context, userID, id string) (*types.Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, url, kind, title, content, excerpt, image_url, author, published_at, saved_at, archived
		FROM items WHERE user_id = $1 AND id = $2`, userID, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT name FROM item_tags WHERE item_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		item.Tags = append(item.Tags, name)
	}
	return item, rows.Err()
}

// ListItems returns a user's items, newest first. Archived items are
// excluded unless includeArchived is set.
func (s *Store) ListItems(ctx context.Context, userID string, includeArchived bool) ([]*types.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, url, kind, title, content, excerpt, image_url, author, published_at, saved_at, archived
		FROM items
		WHERE user_id = $1 AND (archived = false OR $2)
		ORDER BY saved_at DESC`, userID, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteItem removes an item and settles its tag counts.
func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE tags SET count = count - 1
		WHERE user_id = $1 AND name IN (SELECT name FROM item_tags WHERE item_id = $2)`,
		userID, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tags WHERE user_id = $1 AND count <= 0`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetArchived flips the archived flag.
func (s *Store) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE items SET archived = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TagItem attaches a tag to an item and bumps the user's tag count.
// Re-tagging with the same name is a no-op.
func (s *Store) TagItem(ctx context.Context, userID, itemID, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO item_tags (item_id, name) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, itemID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO tags (user_id, name, count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, name) DO UPDATE SET count = tags.count + 1`,
		userID, name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UntagItem detaches a tag and settles the count, dropping the tag row when
// nothing uses it anymore.
func (s *Store) UntagItem(ctx context.Context, userID, itemID, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM item_tags WHERE item_id = $1 AND name = $2`, itemID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tags SET count = count - 1 WHERE user_id = $1 AND name = $2`,
		userID, name); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM tags WHERE user_id = $1 AND name = $2 AND count <= 0`,
		userID, name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListTags returns a user's tags with usage counts.
func (s *Store) ListTags(ctx context.Context, userID string) ([]types.Tag, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, count FROM tags WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// AddHighlight attaches an annotated passage to an item.
func (s *Store) AddHighlight(ctx context.Context, h *types.Highlight) (string, error) {
	id := types.GenerateID(h.ItemID + "|" + h.Quote + "|" + time.Now().String())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO highlights (id, item_id, quote, note, created_at)
		VALUES ($1, $2, $3, $4, now())`, id, h.ItemID, h.Quote, h.Note)
	if err != nil {
		return "", fmt.Errorf("inserting highlight: %w", err)
	}
	return id, nil
}

// ListHighlights returns an item's highlights, oldest first.
func (s *Store) ListHighlights(ctx context.Context, itemID string) ([]types.Highlight, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_id, quote, note, created_at
		FROM highlights WHERE item_id = $1 ORDER BY created_at`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hs []types.Highlight
	for rows.Next() {
		var h types.Highlight
		if err := rows.Scan(&h.ID, &h.ItemID, &h.Quote, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

// DeleteHighlight removes one highlight.
func (s *Store) DeleteHighlight(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM highlights WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFeed subscribes a user to a feed URL.
func (s *Store) AddFeed(ctx context.Context, userID, feedURL string) (*types.Feed, error) {
	feed := &types.Feed{
		ID:      types.GenerateID(userID + "|feed|" + feedURL),
		UserID:  userID,
		URL:     feedURL,
		AddedAt: time.Now(),
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO feeds (id, user_id, url, added_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, url) DO NOTHING`,
		feed.ID, feed.UserID, feed.URL, feed.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting feed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrDuplicateURL
	}
	return feed, nil
}

// ListFeeds returns a user's feed subscriptions.
func (s *Store) ListFeeds(ctx context.Context, userID string) ([]*types.Feed, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, url, title, added_at, last_fetched_at
		FROM feeds WHERE user_id = $1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

// DeleteFeed removes one subscription.
func (s *Store) DeleteFeed(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM feeds WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DueFeeds returns every feed not fetched within the given interval.
func (s *Store) DueFeeds(ctx context.Context, interval time.Duration) ([]*types.Feed, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, url, title, added_at, last_fetched_at
		FROM feeds
		WHERE last_fetched_at IS NULL OR last_fetched_at < now() - make_interval(secs => $1)
		ORDER BY added_at`, interval.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

// MarkFeedFetched records a successful poll and the feed's current title.
func (s *Store) MarkFeedFetched(ctx context.Context, id, title string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE feeds SET last_fetched_at = now(), title = COALESCE(NULLIF($2, ''), title)
		WHERE id = $1`, id, title)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*types.Item, error) {
	var item types.Item
	var publishedAt *time.Time
	err := row.Scan(&item.ID, &item.UserID, &item.URL, &item.Kind, &item.Title,
		&item.Content, &item.Excerpt, &item.ImageURL, &item.Author,
		&publishedAt, &item.SavedAt, &item.Archived)
	if err != nil {
		return nil, err
	}
	if publishedAt != nil {
		item.PublishedAt = *publishedAt
	}
	return &item, nil
}

func scanFeeds(rows pgx.Rows) ([]*types.Feed, error) {
	var feeds []*types.Feed
	for rows.Next() {
		var f types.Feed
		var lastFetched *time.Time
		if err := rows.Scan(&f.ID, &f.UserID, &f.URL, &f.Title, &f.AddedAt, &lastFetched); err != nil {
			return nil, err
		}
		if lastFetched != nil {
			f.LastFetchedAt = *lastFetched
		}
		feeds = append(feeds, &f)
	}
	return feeds, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
