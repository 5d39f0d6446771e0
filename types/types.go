// Package types holds the records shared across the stash services.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Kinds of saved items.
const (
	KindArticle     = "article"
	KindBook        = "book"
	KindBookmark    = "bookmark"
	KindInspiration = "inspiration"
)

// Item is a saved entry in a user's stash, with extracted content when the
// kind carries one.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	SavedAt     time.Time `json:"saved_at"`
	Archived    bool      `json:"archived"`
	Tags        []string  `json:"tags,omitempty"`
}

// Tag is a label with its usage count for one user.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Highlight is an annotated passage of a saved item.
type Highlight struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Quote     string    `json:"quote"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is an RSS/Atom subscription whose new entries auto-import.
type Feed struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	URL           string    `json:"url"`
	Title         string    `json:"title,omitempty"`
	AddedAt       time.Time `json:"added_at"`
	LastFetchedAt time.Time `json:"last_fetched_at,omitzero"`
}

// ImportJob is the message handed from the feed poller to the importer.
type ImportJob struct {
	UserID    string `json:"user_id"`
	FeedID    string `json:"feed_id"`
	URL       string `json:"url"`
	FeedTitle string `json:"feed_title,omitempty"`
}

// GenerateID creates a short, stable ID by hashing the provided string input.
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
