// Package extract turns an arbitrary web page into a clean article record:
// title, author, publish date, canonical image, sanitized body HTML and a
// short excerpt. One bounded fetch, no DOM engine, hostile markup tolerated.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Field length caps. Fixed constants, not runtime parameters.
const (
	maxTitleLen   = 200
	maxContentLen = 500_000
	maxExcerptLen = 300
)

// Article is the pipeline's sole output. Empty string and zero time mean
// the field is absent.
type Article struct {
	URL         string
	Title       string
	Content     string
	Excerpt     string
	ImageURL    string
	Author      string
	PublishedAt time.Time
}

// FromURL fetches pageURL and extracts an article from it. Extraction is
// all-or-nothing: any failure surfaces as a *ParseError and no partial
// article is returned. Safe for concurrent use; each call owns its tree.
func FromURL(ctx context.Context, pageURL string) (article *Article, err error) {
	// Malformed markup edge cases inside the tree library surface as
	// panics; normalize them at this boundary like every other failure.
	defer func() {
		if r := recover(); r != nil {
			article = nil
			err = &ParseError{URL: pageURL, Err: fmt.Errorf("extraction failed: %v", r)}
		}
	}()

	body, err := fetch(ctx, pageURL)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	article, err = FromHTML(pageURL, body)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}
	return article, nil
}

// FromHTML extracts an article from already-fetched markup. pageURL is the
// base for URL absolutization.
func FromHTML(pageURL, html string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	root := findRoot(doc)

	return &Article{
		URL:         pageURL,
		Title:       extractTitle(doc),
		Content:     sanitizedContent(root, pageURL),
		Excerpt:     excerptText(root),
		ImageURL:    extractImage(doc, pageURL),
		Author:      extractAuthor(doc),
		PublishedAt: extractPublishedAt(doc),
	}, nil
}
