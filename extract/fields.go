package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// source yields one candidate value for a metadata field, or "".
type source func(doc *goquery.Document) string

// Fallback chains, first non-empty value wins. Order is load-bearing.
var (
	titleSources = []source{
		metaContent(`meta[property="og:title"]`),
		metaContent(`meta[name="twitter:title"]`),
		elementText("h1"),
		elementText("title"),
	}

	authorSources = []source{
		metaContent(`meta[name="author"]`),
		metaContent(`meta[property="article:author"]`),
		metaContent(`meta[name="twitter:creator"]`),
		elementText("[rel=author]"),
	}

	imageSources = []source{
		metaContent(`meta[property="og:image"]`),
		metaContent(`meta[name="twitter:image"]`),
		elementAttr("article img, main img", "src"),
	}

	dateSources = []source{
		metaContent(`meta[property="article:published_time"]`),
		metaContent(`meta[name="publish-date"]`),
		elementAttr("time[datetime]", "datetime"),
	}
)

func metaContent(selector string) source {
	return elementAttr(selector, "content")
}

func elementAttr(selector, attr string) source {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().AttrOr(attr, ""))
	}
}

func elementText(selector string) source {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

func firstNonEmpty(doc *goquery.Document, sources []source) string {
	for _, src := range sources {
		if v := src(doc); v != "" {
			return v
		}
	}
	return ""
}

func extractTitle(doc *goquery.Document) string {
	title := firstNonEmpty(doc, titleSources)
	if title == "" {
		title = "Untitled"
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	return title
}

func extractAuthor(doc *goquery.Document) string {
	return firstNonEmpty(doc, authorSources)
}

// extractImage returns the canonical image as an absolute URL, or "" when
// no candidate survives validation.
func extractImage(doc *goquery.Document, baseURL string) string {
	candidate := firstNonEmpty(doc, imageSources)
	if candidate == "" {
		return ""
	}
	abs := AbsoluteURL(candidate, baseURL)
	if !validURL(abs) {
		return ""
	}
	return abs
}

// extractPublishedAt parses the publish date from metadata. An unparseable
// date yields the zero time, never an error.
func extractPublishedAt(doc *goquery.Document) time.Time {
	raw := firstNonEmpty(doc, dateSources)
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
