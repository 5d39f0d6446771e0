package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order; the first match in document order
// becomes the article root. body is the guaranteed fallback.
var contentSelectors = []string{"article", "main", "[role=main]", "body"}

// strippedTags never contain article content.
var strippedTags = []string{"script", "style", "nav", "header", "footer", "aside", "iframe", "noscript"}

// clutterMarkers flag promotional and social elements by class or id
// substring. Matching is case-sensitive; either attribute is enough.
var clutterMarkers = []string{
	"ad",
	"advertisement",
	"social-share",
	"comments",
	"related-posts",
	"popup",
	"modal",
	"overlay",
	"webmention",
	"like",
	"reaction",
	"share",
	"follow",
	"subscribe",
	"repost",
}

// skipHrefPrefixes mark anchors that must not be absolutized.
var skipHrefPrefixes = []string{"#", "mailto:", "tel:"}

// findRoot selects the most likely article body node.
func findRoot(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection.Slice(0, 0)
}

// sanitizedContent returns the cleaned inner HTML of root, capped at
// maxContentLen. The root is cloned first so the parsed tree the field
// extractor reads stays untouched.
func sanitizedContent(root *goquery.Selection, baseURL string) string {
	if root.Length() == 0 {
		return ""
	}

	clone := root.Clone()
	clone.Find(strings.Join(strippedTags, ", ")).Remove()
	removeClutter(clone)
	rewriteURLs(clone, baseURL)

	html, err := clone.Html()
	if err != nil {
		return ""
	}
	return truncate(strings.TrimSpace(html), maxContentLen)
}

// removeClutter drops descendants whose class or id contains any clutter
// marker. Class and id run as independent passes.
func removeClutter(s *goquery.Selection) {
	for _, attr := range []string{"class", "id"} {
		s.Find("[" + attr + "]").Each(func(_ int, el *goquery.Selection) {
			value, _ := el.Attr(attr)
			for _, marker := range clutterMarkers {
				if strings.Contains(value, marker) {
					el.Remove()
					return
				}
			}
		})
	}
}

// rewriteURLs absolutizes every retained img src/srcset and anchor href.
// Fragment, mailto and tel links stay byte-identical.
func rewriteURLs(s *goquery.Selection, baseURL string) {
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			img.SetAttr("src", AbsoluteURL(src, baseURL))
		}
		if srcset, ok := img.Attr("srcset"); ok {
			img.SetAttr("srcset", absoluteSrcset(srcset, baseURL))
		}
	})
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		for _, prefix := range skipHrefPrefixes {
			if strings.HasPrefix(href, prefix) {
				return
			}
		}
		a.SetAttr("href", AbsoluteURL(href, baseURL))
	})
}

// excerptText derives the short plain-text summary from the same root the
// sanitizer works on. Script and style text is excluded; the clutter pass
// is not needed here.
func excerptText(root *goquery.Selection) string {
	if root.Length() == 0 {
		return ""
	}
	clone := root.Clone()
	clone.Find("script, style, noscript").Remove()
	return truncate(collapseWhitespace(clone.Text()), maxExcerptLen)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at max bytes, marking the cut with a trailing ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
