package extract

import (
	"strings"
	"testing"
)

func TestLocatorPriority(t *testing.T) {
	html := `<html><body>
		<main><p>main text</p></main>
		<article><p>article text</p></article>
	</body></html>`

	a, err := FromHTML("https://site.com/post", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if !strings.Contains(a.Content, "article text") {
		t.Errorf("content missing article text: %q", a.Content)
	}
	if strings.Contains(a.Content, "main text") {
		t.Errorf("content leaked main subtree: %q", a.Content)
	}
	if !strings.Contains(a.Excerpt, "article text") || strings.Contains(a.Excerpt, "main text") {
		t.Errorf("excerpt not derived from article subtree: %q", a.Excerpt)
	}
}

func TestLocatorFallbacks(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{"main", `<body><main><p>from main</p></main><div>other</div></body>`, "from main"},
		{"role main", `<body><div role="main"><p>from role</p></div></body>`, "from role"},
		{"body", `<body><p>from body</p></body>`, "from body"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := FromHTML("https://site.com/", c.html)
			if err != nil {
				t.Fatalf("FromHTML: %v", err)
			}
			if !strings.Contains(a.Content, c.want) {
				t.Errorf("content = %q; want it to contain %q", a.Content, c.want)
			}
		})
	}
}

func TestStructuralElementsStripped(t *testing.T) {
	html := `<body><article>
		<nav>site nav</nav>
		<script>var tracking = 1;</script>
		<style>.x{color:red}</style>
		<aside>sidebar junk</aside>
		<p>the real story</p>
	</article></body>`

	a, err := FromHTML("https://site.com/", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	for _, unwanted := range []string{"site nav", "var tracking", "color:red", "sidebar junk"} {
		if strings.Contains(a.Content, unwanted) {
			t.Errorf("content contains stripped element text %q", unwanted)
		}
	}
	if !strings.Contains(a.Content, "the real story") {
		t.Errorf("content lost the article body: %q", a.Content)
	}
	if strings.Contains(a.Excerpt, "var tracking") || strings.Contains(a.Excerpt, "color:red") {
		t.Errorf("excerpt contains script/style text: %q", a.Excerpt)
	}
}

func TestClutterRemoval(t *testing.T) {
	html := `<body><article>
		<div class="social-share-box">share me everywhere</div>
		<div id="related-posts-widget">you may also enjoy</div>
		<div class="newsletter-subscribe">subscribe now</div>
		<p>keep this paragraph</p>
	</article></body>`

	a, err := FromHTML("https://site.com/", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	for _, unwanted := range []string{"share me everywhere", "you may also enjoy", "subscribe now"} {
		if strings.Contains(a.Content, unwanted) {
			t.Errorf("content contains clutter text %q", unwanted)
		}
	}
	if !strings.Contains(a.Content, "keep this paragraph") {
		t.Errorf("content lost real paragraph: %q", a.Content)
	}
}

func TestLinkRewriting(t *testing.T) {
	html := `<body><article>
		<p><a href="/rel">relative</a></p>
		<p><a href="#section">fragment</a></p>
		<p><a href="mailto:x@y.com">mail</a></p>
		<p><a href="tel:+123">phone</a></p>
		<img src="/img/pic.png" srcset="/img/pic.png 1x, //cdn.site.com/pic2.png 2x">
	</article></body>`

	a, err := FromHTML("https://site.com/a/b", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}

	for _, want := range []string{
		`href="https://site.com/rel"`,
		`href="#section"`,
		`href="mailto:x@y.com"`,
		`href="tel:+123"`,
		`src="https://site.com/img/pic.png"`,
		`srcset="https://site.com/img/pic.png 1x, https://cdn.site.com/pic2.png 2x"`,
	} {
		if !strings.Contains(a.Content, want) {
			t.Errorf("content missing %q:\n%s", want, a.Content)
		}
	}
}

func TestContentLengthCap(t *testing.T) {
	filler := strings.Repeat("a", 600_000)
	html := `<body><main><p>` + filler + `</p></main></body>`

	a, err := FromHTML("https://site.com/", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if len(a.Content) != maxContentLen+3 {
		t.Errorf("len(content) = %d; want %d", len(a.Content), maxContentLen+3)
	}
	if !strings.HasSuffix(a.Content, "...") {
		t.Errorf("capped content should end with ellipsis")
	}
}

func TestExcerptLengthCap(t *testing.T) {
	html := `<body><article><p>` + strings.Repeat("word ", 200) + `</p></article></body>`

	a, err := FromHTML("https://site.com/", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if len(a.Excerpt) != maxExcerptLen+3 {
		t.Errorf("len(excerpt) = %d; want %d", len(a.Excerpt), maxExcerptLen+3)
	}
	if !strings.HasSuffix(a.Excerpt, "...") {
		t.Errorf("capped excerpt should end with ellipsis")
	}
}

func TestExcerptWhitespaceCollapsed(t *testing.T) {
	html := "<body><article><p>some\n\n   spaced\t\ttext</p></article></body>"

	a, err := FromHTML("https://site.com/", html)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if a.Excerpt != "some spaced text" {
		t.Errorf("excerpt = %q; want %q", a.Excerpt, "some spaced text")
	}
}

func TestEmptyDocument(t *testing.T) {
	a, err := FromHTML("https://site.com/", "")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if a.Content != "" || a.Excerpt != "" {
		t.Errorf("empty document should yield empty content/excerpt, got %q / %q", a.Content, a.Excerpt)
	}
	if a.Title != "Untitled" {
		t.Errorf("title = %q; want Untitled", a.Title)
	}
}
