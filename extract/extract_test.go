package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromURLEndToEnd(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Hello">
	</head><body>
		<article><p>Some <a href="/rel">link</a> text.</p></article>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("User-Agent = %q; want %q", got, UserAgent)
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := FromURL(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}

	if a.Title != "Hello" {
		t.Errorf("title = %q; want Hello", a.Title)
	}
	if want := `href="` + srv.URL + `/rel"`; !strings.Contains(a.Content, want) {
		t.Errorf("content missing absolutized link %q:\n%s", want, a.Content)
	}
	if a.Excerpt != "Some link text." {
		t.Errorf("excerpt = %q; want %q", a.Excerpt, "Some link text.")
	}
}

func TestFromURLHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := FromURL(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T; want *ParseError", err)
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("ParseError should wrap *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", fetchErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "failed to parse article") {
		t.Errorf("message missing uniform prefix: %q", err.Error())
	}
}

func TestFromURLNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	_, err := FromURL(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T; want *ParseError", err)
	}
}

func TestParseErrorMessage(t *testing.T) {
	withCause := &ParseError{URL: "https://x.com", Err: errors.New("dns lookup failed")}
	if !strings.Contains(withCause.Error(), "dns lookup failed") {
		t.Errorf("message should carry the cause: %q", withCause.Error())
	}

	withoutCause := &ParseError{URL: "https://x.com"}
	if !strings.Contains(withoutCause.Error(), "unknown error") {
		t.Errorf("message should fall back to unknown error: %q", withoutCause.Error())
	}
}
