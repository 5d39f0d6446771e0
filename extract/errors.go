package extract

import "fmt"

// FetchError reports a non-success HTTP status from the page server.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: %s", e.Status)
}

// ParseError is the single error type FromURL returns. It wraps whatever
// went wrong underneath (fetch, transport, markup) behind one message, so
// callers never have to distinguish failure sources programmatically.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("failed to parse article %s: %s", e.URL, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
