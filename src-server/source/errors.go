package source

import "fmt"

// A network or HTTP level failure reaching a source. The driver recovers
// via the stale-cache fallback.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("can't fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// A malformed feed or recurrence rule. The driver skips the source for
// this run and falls back to its cache.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("can't parse %s: %v", e.Context, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
