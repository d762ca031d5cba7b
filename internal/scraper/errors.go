package scraper

import (
	"errors"
	"fmt"
)

// ErrScraperNotFound is returned when no adapter is registered under the
// requested name
var ErrScraperNotFound = errors.New("scraper not found")

// FetchErrorKind classifies fetch failures for retry decisions
type FetchErrorKind string

const (
	FetchErrorNetwork    FetchErrorKind = "network"
	FetchErrorTimeout    FetchErrorKind = "timeout"
	FetchErrorHTTPStatus FetchErrorKind = "http_status"
)

// FetchError reports a failed page fetch after retries were exhausted
// or a non-retryable response was received
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchErrorHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	case FetchErrorTimeout:
		return fmt.Sprintf("fetch %s: timeout: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports that a required field could not be extracted
// from a fetched page
type ExtractionError struct {
	URL   string
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: no usable %s found", e.URL, e.Field)
}
