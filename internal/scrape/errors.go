package scrape

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// DiscoveryError means the listing page could not be fetched or parsed. It
// fails the whole run.
type DiscoveryError struct {
	URL   string
	Err   error
	Stack []byte
}

func newDiscoveryError(url string, err error) *DiscoveryError {
	return &DiscoveryError{URL: url, Err: err, Stack: stackOf(err, "discovery failed")}
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ExtractionError means a detail page was fetched but held nothing to
// extract. The enricher turns it into a failed record.
type ExtractionError struct {
	URL     string
	Message string
	Stack   []byte
}

func newExtractionError(url, msg string) *ExtractionError {
	return &ExtractionError{URL: url, Message: msg, Stack: stackOf(nil, msg)}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Message)
}

func stackOf(err error, msg string) []byte {
	if err == nil {
		return goerrors.New(msg).Stack()
	}
	if se, ok := err.(*goerrors.Error); ok {
		return se.Stack()
	}
	return goerrors.Wrap(err, 3).Stack()
}
