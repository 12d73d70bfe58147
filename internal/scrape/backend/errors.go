package backend

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Reason string

const (
	ReasonNavigation Reason = "navigation"
	ReasonTimeout    Reason = "timeout"
	ReasonNetwork    Reason = "network"
	ReasonStatus     Reason = "status"
)

// FetchError reports why a single page could not be retrieved.
type FetchError struct {
	Reason     Reason
	URL        string
	StatusCode int // set for ReasonStatus
	Err        error
	Stack      []byte
}

func newFetchError(reason Reason, url string, err error) *FetchError {
	var stack []byte
	if err != nil {
		stack = goerrors.Wrap(err, 2).Stack()
	} else {
		stack = goerrors.New(string(reason)).Stack()
	}
	return &FetchError{Reason: reason, URL: url, Err: err, Stack: stack}
}

func (e *FetchError) Error() string {
	switch {
	case e.Reason == ReasonStatus:
		return fmt.Sprintf("fetch %s: %s: HTTP %d", e.URL, e.Reason, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
