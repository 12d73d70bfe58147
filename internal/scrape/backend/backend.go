// Package backend provides the interchangeable page-retrieval strategies used
// by discovery and enrichment: a static HTTP fetcher and a scripted browser
// fetcher. Both return a goquery document.
package backend

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent is sent by both backends unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Target is one page to retrieve. WaitFor is a CSS selector that must be
// present before the page counts as loaded; only the scripted backend waits
// on it.
type Target struct {
	URL     string
	WaitFor string
}

// Fetcher retrieves and parses one page.
type Fetcher interface {
	Fetch(ctx context.Context, t Target) (*goquery.Document, error)
}

// Session is a Fetcher bound to resources that live for one pipeline run.
type Session interface {
	Fetcher
	Close() error
}

// Backend opens sessions. Callers do not know which variant they hold.
type Backend interface {
	Name() string
	Open(ctx context.Context) (Session, error)
}
