package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/scrape/backend"
)

const (
	testOrigin  = "https://example.test"
	testListing = testOrigin + "/jobs"
)

type fakePage struct {
	html   string
	delay  time.Duration
	err    error // returned after delay
	hang   bool  // block until ctx is done
	nilDoc bool
}

// fakeBackend serves pages from memory. pages must not change once a run
// starts.
type fakeBackend struct {
	pages   map[string]fakePage
	openErr error

	opened      atomic.Int32
	closed      atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu      sync.Mutex
	targets []backend.Target
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{pages: map[string]fakePage{}}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open(context.Context) (backend.Session, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened.Add(1)
	return &fakeSession{b: b}, nil
}

func (b *fakeBackend) seenTargets() []backend.Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.Target(nil), b.targets...)
}

type fakeSession struct {
	b *fakeBackend
}

func (s *fakeSession) Close() error {
	s.b.closed.Add(1)
	return nil
}

func (s *fakeSession) Fetch(ctx context.Context, t backend.Target) (*goquery.Document, error) {
	b := s.b
	b.mu.Lock()
	b.targets = append(b.targets, t)
	b.mu.Unlock()

	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		m := b.maxInFlight.Load()
		if n <= m || b.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	p, ok := b.pages[t.URL]
	if !ok {
		return nil, &backend.FetchError{Reason: backend.ReasonStatus, URL: t.URL, StatusCode: 404}
	}
	if p.hang {
		<-ctx.Done()
		return nil, &backend.FetchError{Reason: backend.ReasonTimeout, URL: t.URL, Err: ctx.Err()}
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, &backend.FetchError{Reason: backend.ReasonTimeout, URL: t.URL, Err: ctx.Err()}
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.nilDoc {
		return nil, nil
	}
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

// listingHTML renders n well-formed listing items job-0..job-(n-1).
func listingHTML(n int) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><nav><a href="/about">About</a></nav><ul>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `<li><a href="/jobs/job-%d"><div class="flex"><div><h3>Job %d</h3><p>Co %d</p></div></div></a></li>`, i, i, i)
	}
	sb.WriteString(`</ul></body></html>`)
	return sb.String()
}

func jobURL(i int) string {
	return fmt.Sprintf("%s/jobs/job-%d", testOrigin, i)
}

func detailHTML(desc string) string {
	return `<html><body><main><div class="job-description">` + desc +
		`</div><time datetime="2024-05-01">May 1</time></main></body></html>`
}
