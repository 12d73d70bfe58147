package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobscout-engine/internal/scrape/util"
)

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 8 << 20

// StaticBackend fetches raw HTML over HTTP and parses it without running
// scripts.
type StaticBackend struct {
	hc        *http.Client
	userAgent string
	limiter   *util.HostLimiter
	logger    *zap.Logger
}

type StaticOptions struct {
	Client    *http.Client // defaults to a 20s-timeout client
	UserAgent string
	Limiter   *util.HostLimiter // nil disables rate limiting
}

func NewStatic(opts StaticOptions, logger *zap.Logger) *StaticBackend {
	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &StaticBackend{
		hc:        hc,
		userAgent: ua,
		limiter:   opts.Limiter,
		logger:    logger.Named("static"),
	}
}

func (b *StaticBackend) Name() string { return "static" }

// Open returns the backend itself; a static session holds no resources.
func (b *StaticBackend) Open(_ context.Context) (Session, error) {
	return staticSession{b}, nil
}

type staticSession struct {
	*StaticBackend
}

func (staticSession) Close() error { return nil }

func (b *StaticBackend) Fetch(ctx context.Context, t Target) (*goquery.Document, error) {
	if err := b.limiter.WaitURL(ctx, t.URL); err != nil {
		return nil, classifyNetErr(t.URL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return nil, newFetchError(ReasonNavigation, t.URL, err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	res, err := b.hc.Do(req)
	if err != nil {
		return nil, classifyNetErr(t.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		fe := newFetchError(ReasonStatus, t.URL, fmt.Errorf("unexpected status %s", res.Status))
		fe.StatusCode = res.StatusCode
		return nil, fe
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyNetErr(t.URL, fmt.Errorf("parse html: %w", err))
	}

	b.logger.Debug("fetched page",
		zap.String("url", t.URL),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	return doc, nil
}

func classifyNetErr(url string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newFetchError(ReasonTimeout, url, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return newFetchError(ReasonTimeout, url, err)
	}
	return newFetchError(ReasonNetwork, url, err)
}
