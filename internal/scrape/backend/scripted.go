package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"jobscout-engine/internal/scrape/util"
)

// DefaultBlockedResourceTypes are aborted before they hit the network.
var DefaultBlockedResourceTypes = []string{"image", "stylesheet", "font", "media"}

type ScriptedOptions struct {
	UserAgent            string
	Headful              bool // show the browser window; the zero value runs headless
	NavigationTimeout    time.Duration
	WaitTimeout          time.Duration
	BlockedResourceTypes []string
	Limiter              *util.HostLimiter // nil disables rate limiting
}

// ScriptedBackend renders pages in a headless Chromium driven by Playwright.
// Each Open launches one browser that is shared by every Fetch on the
// returned session; each Fetch gets its own browser context and page.
type ScriptedBackend struct {
	opts    ScriptedOptions
	blocked map[string]bool
	logger  *zap.Logger
}

func NewScripted(opts ScriptedOptions, logger *zap.Logger) *ScriptedBackend {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 15 * time.Second
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	types := opts.BlockedResourceTypes
	if types == nil {
		types = DefaultBlockedResourceTypes
	}
	blocked := make(map[string]bool, len(types))
	for _, t := range types {
		blocked[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &ScriptedBackend{
		opts:    opts,
		blocked: blocked,
		logger:  logger.Named("scripted"),
	}
}

func (b *ScriptedBackend) Name() string { return "scripted" }

func (b *ScriptedBackend) launchOptions() playwright.BrowserTypeLaunchOptions {
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!b.opts.Headful),
	}
}

// Open starts the Playwright driver and launches Chromium.
func (b *ScriptedBackend) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(b.launchOptions())
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	b.logger.Debug("browser launched", zap.String("version", browser.Version()))
	return &scriptedSession{backend: b, pw: pw, browser: browser}, nil
}

type scriptedSession struct {
	backend *ScriptedBackend
	pw      *playwright.Playwright
	browser playwright.Browser

	closeOnce sync.Once
	closeErr  error
}

// Close shuts the browser and driver down. Later calls return the first
// result.
func (s *scriptedSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		s.closeErr = errors.Join(errs...)
		s.backend.logger.Debug("browser closed", zap.Error(s.closeErr))
	})
	return s.closeErr
}

func (s *scriptedSession) Fetch(ctx context.Context, t Target) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, newFetchError(ReasonTimeout, t.URL, err)
	}
	b := s.backend
	if err := b.opts.Limiter.WaitURL(ctx, t.URL); err != nil {
		return nil, classifyNetErr(t.URL, err)
	}

	bctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(b.opts.UserAgent),
	})
	if err != nil {
		return nil, newFetchError(ReasonNavigation, t.URL, fmt.Errorf("new context: %w", err))
	}
	defer func() {
		if cerr := bctx.Close(); cerr != nil {
			b.logger.Debug("close browser context", zap.String("url", t.URL), zap.Error(cerr))
		}
	}()

	if err := bctx.Route("**/*", b.filterRoute); err != nil {
		return nil, newFetchError(ReasonNavigation, t.URL, fmt.Errorf("install route: %w", err))
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, newFetchError(ReasonNavigation, t.URL, fmt.Errorf("new page: %w", err))
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			b.logger.Debug("close page", zap.String("url", t.URL), zap.Error(cerr))
		}
	}()

	// Playwright calls are not context-aware; closing the page unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = page.Close() })
	defer stop()

	start := time.Now()
	if _, err := page.Goto(t.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(ctx, b.opts.NavigationTimeout),
	}); err != nil {
		if ctx.Err() != nil || errors.Is(err, playwright.ErrTimeout) {
			return nil, newFetchError(ReasonTimeout, t.URL, err)
		}
		return nil, newFetchError(ReasonNavigation, t.URL, err)
	}

	if t.WaitFor != "" {
		if err := page.Locator(t.WaitFor).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: millis(ctx, b.opts.WaitTimeout),
		}); err != nil {
			return nil, newFetchError(ReasonTimeout, t.URL, fmt.Errorf("wait for %q: %w", t.WaitFor, err))
		}
	}

	html, err := page.Content()
	if err != nil {
		if ctx.Err() != nil {
			return nil, newFetchError(ReasonTimeout, t.URL, err)
		}
		return nil, newFetchError(ReasonNavigation, t.URL, fmt.Errorf("read content: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, newFetchError(ReasonNavigation, t.URL, fmt.Errorf("parse html: %w", err))
	}

	b.logger.Debug("rendered page",
		zap.String("url", t.URL),
		zap.Duration("took", time.Since(start)),
	)
	return doc, nil
}

// filterRoute aborts requests for resource types that never carry fields we
// extract.
func (b *ScriptedBackend) filterRoute(route playwright.Route) {
	if b.blocked[route.Request().ResourceType()] {
		_ = route.Abort()
		return
	}
	_ = route.Continue()
}

// millis converts d to Playwright's millisecond timeout, shortened to the
// context deadline when that comes first.
func millis(ctx context.Context, d time.Duration) *float64 {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return playwright.Float(float64(d.Milliseconds()))
}
