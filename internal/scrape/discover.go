package scrape

import (
	"context"
	"errors"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/backend"
	"jobscout-engine/internal/scrape/util"
	"jobscout-engine/internal/telemetry"
)

const (
	DefaultItemSelector    = `a[href*="/jobs/"]`
	DefaultTitleSelector   = "div.flex > div > h3"
	DefaultCompanySelector = "div.flex > div > p"
	DefaultMaxCandidates   = 10
)

type DiscoverOptions struct {
	ItemSelector    string
	TitleSelector   string // scoped under each item
	CompanySelector string // scoped under each item
	MaxCandidates   int
}

func (o DiscoverOptions) withDefaults() DiscoverOptions {
	if o.ItemSelector == "" {
		o.ItemSelector = DefaultItemSelector
	}
	if o.TitleSelector == "" {
		o.TitleSelector = DefaultTitleSelector
	}
	if o.CompanySelector == "" {
		o.CompanySelector = DefaultCompanySelector
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	return o
}

// Discoverer enumerates candidates from one listing page.
type Discoverer struct {
	fetcher backend.Fetcher
	opts    DiscoverOptions
	logger  *zap.Logger
}

func NewDiscoverer(f backend.Fetcher, opts DiscoverOptions, logger *zap.Logger) *Discoverer {
	return &Discoverer{
		fetcher: f,
		opts:    opts.withDefaults(),
		logger:  logger.Named("discover"),
	}
}

// Discover returns the first MaxCandidates items on the listing page in
// document order. Links are resolved against the listing's origin. Items
// without a title or company get placeholders rather than being dropped.
func (d *Discoverer) Discover(ctx context.Context, listingURL string) ([]domain.ListingCandidate, error) {
	ctx, span := tracer.Start(ctx, "discover", trace.WithAttributes(telemetry.String("listing.url", listingURL)))
	defer span.End()

	u, err := url.Parse(listingURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = errors.New("not an absolute URL")
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, newDiscoveryError(listingURL, err)
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}

	doc, err := d.fetcher.Fetch(ctx, backend.Target{URL: listingURL, WaitFor: d.opts.ItemSelector})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing fetch failed")
		return nil, newDiscoveryError(listingURL, err)
	}
	if doc == nil {
		err = errors.New("fetcher returned no document")
		span.SetStatus(codes.Error, err.Error())
		return nil, newDiscoveryError(listingURL, err)
	}

	out := d.candidates(doc, origin)

	span.SetAttributes(telemetry.Int("candidates", len(out)))
	d.logger.Info("listing discovered",
		zap.String("url", listingURL),
		zap.Int("candidates", len(out)),
		zap.Int("cap", d.opts.MaxCandidates),
	)
	return out, nil
}

func (d *Discoverer) candidates(doc *goquery.Document, origin *url.URL) []domain.ListingCandidate {
	out := make([]domain.ListingCandidate, 0, d.opts.MaxCandidates)
	doc.Find(d.opts.ItemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(out) >= d.opts.MaxCandidates {
			return false
		}
		href, _ := item.Attr("href")

		out = append(out, domain.ListingCandidate{
			Title:   util.FirstNonEmpty(item.Find(d.opts.TitleSelector).First().Text(), domain.TitleNotFound),
			Company: util.FirstNonEmpty(item.Find(d.opts.CompanySelector).First().Text(), domain.CompanyNotFound),
			Link:    util.ResolveLink(origin, href),
		})
		return len(out) < d.opts.MaxCandidates
	})
	return out
}
