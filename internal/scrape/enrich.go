package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"jobscout-engine/internal/classify"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/backend"
	"jobscout-engine/internal/scrape/util"
	"jobscout-engine/internal/telemetry"
)

var (
	DefaultDescriptionSelectors    = []string{".job-description", "#job-description", `[itemprop="description"]`, "article"}
	DefaultDateSelectors           = []string{"time[datetime]", `meta[itemprop="datePosted"]`}
	DefaultLocationSelectors       = []string{`[itemprop="jobLocation"]`, ".job-location"}
	DefaultEmploymentTypeSelectors = []string{`[itemprop="employmentType"]`}
)

type EnrichOptions struct {
	DescriptionSelectors    []string
	DateSelectors           []string // datetime or content attribute, else text
	LocationSelectors       []string
	EmploymentTypeSelectors []string
	// WaitFor is passed to the backend for every detail page. Empty means
	// any of the description selectors.
	WaitFor string
}

func (o EnrichOptions) withDefaults() EnrichOptions {
	if len(o.DescriptionSelectors) == 0 {
		o.DescriptionSelectors = DefaultDescriptionSelectors
	}
	if len(o.DateSelectors) == 0 {
		o.DateSelectors = DefaultDateSelectors
	}
	if o.LocationSelectors == nil {
		o.LocationSelectors = DefaultLocationSelectors
	}
	if o.EmploymentTypeSelectors == nil {
		o.EmploymentTypeSelectors = DefaultEmploymentTypeSelectors
	}
	if o.WaitFor == "" {
		o.WaitFor = strings.Join(o.DescriptionSelectors, ", ")
	}
	return o
}

// Enricher turns one candidate into a detail record. It is safe for
// concurrent use as long as its fetcher is.
type Enricher struct {
	fetcher    backend.Fetcher
	opts       EnrichOptions
	classifier *classify.Classifier
	logger     *zap.Logger
}

func NewEnricher(f backend.Fetcher, opts EnrichOptions, cls *classify.Classifier, logger *zap.Logger) *Enricher {
	if cls == nil {
		cls = classify.New(nil)
	}
	return &Enricher{
		fetcher:    f,
		opts:       opts.withDefaults(),
		classifier: cls,
		logger:     logger.Named("enrich"),
	}
}

// Enrich fetches the candidate's detail page and extracts its fields. It
// never fails: fetch errors, empty pages and panics during extraction all
// produce domain.FailedRecord(c).
func (e *Enricher) Enrich(ctx context.Context, c domain.ListingCandidate) (rec domain.DetailRecord) {
	ctx, span := tracer.Start(ctx, "enrich", trace.WithAttributes(telemetry.String("job.link", c.Link)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked",
				zap.String("link", c.Link),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			span.SetStatus(codes.Error, "panic")
			rec = domain.FailedRecord(c)
		}
	}()

	doc, err := e.fetcher.Fetch(ctx, backend.Target{URL: c.Link, WaitFor: e.opts.WaitFor})
	if err == nil {
		rec, err = e.extract(c, doc)
	}
	if err != nil {
		e.logFailure(c, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrich failed")
		return domain.FailedRecord(c)
	}

	span.SetAttributes(
		telemetry.String("job.type", string(rec.EmploymentType)),
		telemetry.String("job.location", rec.Location),
	)
	return rec
}

func (e *Enricher) extract(c domain.ListingCandidate, doc *goquery.Document) (domain.DetailRecord, error) {
	body := doc.Find("body")
	if body.Length() == 0 || (body.Children().Length() == 0 && util.CleanText(body.Text()) == "") {
		return domain.DetailRecord{}, newExtractionError(c.Link, "empty document")
	}

	jp, _ := findJobPosting(doc)

	desc := util.FirstNonEmpty(firstText(doc, e.opts.DescriptionSelectors), jp.Description, domain.NoDescription)
	date := util.FirstNonEmpty(e.postedDate(doc), jp.DatePosted, domain.DateNotFound)

	title := c.Title
	if !c.HasTitle() {
		title = e.classifier.Category(desc)
	}

	return domain.DetailRecord{
		Title:          title,
		Company:        util.FirstNonEmpty(c.Company, domain.CompanyNotFound),
		Link:           c.Link,
		Description:    desc,
		EmploymentType: e.employmentType(doc, jp, desc),
		Location:       e.location(doc, jp, desc),
		PostedDate:     date,
		Status:         domain.StatusOK,
	}, nil
}

// employmentType prefers explicit markup, then JSON-LD, then inference over
// the description.
func (e *Enricher) employmentType(doc *goquery.Document, jp jobPosting, desc string) domain.EmploymentType {
	for _, explicit := range []string{firstText(doc, e.opts.EmploymentTypeSelectors), jp.EmploymentType} {
		if explicit == "" {
			continue
		}
		// schema.org uses FULL_TIME, PART_TIME
		if t := classify.EmploymentType(strings.ReplaceAll(explicit, "_", "-")); t != domain.UnknownType {
			return t
		}
	}
	return classify.EmploymentType(desc)
}

func (e *Enricher) location(doc *goquery.Document, jp jobPosting, desc string) string {
	if loc := util.FindLocation(doc, e.opts.LocationSelectors); loc != "" {
		return loc
	}
	if jp.Telecommute {
		return "Remote"
	}
	if jp.Location != "" {
		return jp.Location
	}
	return classify.Location(desc)
}

func (e *Enricher) postedDate(doc *goquery.Document) string {
	for _, sel := range e.opts.DateSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		for _, attr := range []string{"datetime", "content"} {
			if v, ok := s.Attr(attr); ok {
				if v = util.CleanText(v); v != "" {
					return v
				}
			}
		}
		if t := util.CleanText(s.Text()); t != "" {
			return t
		}
	}
	return ""
}

func (e *Enricher) logFailure(c domain.ListingCandidate, err error) {
	fields := []zap.Field{zap.String("link", c.Link), zap.Error(err)}

	var (
		fe *backend.FetchError
		xe *ExtractionError
	)
	switch {
	case errors.As(err, &fe):
		fields = append(fields, zap.String("reason", string(fe.Reason)))
		e.logger.Debug("fetch error stack", zap.ByteString("stack", fe.Stack))
	case errors.As(err, &xe):
		e.logger.Debug("extraction error stack", zap.ByteString("stack", xe.Stack))
	}
	e.logger.Warn("detail page failed", fields...)
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
