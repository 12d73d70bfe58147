package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"

	"jobscout-engine/internal/classify"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg together with what is
// wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Site.BaseURL = strings.TrimRight(strings.TrimSpace(out.Site.BaseURL), "/")
	out.Site.ListingPath = strings.TrimSpace(out.Site.ListingPath)
	out.Discovery.ItemSelector = strings.TrimSpace(out.Discovery.ItemSelector)
	out.Discovery.TitleSelector = strings.TrimSpace(out.Discovery.TitleSelector)
	out.Discovery.CompanySelector = strings.TrimSpace(out.Discovery.CompanySelector)
	out.Detail.WaitFor = strings.TrimSpace(out.Detail.WaitFor)
	out.Detail.DescriptionSelectors = trimList(out.Detail.DescriptionSelectors)
	out.Detail.DateSelectors = trimList(out.Detail.DateSelectors)
	out.Detail.LocationSelectors = trimList(out.Detail.LocationSelectors)
	out.Detail.EmploymentTypeSelectors = trimList(out.Detail.EmploymentTypeSelectors)
	out.Backend.Kind = strings.ToLower(strings.TrimSpace(out.Backend.Kind))
	out.Backend.UserAgent = strings.TrimSpace(out.Backend.UserAgent)

	blocked := trimList(out.Backend.Scripted.BlockResourceTypes)
	for i := range blocked {
		blocked[i] = strings.ToLower(blocked[i])
	}
	out.Backend.Scripted.BlockResourceTypes = blocked

	rules := make([]classify.CategoryRule, 0, len(out.Classification.Categories))
	for _, r := range out.Classification.Categories {
		rules = append(rules, classify.CategoryRule{
			Label:    strings.TrimSpace(r.Label),
			Keywords: trimList(r.Keywords),
		})
	}
	out.Classification.Categories = rules

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if u, err := url.Parse(out.Site.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.addErr("site.base_url must be an absolute http(s) URL, got %q", out.Site.BaseURL)
	}
	if !strings.HasPrefix(out.Site.ListingPath, "/") {
		res.addErr("site.listing_path must start with '/', got %q", out.Site.ListingPath)
	}

	checkSelector := func(field, sel string) {
		if _, err := cascadia.ParseGroup(sel); err != nil {
			res.addErr("%s: invalid selector %q: %v", field, sel, err)
		}
	}
	if out.Discovery.ItemSelector == "" {
		res.addErr("discovery.item_selector is required")
	} else {
		checkSelector("discovery.item_selector", out.Discovery.ItemSelector)
	}
	for field, sel := range map[string]string{
		"discovery.title_selector":   out.Discovery.TitleSelector,
		"discovery.company_selector": out.Discovery.CompanySelector,
		"detail.wait_for":            out.Detail.WaitFor,
	} {
		if sel != "" {
			checkSelector(field, sel)
		}
	}
	for field, sels := range map[string][]string{
		"detail.description_selectors":     out.Detail.DescriptionSelectors,
		"detail.date_selectors":            out.Detail.DateSelectors,
		"detail.location_selectors":        out.Detail.LocationSelectors,
		"detail.employment_type_selectors": out.Detail.EmploymentTypeSelectors,
	} {
		for _, sel := range sels {
			checkSelector(field, sel)
		}
	}
	if len(out.Detail.DescriptionSelectors) == 0 {
		res.addWarn("detail.description_selectors is empty; built-in selectors will be used.")
	}

	if out.Discovery.MaxCandidates <= 0 {
		res.addErr("discovery.max_candidates must be > 0")
	} else if out.Discovery.MaxCandidates > 50 {
		res.addWarn("discovery.max_candidates is high (%d); each candidate costs one detail fetch.", out.Discovery.MaxCandidates)
	}

	switch out.Backend.Kind {
	case BackendStatic:
		if out.Backend.Static.TimeoutSeconds <= 0 {
			res.addErr("backend.static.timeout_seconds must be > 0")
		}
	case BackendScripted:
		if out.Backend.Scripted.NavigationTimeoutSeconds <= 0 {
			res.addErr("backend.scripted.navigation_timeout_seconds must be > 0")
		}
		if out.Backend.Scripted.WaitTimeoutSeconds <= 0 {
			res.addErr("backend.scripted.wait_timeout_seconds must be > 0")
		}
		if !out.Backend.Scripted.Headless {
			res.addWarn("backend.scripted.headless is false; a browser window will open for every run.")
		}
	default:
		res.addErr("backend.kind must be %q or %q, got %q", BackendStatic, BackendScripted, out.Backend.Kind)
	}

	if out.Pipeline.Concurrency < 0 {
		res.addErr("pipeline.concurrency must be >= 0")
	}
	if out.Pipeline.RunTimeoutSeconds < 0 {
		res.addErr("pipeline.run_timeout_seconds must be >= 0")
	}
	if out.Watch.IntervalSeconds <= 0 {
		res.addErr("watch.interval_seconds must be > 0")
	} else if out.Watch.IntervalSeconds < 60 {
		res.addWarn("watch.interval_seconds is very low (%d) and may get the engine blocked.", out.Watch.IntervalSeconds)
	}

	if out.RateLimit.PerSecond < 0 {
		res.addErr("rate_limit.per_second must be >= 0")
	} else if out.RateLimit.PerSecond == 0 {
		res.addWarn("rate_limit.per_second is 0; requests to the site are not throttled.")
	} else if out.RateLimit.Burst < 1 {
		res.addErr("rate_limit.burst must be >= 1 when rate_limit.per_second > 0")
	}

	if len(out.Classification.Categories) == 0 {
		res.addWarn("classification.categories is empty; built-in categories will be used.")
	}
	labels := map[string]bool{}
	for i, r := range out.Classification.Categories {
		if r.Label == "" {
			res.addErr("classification.categories[%d].label is required", i)
		}
		if len(r.Keywords) == 0 {
			res.addErr("classification.categories[%d].keywords must have at least 1 term", i)
		}
		key := strings.ToLower(r.Label)
		if r.Label != "" && labels[key] {
			res.addWarn("category label appears twice: %q; only the first can match.", r.Label)
		}
		labels[key] = true
	}

	return out, res
}
