// Package config loads and validates the engine's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jobscout-engine/internal/classify"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/scrape/backend"
)

const (
	BackendStatic   = "static"
	BackendScripted = "scripted"
)

type Config struct {
	App struct {
		Port int `yaml:"port"`
	} `yaml:"app"`

	Site struct {
		BaseURL     string `yaml:"base_url"`
		ListingPath string `yaml:"listing_path"`
	} `yaml:"site"`

	Discovery struct {
		ItemSelector    string `yaml:"item_selector"`
		TitleSelector   string `yaml:"title_selector"`
		CompanySelector string `yaml:"company_selector"`
		MaxCandidates   int    `yaml:"max_candidates"`
	} `yaml:"discovery"`

	Detail struct {
		DescriptionSelectors    []string `yaml:"description_selectors"`
		DateSelectors           []string `yaml:"date_selectors"`
		LocationSelectors       []string `yaml:"location_selectors"`
		EmploymentTypeSelectors []string `yaml:"employment_type_selectors"`
		WaitFor                 string   `yaml:"wait_for"`
	} `yaml:"detail"`

	Backend struct {
		Kind      string `yaml:"kind"`
		UserAgent string `yaml:"user_agent"`

		Static struct {
			TimeoutSeconds int `yaml:"timeout_seconds"`
		} `yaml:"static"`

		Scripted struct {
			Headless                 bool     `yaml:"headless"`
			NavigationTimeoutSeconds int      `yaml:"navigation_timeout_seconds"`
			WaitTimeoutSeconds       int      `yaml:"wait_timeout_seconds"`
			BlockResourceTypes       []string `yaml:"block_resource_types"`
		} `yaml:"scripted"`
	} `yaml:"backend"`

	Pipeline struct {
		Concurrency       int `yaml:"concurrency"`
		RunTimeoutSeconds int `yaml:"run_timeout_seconds"`
	} `yaml:"pipeline"`

	Watch struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"watch"`

	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Telemetry struct {
		ServiceName  string `yaml:"service_name"`
		CollectorURL string `yaml:"collector_url"`
	} `yaml:"telemetry"`

	Classification struct {
		// RulesFile, when set, replaces Categories with the file's list.
		RulesFile  string                  `yaml:"rules_file"`
		Categories []classify.CategoryRule `yaml:"categories"`
	} `yaml:"classification"`
}

// Default returns a complete, valid configuration for himalayas.app.
func Default() Config {
	var cfg Config
	cfg.App.Port = 8888

	cfg.Site.BaseURL = "https://himalayas.app"
	cfg.Site.ListingPath = "/jobs"

	cfg.Discovery.ItemSelector = scrape.DefaultItemSelector
	cfg.Discovery.TitleSelector = scrape.DefaultTitleSelector
	cfg.Discovery.CompanySelector = scrape.DefaultCompanySelector
	cfg.Discovery.MaxCandidates = scrape.DefaultMaxCandidates

	cfg.Detail.DescriptionSelectors = clone(scrape.DefaultDescriptionSelectors)
	cfg.Detail.DateSelectors = clone(scrape.DefaultDateSelectors)
	cfg.Detail.LocationSelectors = clone(scrape.DefaultLocationSelectors)
	cfg.Detail.EmploymentTypeSelectors = clone(scrape.DefaultEmploymentTypeSelectors)

	cfg.Backend.Kind = BackendStatic
	cfg.Backend.UserAgent = backend.DefaultUserAgent
	cfg.Backend.Static.TimeoutSeconds = 20
	cfg.Backend.Scripted.Headless = true
	cfg.Backend.Scripted.NavigationTimeoutSeconds = 15
	cfg.Backend.Scripted.WaitTimeoutSeconds = 10
	cfg.Backend.Scripted.BlockResourceTypes = clone(backend.DefaultBlockedResourceTypes)

	cfg.Pipeline.Concurrency = 0
	cfg.Pipeline.RunTimeoutSeconds = 60

	cfg.Watch.IntervalSeconds = 300

	cfg.RateLimit.PerSecond = 4
	cfg.RateLimit.Burst = 4

	cfg.Telemetry.ServiceName = "jobscout-engine"

	cfg.Classification.Categories = make([]classify.CategoryRule, len(classify.DefaultCategoryRules))
	for i, r := range classify.DefaultCategoryRules {
		cfg.Classification.Categories[i] = classify.CategoryRule{Label: r.Label, Keywords: clone(r.Keywords)}
	}
	return cfg
}

// Load reads path over Default(). An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if rf := cfg.Classification.RulesFile; rf != "" {
		if !filepath.IsAbs(rf) {
			rf = filepath.Join(filepath.Dir(path), rf)
		}
		if err := OverlayCategories(&cfg, rf); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ListingURL resolves p against the site base URL. An empty p means the
// configured listing path. The result must stay on the site's host.
func (c Config) ListingURL(p string) (string, error) {
	base, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return "", fmt.Errorf("site.base_url: %w", err)
	}
	p = strings.TrimSpace(p)
	if p == "" {
		p = c.Site.ListingPath
	}
	ref, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("invalid listing path %q: %w", p, err)
	}
	u := base.ResolveReference(ref)
	if !strings.EqualFold(u.Host, base.Host) || u.Scheme != base.Scheme {
		return "", errors.New("listing path must stay on " + base.Host)
	}
	return u.String(), nil
}

func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Pipeline.RunTimeoutSeconds) * time.Second
}

func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

func clone(xs []string) []string {
	return append([]string(nil), xs...)
}
