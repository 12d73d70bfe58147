package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/classify"
)

func TestDefaultIsValid(t *testing.T) {
	_, res := NormalizeAndValidate(Default())
	assert.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  base_url: https://jobs.example.test
discovery:
  max_candidates: 3
backend:
  kind: scripted
detail:
  description_selectors: [".posting-body"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://jobs.example.test", cfg.Site.BaseURL)
	assert.Equal(t, "/jobs", cfg.Site.ListingPath)
	assert.Equal(t, 3, cfg.Discovery.MaxCandidates)
	assert.Equal(t, BackendScripted, cfg.Backend.Kind)
	assert.Equal(t, []string{".posting-body"}, cfg.Detail.DescriptionSelectors)
	assert.Equal(t, 15, cfg.Backend.Scripted.NavigationTimeoutSeconds)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app: [\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestLoad_RulesFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yml"), []byte(`
categories:
  - label: Gophers
    keywords: [golang]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
classification:
  rules_file: rules.yml
`), 0o644))

	cfg, err := Load(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, []classify.CategoryRule{{Label: "Gophers", Keywords: []string{"golang"}}}, cfg.Classification.Categories)
}

func TestOverlayCategories_MissingFileIsIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, OverlayCategories(&cfg, filepath.Join(t.TempDir(), "missing.yml")))
	assert.Equal(t, Default().Classification.Categories, cfg.Classification.Categories)
}

func TestNormalizeAndValidate_Normalizes(t *testing.T) {
	cfg := Default()
	cfg.Site.BaseURL = " https://himalayas.app/ "
	cfg.Backend.Kind = " Scripted "
	cfg.Backend.Scripted.BlockResourceTypes = []string{"Image", "image", " font ", ""}
	cfg.Detail.LocationSelectors = []string{" .loc ", ".LOC", ""}
	cfg.Classification.Categories = []classify.CategoryRule{{Label: " Eng ", Keywords: []string{" go ", "Go", ""}}}

	out, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK(), "errors: %v", res.Errors)

	assert.Equal(t, "https://himalayas.app", out.Site.BaseURL)
	assert.Equal(t, BackendScripted, out.Backend.Kind)
	assert.Equal(t, []string{"image", "font"}, out.Backend.Scripted.BlockResourceTypes)
	assert.Equal(t, []string{".loc"}, out.Detail.LocationSelectors)
	assert.Equal(t, []classify.CategoryRule{{Label: "Eng", Keywords: []string{"go"}}}, out.Classification.Categories)
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.Port = 0 }, "app.port"},
		{"base url", func(c *Config) { c.Site.BaseURL = "himalayas.app" }, "site.base_url"},
		{"listing path", func(c *Config) { c.Site.ListingPath = "jobs" }, "site.listing_path"},
		{"item selector", func(c *Config) { c.Discovery.ItemSelector = "" }, "discovery.item_selector"},
		{"bad selector", func(c *Config) { c.Detail.DateSelectors = []string{"time[["} }, "detail.date_selectors"},
		{"cap", func(c *Config) { c.Discovery.MaxCandidates = 0 }, "discovery.max_candidates"},
		{"backend kind", func(c *Config) { c.Backend.Kind = "chrome" }, "backend.kind"},
		{"scripted timeout", func(c *Config) {
			c.Backend.Kind = BackendScripted
			c.Backend.Scripted.WaitTimeoutSeconds = 0
		}, "wait_timeout_seconds"},
		{"concurrency", func(c *Config) { c.Pipeline.Concurrency = -1 }, "pipeline.concurrency"},
		{"burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate_limit.burst"},
		{"category keywords", func(c *Config) {
			c.Classification.Categories = []classify.CategoryRule{{Label: "Empty"}}
		}, "keywords"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			_, res := NormalizeAndValidate(cfg)
			require.False(t, res.OK())
			assert.Contains(t, strings.Join(res.Errors, "\n"), tt.want)
		})
	}
}

func TestNormalizeAndValidate_Warnings(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.PerSecond = 0
	cfg.Discovery.MaxCandidates = 100

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	assert.Len(t, res.Warnings, 2)
}

func TestListingURL(t *testing.T) {
	cfg := Default()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "https://himalayas.app/jobs", false},
		{"/jobs/remote", "https://himalayas.app/jobs/remote", false},
		{"/jobs?q=go", "https://himalayas.app/jobs?q=go", false},
		{"https://himalayas.app/jobs/x", "https://himalayas.app/jobs/x", false},
		{"//evil.test/jobs", "", true},
		{"https://evil.test/jobs", "", true},
		{"http://himalayas.app/jobs", "", true},
	}
	for _, tt := range tests {
		got, err := cfg.ListingURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSaveAtomicAndEnsure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")

	created, err := EnsureUserConfig(path)
	require.NoError(t, err)
	assert.True(t, created)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)

	created, err = EnsureUserConfig(path)
	require.NoError(t, err)
	assert.False(t, created)

	loaded.Discovery.MaxCandidates = 5
	require.NoError(t, SaveAtomic(path, loaded))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Discovery.MaxCandidates)
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.ErrorContains(t, err, "app.port")
}
