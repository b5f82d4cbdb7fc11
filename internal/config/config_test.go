package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/config"
	"github.com/jonesrussell/north-cloud/collector/internal/feedgen"
	"github.com/jonesrussell/north-cloud/collector/internal/locator"
)

const sampleConfig = `
logger:
  level: debug
  encoding: console

fetch:
  user_agent: "Collector-Test/1.0"
  timeout: 10s
  rate_limit: 1s

resolve:
  lang: ja
  concurrency: 3
  locator:
    read_more: "続きを読む"

watch:
  feed_urls:
    - "https://example.com/rss"
  interval: 5m

feeds:
  - url: "https://example.com/latest"
    file_name: latest.xml
    feed_type: atom
    xpath_href: "//li/a/@href"
    xpath_title: "//li/a/text()"

routes:
  - name: example-news
    patterns:
      - 'example\.com/news/'
    locator:
      source_contains: "US版"
  - name: example-blog
    patterns:
      - 'example\.com/blog/'
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "Collector-Test/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "ja", cfg.Resolve.Lang)
	assert.Equal(t, 3, cfg.Resolve.Concurrency)
	assert.Equal(t, "続きを読む", cfg.Resolve.Locator.ReadMore)
	// unset locator fields get the defaults
	assert.Equal(t, locator.DefaultReadNext, cfg.Resolve.Locator.ReadNext)

	assert.Equal(t, []string{"https://example.com/rss"}, cfg.Watch.FeedURLs)
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, config.DefaultDatabase, cfg.Watch.Database)
	assert.Equal(t, config.DefaultOutput, cfg.Watch.Output)

	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "https://example.com/latest", cfg.Feeds[0].URL)
	assert.Equal(t, "latest.xml", cfg.Feeds[0].FileName)

	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, "example-news", cfg.Routes[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidFeedType(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - url: "https://example.com/latest"
    file_name: latest.xml
    feed_type: jsonfeed
    xpath_href: "//a/@href"
    xpath_title: "//a/text()"
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feedgen.ErrUnknownFeedType))
}

func TestLoad_InvalidRoutePattern(t *testing.T) {
	path := writeConfig(t, `
routes:
  - name: broken
    patterns:
      - '['
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_ConflictingRouteLocator(t *testing.T) {
	// the route's parent-contains collides with the default source_contains
	path := writeConfig(t, `
resolve:
  locator:
    source_contains: "US版"

routes:
  - name: conflicting
    patterns:
      - 'example\.com'
    locator:
      source_parent_contains: "関連"
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, locator.ErrConflictingSourceOptions))
}

func TestRouteTable_Resolve(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	table, err := config.CompileRoutes(cfg.Routes, cfg.Resolve.Locator)
	require.NoError(t, err)

	name, loc, err := table.Resolve("https://example.com/news/2026/08/article.html")
	require.NoError(t, err)
	assert.Equal(t, "example-news", name)
	assert.Equal(t, "US版", loc.SourceContains)
	// overrides merge over the default config
	assert.Equal(t, "続きを読む", loc.ReadMore)

	name, loc, err = table.Resolve("https://example.com/blog/post")
	require.NoError(t, err)
	assert.Equal(t, "example-blog", name)
	assert.Empty(t, loc.SourceContains)
}

func TestRouteTable_NoRoute(t *testing.T) {
	table, err := config.CompileRoutes([]config.Route{
		{Name: "only", Patterns: []string{`example\.org`}},
	}, locator.Config{})
	require.NoError(t, err)

	_, _, err = table.Resolve("https://unrelated.net/x")
	assert.True(t, errors.Is(err, config.ErrNoRoute))
}

func TestRouteTable_FirstMatchWins(t *testing.T) {
	table, err := config.CompileRoutes([]config.Route{
		{Name: "first", Patterns: []string{`example\.com`}},
		{Name: "second", Patterns: []string{`example\.com/news`}},
	}, locator.Config{})
	require.NoError(t, err)

	name, _, err := table.Resolve("https://example.com/news/x")
	require.NoError(t, err)
	assert.Equal(t, "first", name)
}
