// Package config loads and validates the collector configuration: the
// fetch transport, the default locator, the route table, the watch loop,
// and the synthetic feeds.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/collector/internal/feedgen"
	"github.com/jonesrussell/north-cloud/collector/internal/fetch"
	"github.com/jonesrussell/north-cloud/collector/internal/locator"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
)

// Default file locations.
const (
	DefaultConfigFile = "config.yaml"
	DefaultDatabase   = "db/watch.db"
	DefaultOutput     = "out/items.jsonl"
	DefaultFeedDir    = "out/feeds"
)

// Config is the full collector configuration.
type Config struct {
	Logger  logger.Config  `yaml:"logger" mapstructure:"logger"`
	Fetch   fetch.Config   `yaml:"fetch" mapstructure:"fetch"`
	Resolve ResolveConfig  `yaml:"resolve" mapstructure:"resolve"`
	Watch   WatchConfig    `yaml:"watch" mapstructure:"watch"`
	Feeds   feedgen.Config `yaml:"feeds" mapstructure:"feeds"`
	Routes  []Route        `yaml:"routes" mapstructure:"routes"`
}

// ResolveConfig configures the resolution engine.
type ResolveConfig struct {
	// Lang is the language hint passed to the extractor.
	Lang string `yaml:"lang" mapstructure:"lang"`

	// Concurrency bounds how many chains run at once.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// Locator is the default link configuration, used when no route
	// overrides it.
	Locator locator.Config `yaml:"locator" mapstructure:"locator"`
}

// WatchConfig configures the RSS watch loop.
type WatchConfig struct {
	// FeedURLs are the feeds to poll.
	FeedURLs []string `yaml:"feed_urls" mapstructure:"feed_urls"`

	// Interval between polls. Ignored when Cron is set.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Cron is an optional cron schedule replacing the fixed interval.
	Cron string `yaml:"cron" mapstructure:"cron"`

	// Database is the SQLite path for polling state.
	Database string `yaml:"database" mapstructure:"database"`

	// Output is the base path of the JSON-lines item files.
	Output string `yaml:"output" mapstructure:"output"`

	// FeedDir is where generated feed files are stored.
	FeedDir string `yaml:"feed_dir" mapstructure:"feed_dir"`
}

// Load reads and validates the configuration file at path. A missing
// file is an error; the zero path falls back to DefaultConfigFile.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("COLLECTOR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Fetch = c.Fetch.WithDefaults()
	c.Resolve.Locator = c.Resolve.Locator.WithDefaults()
	c.Feeds = c.Feeds.WithDefaults()

	if c.Watch.Database == "" {
		c.Watch.Database = DefaultDatabase
	}
	if c.Watch.Output == "" {
		c.Watch.Output = DefaultOutput
	}
	if c.Watch.FeedDir == "" {
		c.Watch.FeedDir = DefaultFeedDir
	}
}

// Validate checks every section. Locator conflicts, bad route patterns,
// and bad feed entries all fail here, before anything is fetched.
func (c *Config) Validate() error {
	if err := c.Resolve.Locator.Validate(); err != nil {
		return fmt.Errorf("resolve.locator: %w", err)
	}

	if err := c.Feeds.Validate(); err != nil {
		return fmt.Errorf("feeds: %w", err)
	}

	if _, err := CompileRoutes(c.Routes, c.Resolve.Locator); err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	return nil
}
