package fetch

import "time"

// Default configuration values.
const (
	defaultUserAgent      = "NorthCloud-Collector/1.0"
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimit      = 2 * time.Second
	defaultParallelism    = 2
	defaultMaxBodySize    = 10 * 1024 * 1024 // 10 MB
)

// Config holds fetch client configuration.
type Config struct {
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit   time.Duration `yaml:"rate_limit" mapstructure:"rate_limit"`
	Parallelism int           `yaml:"parallelism" mapstructure:"parallelism"`
	CacheDir    string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	MaxBodySize int           `yaml:"max_body_size" mapstructure:"max_body_size"`
}

// WithDefaults returns a copy of the config with default values applied
// for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultRequestTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.Parallelism <= 0 {
		c.Parallelism = defaultParallelism
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
	return c
}
