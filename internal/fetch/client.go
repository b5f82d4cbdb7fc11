// Package fetch provides the HTTP transport for page retrieval. It wraps a
// colly collector so that per-domain rate limiting, response caching, and
// body size limits apply across every chain in the process.
package fetch

import (
	"context"
	"errors"
	"fmt"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

// ErrEmptyResponse is returned when a fetch completes without a response.
var ErrEmptyResponse = errors.New("empty response")

// Fetcher retrieves a single page. The resolution engine depends on this
// interface, never on the concrete transport.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*page.Page, error)
}

// Client implements Fetcher on top of colly.
type Client struct {
	collector *colly.Collector
	log       logger.Interface
}

// NewClient creates a fetch client. The rate limit applies per domain and
// is shared by all callers, which is the only backpressure the resolution
// engine relies on.
func NewClient(cfg Config, log logger.Interface) (*Client, error) {
	cfg = cfg.WithDefaults()

	opts := []colly.CollectorOption{
		colly.UserAgent(cfg.UserAgent),
		colly.MaxBodySize(cfg.MaxBodySize),
		// chains may legitimately revisit a URL another chain already saw
		colly.AllowURLRevisit(),
	}
	if cfg.CacheDir != "" {
		opts = append(opts, colly.CacheDir(cfg.CacheDir))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(cfg.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       cfg.RateLimit,
		RandomDelay: cfg.RateLimit / 2,
		Parallelism: cfg.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("fetch client limit rule: %w", err)
	}

	return &Client{
		collector: c,
		log:       log.WithComponent("fetch"),
	}, nil
}

// Fetch retrieves rawURL and returns the page with its final post-redirect
// URL. Each call runs on a clone of the shared collector: callbacks stay
// private to this call while the HTTP backend, limit rules, and cache are
// shared process-wide.
func (cl *Client) Fetch(ctx context.Context, rawURL string) (*page.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	c := cl.collector.Clone()

	var (
		pg       *page.Page
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		pg = page.New(r.Request.URL.String(), string(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("fetch %s: status %d: %w", rawURL, r.StatusCode, err)
			return
		}
		fetchErr = fmt.Errorf("fetch %s: %w", rawURL, err)
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if pg == nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrEmptyResponse)
	}

	cl.log.Debug("fetched page", "url", rawURL, "final_url", pg.URL(), "bytes", len(pg.Body()))
	return pg, nil
}
