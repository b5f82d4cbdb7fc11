package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/collector/internal/logger"
)

// DefaultInterval is the poll interval used when neither an interval nor
// a cron expression is configured.
const DefaultInterval = 15 * time.Minute

// ItemPoller polls one feed and returns its new items.
type ItemPoller interface {
	PollFeed(ctx context.Context, feedURL string) ([]Item, error)
}

// Handler receives the new item URLs of one watch cycle.
type Handler func(ctx context.Context, urls []string)

// Watcher runs the watch loop: on each cycle it optionally refreshes the
// synthetic feeds, polls every configured feed, and hands the new item
// URLs to the handler. Failures inside a cycle are logged and never stop
// the loop.
type Watcher struct {
	poller   ItemPoller
	feedURLs []string
	handle   Handler
	log      logger.Interface

	// refresh, when set, runs before polling so synthetic feeds are
	// regenerated in the same cycle that reads them.
	refresh func(ctx context.Context)
}

// NewWatcher creates a watcher over the given feed URLs.
func NewWatcher(
	poller ItemPoller,
	feedURLs []string,
	handle Handler,
	refresh func(ctx context.Context),
	log logger.Interface,
) *Watcher {
	return &Watcher{
		poller:   poller,
		feedURLs: feedURLs,
		handle:   handle,
		refresh:  refresh,
		log:      log.WithComponent("watch"),
	}
}

// Run blocks until ctx is cancelled, cycling on the given interval. One
// cycle runs immediately at startup. Returns nil on clean shutdown.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watch loop stopped")
			return nil
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// RunCron blocks until ctx is cancelled, cycling on a cron schedule
// instead of a fixed interval. An invalid expression is an error before
// the first cycle.
func (w *Watcher) RunCron(ctx context.Context, expr string) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(expr, func() { w.cycle(ctx) }); err != nil {
		return fmt.Errorf("cron schedule %q: %w", expr, err)
	}

	w.cycle(ctx)

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	w.log.Info("watch loop stopped")
	return nil
}

// cycle runs one refresh-poll-dispatch round.
func (w *Watcher) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if w.refresh != nil {
		w.refresh(ctx)
	}

	var urls []string
	for _, feedURL := range w.feedURLs {
		items, err := w.poller.PollFeed(ctx, feedURL)
		if err != nil {
			w.log.Error("feed poll failed", "feed_url", feedURL, "error", err)
			continue
		}
		for _, item := range items {
			urls = append(urls, item.URL)
		}
	}

	if len(urls) == 0 {
		w.log.Debug("no new entries")
		return
	}

	w.log.Info("dispatching new entries", "count", len(urls))
	w.handle(ctx, urls)
}
