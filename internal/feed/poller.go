package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonesrussell/north-cloud/collector/internal/logger"
)

// StateStore manages feed polling state and item dedup.
type StateStore interface {
	GetOrCreate(ctx context.Context, feedURL string) (*State, error)
	UpdateSuccess(ctx context.Context, feedURL string, etag, lastModified *string) error
	UpdateError(ctx context.Context, feedURL, errMsg string) error
	MarkSeen(ctx context.Context, feedURL, itemURL string) (bool, error)
}

// Poller polls feeds and reports the entries not seen before.
type Poller struct {
	fetcher HTTPFetcher
	store   StateStore
	log     logger.Interface
}

// NewPoller creates a feed poller.
func NewPoller(fetcher HTTPFetcher, store StateStore, log logger.Interface) *Poller {
	return &Poller{
		fetcher: fetcher,
		store:   store,
		log:     log.WithComponent("feed"),
	}
}

// PollFeed polls one feed and returns its new items. Conditional GET
// headers from the previous poll avoid re-parsing unchanged feeds; a 304
// returns no items and no error. Items already recorded in the store are
// filtered out.
func (p *Poller) PollFeed(ctx context.Context, feedURL string) ([]Item, error) {
	state, err := p.store.GetOrCreate(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("poll feed get state: %w", err)
	}

	resp, err := p.fetcher.Fetch(ctx, feedURL, state.ETag, state.LastModified)
	if err != nil {
		p.recordError(ctx, feedURL, err)
		return nil, fmt.Errorf("poll feed fetch: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		p.log.Debug("feed not modified, skipping", "feed_url", feedURL)
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("poll feed: unexpected status %d for %s", resp.StatusCode, feedURL)
		p.recordError(ctx, feedURL, statusErr)
		return nil, statusErr
	}

	items, err := ParseFeed(ctx, resp.Body)
	if err != nil {
		p.recordError(ctx, feedURL, err)
		return nil, fmt.Errorf("poll feed parse: %w", err)
	}

	fresh := p.filterSeen(ctx, feedURL, items)

	if err = p.store.UpdateSuccess(ctx, feedURL, resp.ETag, resp.LastModified); err != nil {
		return nil, fmt.Errorf("poll feed update state: %w", err)
	}

	p.log.Info("feed polled",
		"feed_url", feedURL,
		"items", len(items),
		"new_items", len(fresh),
	)
	return fresh, nil
}

// filterSeen keeps only items not yet recorded, marking each as seen. A
// store failure on one item keeps the item, trading a possible duplicate
// for never losing an entry.
func (p *Poller) filterSeen(ctx context.Context, feedURL string, items []Item) []Item {
	fresh := make([]Item, 0, len(items))
	for _, item := range items {
		isNew, err := p.store.MarkSeen(ctx, feedURL, item.URL)
		if err != nil {
			p.log.Warn("mark seen failed, keeping item", "item_url", item.URL, "error", err)
			fresh = append(fresh, item)
			continue
		}
		if isNew {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

// recordError persists the failure; the persistence error itself is only
// logged, the poll error is what the caller needs.
func (p *Poller) recordError(ctx context.Context, feedURL string, pollErr error) {
	if err := p.store.UpdateError(ctx, feedURL, pollErr.Error()); err != nil {
		p.log.Error("failed to record poll error", "feed_url", feedURL, "error", err)
	}
}
