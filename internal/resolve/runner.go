package resolve

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
)

// DefaultConcurrency bounds how many chains run at once when the caller
// does not say otherwise.
const DefaultConcurrency = 4

// ResolveAll runs one chain per start URL, at most concurrency chains at
// a time, and returns the finished items. A failed chain is logged and
// dropped; it never affects the other chains. Item order follows the
// start URL order, with failed chains' slots removed.
func (e *Engine) ResolveAll(ctx context.Context, startURLs []string, concurrency int) []*article.Item {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*article.Item, len(startURLs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, startURL := range startURLs {
		g.Go(func() error {
			item, err := e.Resolve(ctx, startURL)
			if err != nil {
				e.log.Error("chain failed", "start_url", startURL, "error", err)
				return nil
			}

			mu.Lock()
			results[i] = item
			mu.Unlock()
			return nil
		})
	}

	// chain errors are swallowed above, so Wait only gates completion
	_ = g.Wait()

	items := make([]*article.Item, 0, len(startURLs))
	for _, item := range results {
		if item != nil {
			items = append(items, item)
		}
	}
	return items
}
