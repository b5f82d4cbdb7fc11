// Package resolve implements the recursive article-resolution state
// machine. A chain starts from one summary URL and walks pointer links,
// next-page links, and source links until a single article item is fully
// assembled. Each chain owns all of its state; chains share nothing but
// the fetch transport.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/fetch"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
	"github.com/jonesrussell/north-cloud/collector/internal/urlutil"
)

// Assembler builds and extends article items from pages.
type Assembler interface {
	Assemble(p *page.Page, langHint string) (*article.Item, error)
	Merge(item *article.Item, p *page.Page) (*article.Item, error)
}

// LinkLocator runs the configured link queries against a page.
type LinkLocator interface {
	ReadMoreLink(p *page.Page) (string, error)
	NextPageLink(p *page.Page) (string, error)
	SourceLinks(p *page.Page) ([]string, error)
}

// Engine drives resolution chains.
type Engine struct {
	fetcher   fetch.Fetcher
	assembler Assembler
	locator   LinkLocator
	log       logger.Interface

	// lang, when set, is passed to the extractor as a language hint.
	lang string
}

// NewEngine creates a resolution engine.
func NewEngine(
	fetcher fetch.Fetcher,
	assembler Assembler,
	linkLocator LinkLocator,
	lang string,
	log logger.Interface,
) *Engine {
	return &Engine{
		fetcher:   fetcher,
		assembler: assembler,
		locator:   linkLocator,
		lang:      lang,
		log:       log.WithComponent("resolve"),
	}
}

// Resolve runs one chain from a summary-page URL to a finished item.
// A fatal error anywhere in the chain (entry or next-page fetch,
// extraction of a non-source page, merge failure, offsite pointer or
// next-page target) aborts the chain with no item. Source failures never
// abort; see stepSource.
func (e *Engine) Resolve(ctx context.Context, startURL string) (*article.Item, error) {
	log := e.log.With("chain_id", uuid.NewString(), "start_url", startURL)

	// the allowed-domain set is owned by this chain alone, computed fresh
	// from the start URL
	allowed, err := newDomainSet(startURL)
	if err != nil {
		return nil, fmt.Errorf("chain domains: %w", err)
	}

	pg, err := e.fetcher.Fetch(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("entry fetch: %w", err)
	}

	st := &chainState{kind: stateAwaitingPointerDecision, page: pg}
	for st.kind != stateDone {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		log.Debug("chain step", "state", st.kind.String(), "page_url", st.page.URL())

		st, err = e.step(ctx, st, allowed, log)
		if err != nil {
			return nil, err
		}
	}

	log.Debug("chain finished", "url", st.item.URL, "sources", len(st.item.Sources))
	return st.item, nil
}

// step advances the chain by one transition.
func (e *Engine) step(
	ctx context.Context,
	st *chainState,
	allowed domainSet,
	log logger.Interface,
) (*chainState, error) {
	switch st.kind {
	case stateAwaitingPointerDecision:
		return e.stepPointerDecision(ctx, st, allowed, log)
	case stateAwaitingNextPage:
		return e.stepNextPage(ctx, st, allowed, log)
	case stateAwaitingSource:
		return e.stepSource(ctx, st, log)
	default:
		return nil, fmt.Errorf("no transition from state %s", st.kind)
	}
}

// stepPointerDecision looks for a pointer ("read more") link. When one
// exists the summary page's own content is discarded and the target page
// becomes the first article page; otherwise the summary page itself is
// the first article page.
func (e *Engine) stepPointerDecision(
	ctx context.Context,
	st *chainState,
	allowed domainSet,
	log logger.Interface,
) (*chainState, error) {
	href, err := e.locator.ReadMoreLink(st.page)
	if err != nil {
		return nil, fmt.Errorf("pointer query: %w", err)
	}

	if href == "" {
		log.Debug("no pointer link, page is the article", "url", st.page.URL())
		return &chainState{kind: stateAwaitingNextPage, page: st.page}, nil
	}

	target, err := urlutil.Absolute(st.page.URL(), href)
	if err != nil {
		return nil, fmt.Errorf("pointer target: %w", err)
	}
	if err = allowed.check(target); err != nil {
		return nil, fmt.Errorf("pointer target %s: %w", target, err)
	}

	log.Debug("following pointer link", "target", target)

	pg, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("pointer fetch: %w", err)
	}
	return &chainState{kind: stateAwaitingNextPage, page: pg}, nil
}

// stepNextPage assembles the first page or merges a continuation page,
// then either follows the next-page link or moves on to the source scan.
// The source query runs against the final page of the article, not the
// first.
func (e *Engine) stepNextPage(
	ctx context.Context,
	st *chainState,
	allowed domainSet,
	log logger.Interface,
) (*chainState, error) {
	item := st.item
	var err error

	if item == nil {
		item, err = e.assembler.Assemble(st.page, e.lang)
		if err != nil {
			return nil, fmt.Errorf("assemble %s: %w", st.page.URL(), err)
		}
	} else {
		// a half-merged article is worse than none: abort the chain
		// rather than emit a partial body
		item, err = e.assembler.Merge(item, st.page)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", st.page.URL(), err)
		}
	}

	nextHref, err := e.locator.NextPageLink(st.page)
	if err != nil {
		return nil, fmt.Errorf("next-page query: %w", err)
	}

	if nextHref != "" {
		var target string
		target, err = urlutil.Absolute(st.page.URL(), nextHref)
		if err != nil {
			return nil, fmt.Errorf("next-page target: %w", err)
		}
		if err = allowed.check(target); err != nil {
			return nil, fmt.Errorf("next-page target %s: %w", target, err)
		}

		log.Debug("following next-page link", "target", target)

		pg, fetchErr := e.fetcher.Fetch(ctx, target)
		if fetchErr != nil {
			return nil, fmt.Errorf("next-page fetch: %w", fetchErr)
		}
		return &chainState{kind: stateAwaitingNextPage, page: pg, item: item}, nil
	}

	hrefs, err := e.locator.SourceLinks(st.page)
	if err != nil {
		return nil, fmt.Errorf("source query: %w", err)
	}

	queue := urlutil.DedupCanonical(st.page.URL(), hrefs)
	if len(queue) > 0 {
		log.Debug("source links found", "count", len(queue))
	}
	return &chainState{kind: stateAwaitingSource, page: st.page, item: item, queue: queue}, nil
}

// stepSource pops one URL from the source queue, fetches and assembles
// it, and appends the result to the item's sources. Any failure here is
// logged and skipped: a broken source must never destroy the parent
// item. Source pages are assumed to be single-page articles and their
// fetches are exempt from the chain's domain restriction.
func (e *Engine) stepSource(
	ctx context.Context,
	st *chainState,
	log logger.Interface,
) (*chainState, error) {
	if len(st.queue) == 0 {
		return &chainState{kind: stateDone, page: st.page, item: st.item}, nil
	}

	sourceURL := st.queue[0]
	rest := st.queue[1:]
	next := &chainState{kind: stateAwaitingSource, page: st.page, item: st.item, queue: rest}

	pg, err := e.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		log.Warn("source fetch failed, skipping", "source_url", sourceURL, "error", err)
		return next, nil
	}

	sourceItem, err := e.assembler.Assemble(pg, "")
	if err != nil {
		log.Warn("source extraction failed, skipping", "source_url", sourceURL, "error", err)
		return next, nil
	}

	st.item.Sources = append(st.item.Sources, sourceItem)
	return next, nil
}

// domainSet is the set of domains one chain may follow pointer and
// next-page links into.
type domainSet map[string]struct{}

// newDomainSet builds the allowed-domain set from a chain's start URL,
// converting IDN hosts to ASCII the way the dedup contract expects.
func newDomainSet(startURL string) (domainSet, error) {
	host, err := urlutil.Host(startURL)
	if err != nil {
		return nil, err
	}
	return domainSet{host: {}}, nil
}

// check returns ErrForbiddenDomain when the URL's host is neither an
// allowed domain nor a subdomain of one.
func (d domainSet) check(rawURL string) error {
	host, err := urlutil.Host(rawURL)
	if err != nil {
		return err
	}

	if _, ok := d[host]; ok {
		return nil
	}
	for domain := range d {
		if strings.HasSuffix(host, "."+domain) {
			return nil
		}
	}
	return ErrForbiddenDomain
}
