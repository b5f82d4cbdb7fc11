package feedgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/gorilla/feeds"
	"golang.org/x/net/html"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/fetch"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/urlutil"
)

var titleExpr = xpath.MustCompile("//title")

// Generator scrapes listing pages and renders them as feed documents.
type Generator struct {
	fetcher fetch.Fetcher
	log     logger.Interface
	now     func() time.Time
}

// NewGenerator creates a feed generator using the given transport.
func NewGenerator(fetcher fetch.Fetcher, log logger.Interface) *Generator {
	return &Generator{
		fetcher: fetcher,
		log:     log.WithComponent("feedgen"),
		now:     time.Now,
	}
}

// Generate fetches one listing page and builds its feed document. The
// entry must have passed Config.Validate.
func (g *Generator) Generate(ctx context.Context, entry Entry) (*article.FeedItem, error) {
	pageURL := entry.URL

	pg, err := g.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: fetch: %w", pageURL, err)
	}

	root, err := pg.Root()
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", pageURL, err)
	}

	hrefs, err := selectValues(root, entry.XPathHref)
	if err != nil {
		return nil, fmt.Errorf("feed %s: xpath_href: %w", pageURL, err)
	}
	if len(hrefs) == 0 {
		return nil, fmt.Errorf("feed %s: %w", pageURL, ErrNoLinks)
	}

	titles, err := selectValues(root, entry.XPathTitle)
	if err != nil {
		return nil, fmt.Errorf("feed %s: xpath_title: %w", pageURL, err)
	}

	now := g.now().UTC()

	feed := &feeds.Feed{
		Id:      pageURL,
		Title:   pageTitle(root, pageURL),
		Link:    &feeds.Link{Href: pageURL, Rel: "self"},
		Created: now,
	}

	for i, href := range hrefs {
		abs, absErr := urlutil.Absolute(pg.URL(), href)
		if absErr != nil {
			g.log.Warn("skipping unresolvable feed link", "page_url", pageURL, "href", href)
			continue
		}

		var title string
		if i < len(titles) {
			title = strings.TrimSpace(titles[i])
		}

		feed.Items = append(feed.Items, &feeds.Item{
			Id:    abs,
			Title: title,
			Link:  &feeds.Link{Href: abs},
		})
	}

	content, err := render(feed, entry.FeedType)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", pageURL, err)
	}

	g.log.Debug("generated feed",
		"page_url", pageURL,
		"file_name", entry.FileName,
		"entries", len(feed.Items),
	)

	return &article.FeedItem{
		URL:         pageURL,
		FileName:    entry.FileName,
		Content:     content,
		GeneratedAt: now.Format(time.RFC3339),
	}, nil
}

// GenerateAll generates every configured feed in config order. Failures
// are logged and skipped so one broken listing page cannot block the
// rest.
func (g *Generator) GenerateAll(ctx context.Context, cfg Config) []*article.FeedItem {
	items := make([]*article.FeedItem, 0, len(cfg))
	for _, entry := range cfg {
		item, err := g.Generate(ctx, entry)
		if err != nil {
			g.log.Error("feed generation failed", "page_url", entry.URL, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// selectValues compiles expr and returns the text value of each match in
// document order. Attribute matches yield the attribute value.
func selectValues(root *html.Node, expr string) ([]string, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}

	nodes := htmlquery.QuerySelectorAll(root, compiled)
	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, htmlquery.InnerText(node))
	}
	return values, nil
}

// pageTitle returns the listing page's <title>, or a placeholder naming
// the URL when the page has none.
func pageTitle(root *html.Node, pageURL string) string {
	if node := htmlquery.QuerySelector(root, titleExpr); node != nil {
		if title := strings.TrimSpace(htmlquery.InnerText(node)); title != "" {
			return title
		}
	}
	return "Feed for " + pageURL
}

// render serializes the feed in the configured format.
func render(feed *feeds.Feed, feedType string) (string, error) {
	switch feedType {
	case FeedTypeAtom:
		return feed.ToAtom()
	case FeedTypeRSS:
		return feed.ToRss()
	default:
		return "", fmt.Errorf("type %q: %w", feedType, ErrUnknownFeedType)
	}
}
