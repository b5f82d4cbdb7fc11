// Package locator implements the three link queries that drive article
// resolution: the pointer ("read more") link from a summary page, the
// next-page link of a multi-page article, and the source links on the
// final page.
package locator

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

// Locator runs the configured link queries against fetched pages.
type Locator struct {
	cfg           Config
	readMoreXPath *xpath.Expr
	log           logger.Interface
}

// New validates the config and compiles the structural locator expression.
// Conflicting options and uncompilable XPath are rejected here, at
// configuration time, not during resolution.
func New(cfg Config, log logger.Interface) (*Locator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Locator{cfg: cfg, log: log.WithComponent("locator")}

	if cfg.ReadMoreXPath != "" {
		expr, err := xpath.Compile(cfg.ReadMoreXPath)
		if err != nil {
			return nil, fmt.Errorf("compile read_more_xpath %q: %w", cfg.ReadMoreXPath, err)
		}
		l.readMoreXPath = expr
	}

	return l, nil
}

// ReadMoreLink returns the href of the link to the full article, or ""
// when the page has none. The XPath locator takes precedence over the
// text match.
func (l *Locator) ReadMoreLink(p *page.Page) (string, error) {
	if l.readMoreXPath != nil {
		root, err := p.Root()
		if err != nil {
			return "", err
		}

		node := htmlquery.QuerySelector(root, l.readMoreXPath)
		if node == nil {
			return "", nil
		}
		return htmlquery.SelectAttr(node, "href"), nil
	}

	return firstAnchor(p, func(text string) bool {
		return strings.Contains(text, l.cfg.ReadMore)
	})
}

// NextPageLink returns the href of the link to the next page of the same
// article, or "" when the page has none. The contains variant takes
// precedence over the exact text match.
func (l *Locator) NextPageLink(p *page.Page) (string, error) {
	if l.cfg.ReadNextContains != "" {
		return firstAnchor(p, func(text string) bool {
			return strings.Contains(text, l.cfg.ReadNextContains)
		})
	}

	return firstAnchor(p, func(text string) bool {
		return text == l.cfg.ReadNext
	})
}

// SourceLinks returns the hrefs of every link to a referenced source
// article, in document order. With neither source option configured the
// query yields no links; that is not an error.
func (l *Locator) SourceLinks(p *page.Page) ([]string, error) {
	switch {
	case l.cfg.SourceContains != "":
		return allAnchors(p, func(s *goquery.Selection) bool {
			return strings.Contains(s.Text(), l.cfg.SourceContains)
		})
	case l.cfg.SourceParentContains != "":
		return allAnchors(p, func(s *goquery.Selection) bool {
			return ancestorTextContains(s, l.cfg.SourceParentContains, 2)
		})
	default:
		return nil, nil
	}
}

// firstAnchor returns the href of the first anchor whose descendant text
// satisfies match.
func firstAnchor(p *page.Page, match func(text string) bool) (string, error) {
	doc, err := p.Doc()
	if err != nil {
		return "", err
	}

	var href string
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !match(s.Text()) {
			return true
		}
		if v, ok := s.Attr("href"); ok {
			href = v
			return false
		}
		return true
	})

	return href, nil
}

// allAnchors returns the hrefs of every anchor satisfying match, in
// document order.
func allAnchors(p *page.Page, match func(s *goquery.Selection) bool) ([]string, error) {
	doc, err := p.Doc()
	if err != nil {
		return nil, err
	}

	var hrefs []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if !match(s) {
			return
		}
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	return hrefs, nil
}

// ancestorTextContains reports whether any ancestor within maxLevels of
// the anchor has its own text (direct text nodes, not descendants)
// containing value.
func ancestorTextContains(s *goquery.Selection, value string, maxLevels int) bool {
	current := s.Parent()
	for level := 0; level < maxLevels && current.Length() > 0; level++ {
		if strings.Contains(ownText(current), value) {
			return true
		}
		current = current.Parent()
	}
	return false
}

// ownText concatenates the direct child text nodes of the selection,
// excluding text inside nested elements.
func ownText(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			sb.WriteString(c.Text())
		}
	})
	return sb.String()
}
