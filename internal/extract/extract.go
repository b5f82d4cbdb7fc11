// Package extract turns a fetched page into article metadata and a
// well-formed XML body fragment. Readability provides the content body;
// OpenGraph/meta tags and JSON-LD fill in the metadata the way news sites
// actually publish it.
package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

// undeterminedLang is the sentinel language code for pages whose language
// cannot be determined. See ISO 639-2.
const undeterminedLang = "und"

// Result is the canonical representation of an extracted article.
type Result struct {
	URL         string
	Title       string
	Lang        string
	Author      string
	SiteName    string
	Description string
	Kind        string

	// PublishedTime and ModifiedTime are ISO-8601 strings, empty when the
	// page carries no parseable timestamp.
	PublishedTime string
	ModifiedTime  string

	// BodyXML is a well-formed XML document with a single <main> root.
	BodyXML string
}

// Extractor produces a Result from a page.
type Extractor interface {
	Extract(p *page.Page, langHint string) (*Result, error)
}

// ReadabilityExtractor implements Extractor with go-readability.
type ReadabilityExtractor struct {
	log logger.Interface
}

// New creates a ReadabilityExtractor.
func New(log logger.Interface) *ReadabilityExtractor {
	return &ReadabilityExtractor{log: log.WithComponent("extract")}
}

// Extract runs readability over the page and harvests metadata. langHint,
// when non-empty, overrides language detection. Failure to find content is
// a typed *Error wrapping ErrNoContent, never a silent empty result.
func (e *ReadabilityExtractor) Extract(p *page.Page, langHint string) (*Result, error) {
	pageURL, err := url.Parse(p.URL())
	if err != nil {
		return nil, &Error{URL: p.URL(), Err: fmt.Errorf("parse url: %w", err)}
	}

	article, err := readability.FromReader(strings.NewReader(p.Body()), pageURL)
	if err != nil {
		return nil, &Error{URL: p.URL(), Err: fmt.Errorf("readability: %w", err)}
	}

	if strings.TrimSpace(article.TextContent) == "" {
		return nil, &Error{URL: p.URL(), Err: ErrNoContent}
	}

	bodyXML, err := fragmentToXML(article.Content)
	if err != nil {
		return nil, &Error{URL: p.URL(), Err: fmt.Errorf("body to xml: %w", err)}
	}

	doc, err := p.Doc()
	if err != nil {
		return nil, &Error{URL: p.URL(), Err: err}
	}
	meta := harvestMeta(doc)

	result := &Result{
		URL:           p.URL(),
		Title:         firstNonEmpty(article.Title, meta.property["og:title"]),
		Lang:          e.language(langHint, doc, meta),
		Author:        firstNonEmpty(article.Byline, meta.name["article:author"], meta.property["article:author"], meta.jsonLD.author),
		SiteName:      firstNonEmpty(article.SiteName, meta.property["og:site_name"]),
		Description:   firstNonEmpty(article.Excerpt, meta.property["og:description"], meta.name["description"]),
		Kind:          meta.property["og:type"],
		PublishedTime: toISO8601(firstNonEmpty(meta.property["article:published_time"], meta.name["article:published_time"], meta.jsonLD.published)),
		ModifiedTime:  toISO8601(firstNonEmpty(meta.property["article:modified_time"], meta.name["article:modified_time"], meta.jsonLD.modified)),
		BodyXML:       bodyXML,
	}

	e.log.Debug("extracted article",
		"url", result.URL,
		"title", result.Title,
		"lang", result.Lang,
	)
	return result, nil
}

// language determines the two-letter language code: the hint wins, then
// <html lang>, then og:locale, then the undetermined sentinel.
func (e *ReadabilityExtractor) language(hint string, doc *goquery.Document, meta pageMeta) string {
	if hint != "" {
		return normalizeLang(hint)
	}

	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		return normalizeLang(lang)
	}

	if locale := meta.property["og:locale"]; locale != "" {
		return normalizeLang(locale)
	}

	return undeterminedLang
}

// normalizeLang reduces a language tag like "ja-JP" or "en_US" to its
// two-letter primary subtag.
func normalizeLang(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	if len(tag) != 2 {
		return undeterminedLang
	}
	return tag
}

// toISO8601 parses a loosely formatted timestamp and renders it as
// ISO-8601. Unparseable input yields an empty string.
func toISO8601(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// firstNonEmpty returns the first string whose trimmed value is non-empty.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
