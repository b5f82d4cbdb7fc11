// Package feedgen generates synthetic Atom/RSS feeds for sites that do
// not publish one, by scraping a listing page with configured XPath
// expressions.
package feedgen

import (
	"fmt"

	"github.com/antchfx/xpath"
)

// Feed types accepted by Entry.FeedType.
const (
	FeedTypeAtom = "atom"
	FeedTypeRSS  = "rss"
)

// Entry configures feed generation for one listing page.
type Entry struct {
	// URL is the listing page to scrape.
	URL string `yaml:"url" mapstructure:"url"`

	// FileName is the name of the generated feed file, unique per page.
	// The file is overwritten on each generation.
	FileName string `yaml:"file_name" mapstructure:"file_name"`

	// FeedType is "atom" or "rss". Defaults to atom.
	FeedType string `yaml:"feed_type" mapstructure:"feed_type"`

	// XPathHref selects the href attribute of each article link, e.g.
	// //li[@class='articles-list__item']/a/@href.
	XPathHref string `yaml:"xpath_href" mapstructure:"xpath_href"`

	// XPathTitle selects the title text of each article link.
	XPathTitle string `yaml:"xpath_title" mapstructure:"xpath_title"`
}

// Config is the list of feed entries, generated in order.
type Config []Entry

// WithDefaults returns a copy of the config with the default feed type
// applied where unset.
func (c Config) WithDefaults() Config {
	out := make(Config, len(c))
	for i, entry := range c {
		if entry.FeedType == "" {
			entry.FeedType = FeedTypeAtom
		}
		out[i] = entry
	}
	return out
}

// Validate rejects missing URLs, unknown feed types, uncompilable XPath
// expressions, missing file names, and file names shared between pages.
func (c Config) Validate() error {
	seen := make(map[string]string, len(c))

	for _, entry := range c {
		if entry.URL == "" {
			return ErrMissingURL
		}

		if entry.FeedType != FeedTypeAtom && entry.FeedType != FeedTypeRSS {
			return fmt.Errorf("feed %s: type %q: %w", entry.URL, entry.FeedType, ErrUnknownFeedType)
		}

		if entry.FileName == "" {
			return fmt.Errorf("feed %s: %w", entry.URL, ErrMissingFileName)
		}
		if other, dup := seen[entry.FileName]; dup {
			return fmt.Errorf("feed %s: file name %q already used by %s: %w",
				entry.URL, entry.FileName, other, ErrDuplicateFileName)
		}
		seen[entry.FileName] = entry.URL

		if _, err := xpath.Compile(entry.XPathHref); err != nil {
			return fmt.Errorf("feed %s: xpath_href: %w", entry.URL, err)
		}
		if _, err := xpath.Compile(entry.XPathTitle); err != nil {
			return fmt.Errorf("feed %s: xpath_title: %w", entry.URL, err)
		}
	}

	return nil
}
