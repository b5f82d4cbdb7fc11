package locator

// Default link texts, matching the Japanese news outlets the collector was
// built around.
const (
	// DefaultReadMore is the default anchor text of the link from a
	// summary page to the full article.
	DefaultReadMore = "記事全文を読む"

	// DefaultReadNext is the default anchor text of the link to the next
	// page of a multi-page article.
	DefaultReadNext = "次へ"
)

// Config selects how the three link queries match anchors on a page.
//
// ReadMoreXPath takes precedence over ReadMore. ReadNextContains takes
// precedence over ReadNext. SourceContains and SourceParentContains are
// mutually exclusive; with neither set the source query yields no links.
type Config struct {
	// ReadMore is the anchor text of the "read full article" link,
	// matched by containment.
	ReadMore string `yaml:"read_more" mapstructure:"read_more"`

	// ReadMoreXPath is an XPath expression matching the anchor element of
	// the "read full article" link. "/@href" is applied to the match.
	ReadMoreXPath string `yaml:"read_more_xpath" mapstructure:"read_more_xpath"`

	// ReadNext is the exact anchor text of the next-page link.
	ReadNext string `yaml:"read_next" mapstructure:"read_next"`

	// ReadNextContains matches the next-page link by text containment.
	ReadNextContains string `yaml:"read_next_contains" mapstructure:"read_next_contains"`

	// SourceContains matches source links whose anchor text contains the
	// value.
	SourceContains string `yaml:"source_contains" mapstructure:"source_contains"`

	// SourceParentContains matches source links with an ancestor within
	// two levels whose text contains the value.
	SourceParentContains string `yaml:"source_parent_contains" mapstructure:"source_parent_contains"`
}

// WithDefaults returns a copy of the config with the default link texts
// applied where unset.
func (c Config) WithDefaults() Config {
	if c.ReadMore == "" {
		c.ReadMore = DefaultReadMore
	}
	if c.ReadNext == "" {
		c.ReadNext = DefaultReadNext
	}
	return c
}

// Validate rejects conflicting options. Precedence between the
// non-exclusive pairs is handled by the queries themselves.
func (c Config) Validate() error {
	if c.SourceContains != "" && c.SourceParentContains != "" {
		return ErrConflictingSourceOptions
	}
	return nil
}
