// Package article owns the resolved-article entity and its assembly:
// building an item from an extracted page, merging multi-page bodies into
// one well-formed XML body, and the derived character count.
package article

// Item represents one resolved article.
//
// Body always holds an XML document with exactly one top-level <main>
// element. URL and AcquiredTime are set once at assembly and never
// mutated. Sources is append-only and one level deep: a source item never
// has sources of its own.
type Item struct {
	URL            string  `json:"url"`
	Title          string  `json:"title,omitempty"`
	Body           string  `json:"body"`
	Lang           string  `json:"lang"`
	Author         string  `json:"author,omitempty"`
	Description    string  `json:"description,omitempty"`
	SiteName       string  `json:"site_name,omitempty"`
	Kind           string  `json:"kind,omitempty"`
	Fingerprint    string  `json:"fingerprint,omitempty"`
	PublishedTime  string  `json:"published_time,omitempty"`
	ModifiedTime   string  `json:"modified_time,omitempty"`
	AcquiredTime   string  `json:"acquired_time"`
	CharacterCount int     `json:"character_count"`
	Sources        []*Item `json:"sources"`
}

// FeedItem represents one generated Atom/RSS feed document.
type FeedItem struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	Content     string `json:"content"`
	GeneratedAt string `json:"generated_at"`
}
