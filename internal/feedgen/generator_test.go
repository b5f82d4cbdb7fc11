package feedgen_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/feedgen"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*page.Page, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("fetch " + rawURL + ": not found")
	}
	return page.New(rawURL, body), nil
}

const listingHTML = `<html>
<head><title>Latest Articles</title></head>
<body>
<ul>
<li class="articles-list__item"><a href="/articles/1">First article</a></li>
<li class="articles-list__item"><a href="/articles/2">Second article</a></li>
</ul>
</body>
</html>`

func listingEntry(url, feedType string) feedgen.Entry {
	return feedgen.Entry{
		URL:        url,
		FileName:   "latest.xml",
		FeedType:   feedType,
		XPathHref:  `//li[@class='articles-list__item']/a/@href`,
		XPathTitle: `//li[@class='articles-list__item']/a/text()`,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     feedgen.Config
		wantErr error
	}{
		{
			name:    "valid",
			cfg:     feedgen.Config{listingEntry("https://example.com/latest", "atom")},
			wantErr: nil,
		},
		{
			name:    "unknown feed type",
			cfg:     feedgen.Config{listingEntry("https://example.com/latest", "json")},
			wantErr: feedgen.ErrUnknownFeedType,
		},
		{
			name: "missing url",
			cfg: feedgen.Config{{
				FileName: "latest.xml", FeedType: "atom",
				XPathHref: "//a/@href", XPathTitle: "//a/text()",
			}},
			wantErr: feedgen.ErrMissingURL,
		},
		{
			name: "missing file name",
			cfg: feedgen.Config{{
				URL: "https://example.com/latest", FeedType: "atom",
				XPathHref: "//a/@href", XPathTitle: "//a/text()",
			}},
			wantErr: feedgen.ErrMissingFileName,
		},
		{
			name: "duplicate file name",
			cfg: feedgen.Config{
				listingEntry("https://example.com/a", "atom"),
				listingEntry("https://example.com/b", "rss"),
			},
			wantErr: feedgen.ErrDuplicateFileName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestConfigValidate_BadXPath(t *testing.T) {
	cfg := feedgen.Config{{
		URL: "https://example.com/latest", FileName: "latest.xml", FeedType: "atom",
		XPathHref: "//a[", XPathTitle: "//a/text()",
	}}
	assert.Error(t, cfg.Validate())
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := feedgen.Config{{URL: "https://example.com/latest", FileName: "latest.xml"}}.WithDefaults()
	assert.Equal(t, feedgen.FeedTypeAtom, cfg[0].FeedType)
}

func TestGenerate_Atom(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/latest": listingHTML,
	}}
	gen := feedgen.NewGenerator(fetcher, logger.NewNoOp())

	item, err := gen.Generate(context.Background(), listingEntry("https://example.com/latest", "atom"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/latest", item.URL)
	assert.Equal(t, "latest.xml", item.FileName)
	assert.NotEmpty(t, item.GeneratedAt)

	// relative hrefs must come out absolute
	assert.Contains(t, item.Content, "https://example.com/articles/1")
	assert.Contains(t, item.Content, "https://example.com/articles/2")
	assert.Contains(t, item.Content, "First article")
	assert.Contains(t, item.Content, "Latest Articles")
	assert.Contains(t, item.Content, "<feed")
}

func TestGenerate_RSS(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/latest": listingHTML,
	}}
	gen := feedgen.NewGenerator(fetcher, logger.NewNoOp())

	item, err := gen.Generate(context.Background(), listingEntry("https://example.com/latest", "rss"))
	require.NoError(t, err)
	assert.Contains(t, item.Content, "<rss")
}

func TestGenerate_NoLinks(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/empty": `<html><head><title>Empty</title></head><body></body></html>`,
	}}
	gen := feedgen.NewGenerator(fetcher, logger.NewNoOp())

	_, err := gen.Generate(context.Background(), listingEntry("https://example.com/empty", "atom"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, feedgen.ErrNoLinks))
}

// One unreachable listing page must not block the others.
func TestGenerateAll_SkipsFailures(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/latest": listingHTML,
	}}
	gen := feedgen.NewGenerator(fetcher, logger.NewNoOp())

	other := listingEntry("https://example.com/down", "atom")
	other.FileName = "other.xml"

	items := gen.GenerateAll(context.Background(), feedgen.Config{
		other,
		listingEntry("https://example.com/latest", "atom"),
	})

	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/latest", items[0].URL)
}
