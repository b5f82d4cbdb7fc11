package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/feed"
)

const rssBody = `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>Example</title>
<item>
  <title>First</title>
  <link>https://example.com/articles/1</link>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
<item>
  <title>GUID only</title>
  <guid>https://example.com/articles/2</guid>
</item>
<item>
  <title>No link at all</title>
  <guid isPermaLink="false">tag:example.com,2006:3</guid>
</item>
</channel>
</rss>`

const atomBody = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Example</title>
<entry>
  <title>Atom entry</title>
  <link href="https://example.com/articles/9"/>
  <id>tag:example.com,2006:9</id>
</entry>
</feed>`

func TestParseFeed_RSS(t *testing.T) {
	items, err := feed.ParseFeed(context.Background(), rssBody)
	require.NoError(t, err)

	require.Len(t, items, 2, "the linkless entry is skipped")
	assert.Equal(t, "https://example.com/articles/1", items[0].URL)
	assert.Equal(t, "First", items[0].Title)
	assert.NotEmpty(t, items[0].PublishedAt)

	// GUID fallback
	assert.Equal(t, "https://example.com/articles/2", items[1].URL)
	assert.Empty(t, items[1].PublishedAt)
}

func TestParseFeed_Atom(t *testing.T) {
	items, err := feed.ParseFeed(context.Background(), atomBody)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/articles/9", items[0].URL)
}

func TestParseFeed_Invalid(t *testing.T) {
	_, err := feed.ParseFeed(context.Background(), "not a feed")
	assert.Error(t, err)
}

func TestParseFeed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := feed.ParseFeed(ctx, rssBody)
	assert.Error(t, err)
}
