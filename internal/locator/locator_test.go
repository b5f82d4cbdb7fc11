package locator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/locator"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

func newLocator(t *testing.T, cfg locator.Config) *locator.Locator {
	t.Helper()

	l, err := locator.New(cfg, logger.NewNoOp())
	require.NoError(t, err)
	return l
}

func htmlPage(body string) *page.Page {
	return page.New("https://example.com/summary", "<html><body>"+body+"</body></html>")
}

func TestNew_ConflictingSourceOptions(t *testing.T) {
	_, err := locator.New(locator.Config{
		SourceContains:       "US version",
		SourceParentContains: "related",
	}, logger.NewNoOp())

	assert.True(t, errors.Is(err, locator.ErrConflictingSourceOptions))
}

func TestNew_InvalidXPath(t *testing.T) {
	_, err := locator.New(locator.Config{ReadMoreXPath: "//a["}, logger.NewNoOp())
	assert.Error(t, err)
}

func TestReadMoreLink_TextMatch(t *testing.T) {
	l := newLocator(t, locator.Config{ReadMore: "Read more"})

	pg := htmlPage(`
<a href="/other">Something else</a>
<a href="/full">Read more...</a>
<a href="/second">Read more too</a>`)

	href, err := l.ReadMoreLink(pg)
	require.NoError(t, err)
	assert.Equal(t, "/full", href, "first containment match wins")
}

func TestReadMoreLink_None(t *testing.T) {
	l := newLocator(t, locator.Config{ReadMore: "Read more"})

	href, err := l.ReadMoreLink(htmlPage(`<a href="/a">unrelated</a>`))
	require.NoError(t, err)
	assert.Empty(t, href)
}

// With both an XPath locator and a text match configured, the XPath target
// must win even when a text-match target is present.
func TestReadMoreLink_XPathPrecedence(t *testing.T) {
	l := newLocator(t, locator.Config{
		ReadMore:      "Read more",
		ReadMoreXPath: `//div[@class="hero"]/a`,
	})

	pg := htmlPage(`
<a href="/text-target">Read more</a>
<div class="hero"><a href="/xpath-target">Continue</a></div>`)

	href, err := l.ReadMoreLink(pg)
	require.NoError(t, err)
	assert.Equal(t, "/xpath-target", href)
}

// With an XPath locator configured, a page where the expression matches
// nothing yields no link, and the text match must not be consulted.
func TestReadMoreLink_XPathNoMatch(t *testing.T) {
	l := newLocator(t, locator.Config{
		ReadMore:      "Read more",
		ReadMoreXPath: `//div[@class="hero"]/a`,
	})

	href, err := l.ReadMoreLink(htmlPage(`<a href="/text-target">Read more</a>`))
	require.NoError(t, err)
	assert.Empty(t, href)
}

func TestNextPageLink_ExactMatch(t *testing.T) {
	l := newLocator(t, locator.Config{ReadNext: "次へ"})

	pg := htmlPage(`
<a href="/p1">次へ進む</a>
<a href="/p2">次へ</a>`)

	href, err := l.NextPageLink(pg)
	require.NoError(t, err)
	assert.Equal(t, "/p2", href, "exact match must skip the containment-only anchor")
}

func TestNextPageLink_ContainsPrecedence(t *testing.T) {
	l := newLocator(t, locator.Config{
		ReadNext:         "次へ",
		ReadNextContains: "Next",
	})

	pg := htmlPage(`
<a href="/exact">次へ</a>
<a href="/contains">Next page</a>`)

	href, err := l.NextPageLink(pg)
	require.NoError(t, err)
	assert.Equal(t, "/contains", href, "contains variant replaces the exact match entirely")
}

func TestNextPageLink_ContainsOnly(t *testing.T) {
	l := newLocator(t, locator.Config{ReadNextContains: "Next"})

	pg := htmlPage(`
<a href="/one">次へ</a>
<a href="/two">Next page</a>`)

	href, err := l.NextPageLink(pg)
	require.NoError(t, err)
	assert.Equal(t, "/two", href)
}

func TestSourceLinks_Contains(t *testing.T) {
	l := newLocator(t, locator.Config{SourceContains: "US版"})

	pg := htmlPage(`
<main>
<a href="/a">US版</a>
<p><a href="/b">US版はこちら</a></p>
<a href="/c">日本版</a>
</main>`)

	hrefs, err := l.SourceLinks(pg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, hrefs)
}

func TestSourceLinks_ParentContains(t *testing.T) {
	l := newLocator(t, locator.Config{SourceParentContains: "英語記事"})

	pg := htmlPage(`
<main>
<p>英語記事: <a href="/foo">foo</a> / <a href="/bar">bar</a></p>
<p>無関係: <a href="/baz">baz</a></p>
</main>`)

	hrefs, err := l.SourceLinks(pg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/foo", "/bar"}, hrefs)
}

func TestSourceLinks_AncestorWithinTwoLevels(t *testing.T) {
	l := newLocator(t, locator.Config{SourceParentContains: "関連"})

	// grandparent text matches; great-grandparent must not
	pg := htmlPage(`
<div>関連<span><a href="/grand">a</a></span></div>
<div>関連<span><em><a href="/too-deep">b</a></em></span></div>`)

	hrefs, err := l.SourceLinks(pg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/grand"}, hrefs)
}

func TestSourceLinks_NeitherConfigured(t *testing.T) {
	l := newLocator(t, locator.Config{})

	hrefs, err := l.SourceLinks(htmlPage(`<a href="/a">anything</a>`))
	require.NoError(t, err)
	assert.Empty(t, hrefs)
}
