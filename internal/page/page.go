// Package page provides the fetched-page representation shared by the
// link locators and the metadata extractor.
package page

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is one fetched HTML page. The URL is the final URL after redirects,
// so relative links resolve against the page the server actually returned.
// The parse tree is built lazily and shared between the goquery document
// and XPath queries.
type Page struct {
	url  string
	body string

	once     sync.Once
	root     *html.Node
	doc      *goquery.Document
	parseErr error
}

// New creates a Page from a final URL and the raw response body.
func New(url, body string) *Page {
	return &Page{url: url, body: body}
}

// URL returns the page URL.
func (p *Page) URL() string { return p.url }

// Body returns the raw response body.
func (p *Page) Body() string { return p.body }

// Root returns the root node of the parsed HTML document.
func (p *Page) Root() (*html.Node, error) {
	p.parse()
	return p.root, p.parseErr
}

// Doc returns a goquery document over the parsed HTML.
func (p *Page) Doc() (*goquery.Document, error) {
	p.parse()
	return p.doc, p.parseErr
}

func (p *Page) parse() {
	p.once.Do(func() {
		root, err := html.Parse(strings.NewReader(p.body))
		if err != nil {
			p.parseErr = fmt.Errorf("parse page %s: %w", p.url, err)
			return
		}
		p.root = root
		p.doc = goquery.NewDocumentFromNode(root)
	})
}
