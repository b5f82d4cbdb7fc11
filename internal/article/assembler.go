package article

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/antchfx/xmlquery"

	"github.com/jonesrussell/north-cloud/collector/internal/extract"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/page"
)

// rootElement is the required single top-level element of every item body.
const rootElement = "main"

// Assembler builds and extends Items from fetched pages.
type Assembler struct {
	extractor extract.Extractor
	log       logger.Interface
	now       func() time.Time
}

// NewAssembler creates an Assembler using the given extractor.
func NewAssembler(extractor extract.Extractor, log logger.Interface) *Assembler {
	return &Assembler{
		extractor: extractor,
		log:       log.WithComponent("article"),
		now:       time.Now,
	}
}

// Assemble extracts page into a new Item. The extracted body must carry a
// single <main> root; anything else is an extraction failure.
func (a *Assembler) Assemble(p *page.Page, langHint string) (*Item, error) {
	result, err := a.extractor.Extract(p, langHint)
	if err != nil {
		return nil, err
	}

	if _, rootErr := bodyRoot(result.BodyXML); rootErr != nil {
		return nil, &extract.Error{URL: p.URL(), Err: rootErr}
	}

	text := strippedText(result.BodyXML)

	item := &Item{
		URL:            result.URL,
		Title:          result.Title,
		Body:           result.BodyXML,
		Lang:           result.Lang,
		Author:         result.Author,
		Description:    result.Description,
		SiteName:       result.SiteName,
		Kind:           result.Kind,
		Fingerprint:    fingerprint(text),
		PublishedTime:  result.PublishedTime,
		ModifiedTime:   result.ModifiedTime,
		AcquiredTime:   a.now().UTC().Format(time.RFC3339),
		CharacterCount: len([]rune(text)),
		Sources:        []*Item{},
	}

	a.log.Debug("assembled item", "url", item.URL, "character_count", item.CharacterCount)
	return item, nil
}

// Merge extracts page and appends the children of its body root to the
// children of item's body root, in document order, keeping a single <main>
// wrapper. The character count and fingerprint are recomputed from the
// merged body. Any failure, extraction of the new page included, is a
// *MergeError.
func (a *Assembler) Merge(item *Item, p *page.Page) (*Item, error) {
	next, err := a.Assemble(p, item.Lang)
	if err != nil {
		return nil, &MergeError{URL: p.URL(), Err: err}
	}

	baseRoot, err := bodyRoot(item.Body)
	if err != nil {
		// the body was produced by Assemble, so a missing root here is an
		// invariant violation, not an expected input condition
		return nil, &MergeError{URL: p.URL(), Err: err}
	}

	nextRoot, err := bodyRoot(next.Body)
	if err != nil {
		return nil, &MergeError{URL: p.URL(), Err: err}
	}

	for child := nextRoot.FirstChild; child != nil; {
		following := child.NextSibling
		xmlquery.RemoveFromTree(child)
		xmlquery.AddChild(baseRoot, child)
		child = following
	}

	item.Body = baseRoot.OutputXML(true)

	text := strippedText(item.Body)
	item.CharacterCount = len([]rune(text))
	item.Fingerprint = fingerprint(text)

	a.log.Debug("merged page into item",
		"url", item.URL,
		"page_url", p.URL(),
		"character_count", item.CharacterCount,
	)
	return item, nil
}

// CharacterCount returns the length of the body text with every run of
// whitespace removed, internal runs included.
func (a *Assembler) CharacterCount(bodyXML string) (int, error) {
	doc, err := xmlquery.Parse(strings.NewReader(bodyXML))
	if err != nil {
		return 0, fmt.Errorf("parse body: %w", err)
	}
	return len([]rune(stripWhitespace(doc.InnerText()))), nil
}

// bodyRoot parses bodyXML and returns its <main> root element.
func bodyRoot(bodyXML string) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader(bodyXML))
	if err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}

	root := doc.SelectElement(rootElement)
	if root == nil {
		return nil, ErrNoRootElement
	}
	return root, nil
}

// strippedText extracts all text nodes of bodyXML and removes every
// whitespace run. A body that fails to parse yields an empty string; the
// callers validate parseability separately.
func strippedText(bodyXML string) string {
	doc, err := xmlquery.Parse(strings.NewReader(bodyXML))
	if err != nil {
		return ""
	}
	return stripWhitespace(doc.InnerText())
}

func stripWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// fingerprint hashes the whitespace-stripped body text, giving downstream
// consumers a content identity that survives reformatting.
func fingerprint(text string) string {
	if text == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
