package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageMeta holds metadata harvested from <meta> tags and JSON-LD.
type pageMeta struct {
	// property maps <meta property="..."> to content.
	property map[string]string
	// name maps <meta name="..."> to content.
	name   map[string]string
	jsonLD jsonLDMeta
}

// jsonLDMeta holds the JSON-LD fields the collector cares about.
type jsonLDMeta struct {
	author    string
	published string
	modified  string
}

// harvestMeta collects meta tag contents and the first JSON-LD block from
// the document head.
func harvestMeta(doc *goquery.Document) pageMeta {
	meta := pageMeta{
		property: make(map[string]string),
		name:     make(map[string]string),
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		if prop, hasProp := s.Attr("property"); hasProp {
			if _, exists := meta.property[prop]; !exists {
				meta.property[prop] = content
			}
		}
		if name, hasName := s.Attr("name"); hasName {
			if _, exists := meta.name[name]; !exists {
				meta.name[name] = content
			}
		}
	})

	meta.jsonLD = parseJSONLD(doc.Find(`script[type="application/ld+json"]`).First().Text())
	return meta
}

// parseJSONLD extracts author name and timestamps from a JSON-LD block.
// When the block is a list, only the first object is considered; malformed
// JSON yields empty metadata rather than an error, since JSON-LD is a
// best-effort source.
func parseJSONLD(raw string) jsonLDMeta {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return jsonLDMeta{}
	}

	var node any
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return jsonLDMeta{}
	}

	if list, ok := node.([]any); ok {
		if len(list) == 0 {
			return jsonLDMeta{}
		}
		node = list[0]
	}

	obj, ok := node.(map[string]any)
	if !ok {
		return jsonLDMeta{}
	}

	return jsonLDMeta{
		author:    jsonLDAuthor(obj["author"]),
		published: jsonLDString(obj["datePublished"]),
		modified:  jsonLDString(obj["dateModified"]),
	}
}

// jsonLDAuthor handles the two common author shapes: a single object with
// a name, or a list of such objects.
func jsonLDAuthor(v any) string {
	switch author := v.(type) {
	case map[string]any:
		return jsonLDString(author["name"])
	case []any:
		if len(author) == 0 {
			return ""
		}
		if first, ok := author[0].(map[string]any); ok {
			return jsonLDString(first["name"])
		}
	}
	return ""
}

func jsonLDString(v any) string {
	s, _ := v.(string)
	return s
}
