package extract

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// fragmentToXML re-serializes an HTML fragment as a well-formed XML
// document with a single <main> root element. HTML serialization is not
// valid XML (void elements, unescaped text), so the fragment is parsed and
// re-rendered node by node: void elements self-close, text and attribute
// values are XML-escaped, comments and doctypes are dropped.
func fragmentToXML(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return "", fmt.Errorf("fragment has no body")
	}

	var sb strings.Builder
	sb.WriteString("<main>")
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		writeXML(&sb, child)
	}
	sb.WriteString("</main>")
	return sb.String(), nil
}

// findElement depth-first searches for the first element with the given tag.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// writeXML renders one HTML node and its children as XML.
func writeXML(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		escapeXML(sb, n.Data)
	case html.ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Data)
		for _, attr := range n.Attr {
			sb.WriteByte(' ')
			sb.WriteString(attr.Key)
			sb.WriteString(`="`)
			escapeXML(sb, attr.Val)
			sb.WriteByte('"')
		}
		if n.FirstChild == nil {
			sb.WriteString("/>")
			return
		}
		sb.WriteByte('>')
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeXML(sb, child)
		}
		sb.WriteString("</")
		sb.WriteString(n.Data)
		sb.WriteByte('>')
	default:
		// comments, doctypes, and raw nodes are dropped
	}
}

// escapeXML writes s to sb with XML special characters escaped.
func escapeXML(sb *strings.Builder, s string) {
	// EscapeText never fails on a strings.Builder
	_ = xml.EscapeText(sb, []byte(s))
}
