// Package extract pulls outbound links and the page title out of raw HTML.
// It is a pure collaborator: no shared state, no I/O.
package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Links returns the href of every anchor element in document order.
// Relative hrefs are resolved against baseURL. Non-navigational schemes
// (javascript, mailto, tel) and same-page fragments are skipped. Malformed
// markup degrades to whatever anchors were parsed, never an error.
func Links(content, baseURL string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var links []string
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		for _, attr := range n.Attr {
			if attr.Key != "href" {
				continue
			}
			if link, ok := resolveHref(base, attr.Val); ok {
				links = append(links, link)
			}
			break
		}
	}
	return links
}

// Title returns the text of the first <title> element, or "" if absent.
func Title(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	for n := range doc.Descendants() {
		if n.Type == html.ElementNode && n.Data == "title" {
			return strings.TrimSpace(textOf(n))
		}
	}
	return ""
}

func resolveHref(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(ref.Scheme) {
	case "", "http", "https":
	default:
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	return ref.String(), true
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
