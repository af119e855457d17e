package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// hintAttrs are checked in order on every element.
var hintAttrs = []string{"data-field", "itemprop", "name", "id"}

// parseHTML returns the visible text (one block per line) and the hints
// declared through data-field, itemprop, name, id or class.
func parseHTML(data []byte) (string, map[string]string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return "", nil, fmt.Errorf("html charset: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return "", nil, fmt.Errorf("html: %w", err)
	}

	hints := make(map[string]string)
	collectHTMLHints(doc, hints)

	var sb strings.Builder
	writeVisibleText(doc, &sb)
	return tidyLines(sb.String()), hints, nil
}

func collectHTMLHints(n *html.Node, hints map[string]string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return
		}
		if hint := htmlHint(n); hint != "" {
			value, ok := attr(n, "content")
			if !ok {
				value, ok = attr(n, "data-value")
			}
			if !ok {
				value = collectHTMLText(n)
			}
			setHint(hints, hint, value)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLHints(c, hints)
	}
}

func htmlHint(n *html.Node) string {
	for _, key := range hintAttrs {
		if v, ok := attr(n, key); ok {
			if h, ok := tagHints[normalizeKey(v)]; ok {
				return h
			}
		}
	}
	if v, ok := attr(n, "class"); ok {
		for _, cls := range strings.Fields(v) {
			if h, ok := tagHints[normalizeKey(cls)]; ok {
				return h
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// collectHTMLText extracts all visible text from a node subtree on one line.
func collectHTMLText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Tr, atom.Li, atom.Table, atom.Section,
		atom.Article, atom.Header, atom.Footer, atom.H1, atom.H2, atom.H3,
		atom.H4, atom.H5, atom.H6, atom.Dt, atom.Dd, atom.Ul, atom.Ol, atom.Pre,
		atom.Blockquote, atom.Address, atom.Body:
		return true
	}
	return false
}

func writeVisibleText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Template:
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}

	block := n.Type == html.ElementNode && isBlockElement(n.DataAtom)
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(c, sb)
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			sb.WriteByte(' ')
		}
	}
	if block {
		sb.WriteByte('\n')
	}
}
