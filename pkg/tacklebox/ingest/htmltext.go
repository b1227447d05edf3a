package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractTableText converts a pasted HTML fragment into pipe-delimited plain
// text, one line per table row, so that copy/paste from a browser table
// round-trips through the pipeline. Rows outside a table contribute their
// text as single-field lines. If the input doesn't parse as HTML it is
// returned unchanged.
func ExtractTableText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, collapseText(c))
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(lines) == 0 {
		// No table rows; fall back to the fragment's text content.
		return collapseText(doc)
	}
	return strings.Join(lines, "\n")
}

// collapseText gathers the text below a node with whitespace collapsed.
func collapseText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
