package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "table": true, "ul": true, "ol": true,
}

// VisibleText extracts the visible text of an HTML results page, keeping line
// structure so line-oriented report markers still match. The contents of a
// <pre> element (or an element with class "report-text") are returned alone
// when present.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	if pre := findReportBlock(doc); pre != nil {
		var buf strings.Builder
		collectText(pre, &buf, true)
		return buf.String(), nil
	}

	var buf strings.Builder
	collectText(doc, &buf, false)
	return collapseBlankLines(buf.String()), nil
}

// collectText walks n, skipping scripts and styles. Whitespace inside
// preformatted content is kept as is.
func collectText(n *html.Node, buf *strings.Builder, preformatted bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "template":
			return
		}
	}

	if n.Type == html.TextNode {
		if preformatted {
			buf.WriteString(n.Data)
		} else if text := strings.TrimSpace(n.Data); text != "" {
			buf.WriteString(text)
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf, preformatted || (c.Type == html.ElementNode && c.Data == "pre"))
	}

	if n.Type == html.ElementNode && blockElements[n.Data] && !preformatted {
		buf.WriteString("\n")
	}
}

// findReportBlock finds the first <pre> or .report-text element
func findReportBlock(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && (n.Data == "pre" || hasClass(n, "report-text")) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findReportBlock(c); found != nil {
			return found
		}
	}
	return nil
}

// hasClass checks if a node has a specific CSS class
func hasClass(n *html.Node, className string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
