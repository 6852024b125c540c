package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Cleaned is page HTML reduced to its semantic skeleton.
type Cleaned struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

var (
	droppedElements = setOf("script", "style", "noscript", "iframe", "embed", "object", "svg", "template", "link", "meta")

	blockElements = setOf("div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th",
		"form", "fieldset", "blockquote", "pre", "dialog")

	voidElements = setOf("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta",
		"param", "source", "track", "wbr")

	globalAttributes = setOf("id", "class", "role", "aria-label", "aria-describedby", "name", "title")

	tagAttributes = map[string]map[string]bool{
		"a":        setOf("href", "target"),
		"img":      setOf("src", "alt"),
		"input":    setOf("type", "placeholder", "value", "checked", "disabled"),
		"textarea": setOf("placeholder", "disabled"),
		"select":   setOf("multiple", "disabled"),
		"option":   setOf("value", "selected"),
		"button":   setOf("type", "disabled"),
		"form":     setOf("action", "method"),
		"label":    setOf("for"),
	}
)

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// CleanHTML strips scripts, styles, comments and hidden elements from raw,
// keeping structure and the attributes useful for writing selectors. Output
// text is capped at maxLength characters (0 means unlimited).
func CleanHTML(raw string, maxLength int) (*Cleaned, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{limit: maxLength}
	root := doc
	if body := findElement(doc, "body"); body != nil {
		root = body
	}
	c.children(root, 0)

	return &Cleaned{
		HTML:        strings.TrimSpace(c.out.String()),
		Title:       elementText(findElement(doc, "title")),
		Description: metaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

type cleaner struct {
	out       strings.Builder
	written   int
	limit     int
	truncated bool
}

func (c *cleaner) full() bool {
	return c.limit > 0 && c.written >= c.limit
}

func (c *cleaner) node(n *html.Node, depth int) {
	if c.full() {
		c.truncated = true
		return
	}

	switch n.Type {
	case html.TextNode:
		c.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedElements[tag] || hidden(n) {
			return
		}
		c.element(n, tag, depth)
	case html.DocumentNode:
		c.children(n, depth)
	}
}

func (c *cleaner) children(n *html.Node, depth int) {
	for ch := n.FirstChild; ch != nil && !c.truncated; ch = ch.NextSibling {
		c.node(ch, depth)
	}
}

func (c *cleaner) text(data string) {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return
	}

	if c.limit > 0 && c.written+len(text) > c.limit {
		text = truncateRunes(text, c.limit-c.written) + "..."
		c.truncated = true
	}
	c.out.WriteString(html.EscapeString(text))
	c.written += len(text)
}

func (c *cleaner) element(n *html.Node, tag string, depth int) {
	block := blockElements[tag]
	if block && depth > 0 {
		c.newline(depth)
	}

	c.out.WriteString("<" + tag)
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if keepAttribute(tag, key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, key, html.EscapeString(a.Val))
		}
	}
	c.out.WriteString(">")

	if voidElements[tag] {
		return
	}

	c.children(n, depth+1)

	if block {
		c.newline(depth)
	}
	c.out.WriteString("</" + tag + ">")
}

func (c *cleaner) newline(depth int) {
	c.out.WriteString("\n")
	c.out.WriteString(strings.Repeat("  ", depth))
}

func keepAttribute(tag, key string) bool {
	if globalAttributes[key] || strings.HasPrefix(key, "data-") {
		return true
	}
	return tagAttributes[tag][key]
}

// hidden reports elements removed from rendering by markup alone.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "type":
			if strings.EqualFold(n.Data, "input") && strings.EqualFold(a.Val, "hidden") {
				return true
			}
		}
	}
	return false
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if found := findElement(ch, tag); found != nil {
			return found
		}
	}
	return nil
}

func elementText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode {
			b.WriteString(ch.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func metaDescription(doc *html.Node) string {
	var desc string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && attr(n, "name") == "description" {
			desc = strings.TrimSpace(attr(n, "content"))
			return desc != ""
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if walk(ch) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return desc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
