package source

import (
	"strings"

	"golang.org/x/net/html"
)

// Depth-first walk over an HTML tree, applying fn to every node. fn
// returning false prunes the node's subtree.
func walkHTML(node *html.Node, fn func(*html.Node) bool) {
	if !fn(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walkHTML(child, fn)
	}
}

// Get the value of one attribute, "" when absent
func htmlAttr(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

// Whether the node carries the attribute at all (needed for boolean
// attributes like itemscope)
func hasHTMLAttr(node *html.Node, name string) bool {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return true
		}
	}
	return false
}

// Concatenate all text content below the node, whitespace-collapsed
func htmlText(node *html.Node) string {
	var sb strings.Builder
	walkHTML(node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
