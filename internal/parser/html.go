package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lawgest/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings and block-level text elements
// each become one unit.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &doctree.Document{
		Title: trimExt(filename, ".html", ".htm"),
		Unit:  doctree.UnitParagraph,
	}

	// Extract title from <title> tag if present.
	if title := findTitle(root); title != "" {
		out.Title = title
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					out.Units = append(out.Units, t)
				}
				return
			case "li":
				if t := textContent(n); t != "" {
					if isUnorderedItem(n) {
						t = "- " + t
					}
					out.Units = append(out.Units, t)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	return out, nil
}

func isUnorderedItem(li *html.Node) bool {
	return li.Parent != nil && li.Parent.Type == html.ElementNode && li.Parent.Data == "ul"
}

// textContent returns the element's text. <br> becomes a line break and
// runs of spaces within a line are collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
