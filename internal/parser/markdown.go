package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/lawgest/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each top-level block
// (heading, paragraph, list, code block) is one unit.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	out := &doctree.Document{
		Title: trimExt(filename, ".md", ".markdown"),
		Unit:  doctree.UnitParagraph,
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var t string
		if list, ok := n.(*ast.List); ok {
			t = listText(list, src)
		} else {
			t = extractText(n, src)
		}
		if t != "" {
			out.Units = append(out.Units, t)
		}
	}

	return out, nil
}

// listText renders list items one per line with a "- " marker so bullet
// lines survive as bullets.
func listText(list *ast.List, src []byte) string {
	var lines []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		t := extractText(item, src)
		if t == "" {
			continue
		}
		if list.IsOrdered() {
			lines = append(lines, t)
		} else {
			lines = append(lines, "- "+t)
		}
	}
	return strings.Join(lines, "\n")
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// such as code blocks carry their text as raw lines; everything else is
// collected from its children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if !n.HasChildren() {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		s := extractText(c, src)
		if s != "" && c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(s)
	}
	return strings.TrimSpace(buf.String())
}
