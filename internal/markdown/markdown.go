// Package markdown turns the markdown the analysis service answers with into
// text fit for a plain document, and renders it for the terminal.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	termmd "github.com/MichaelMure/go-term-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText strips markdown syntax from source. Paragraphs and headings are
// separated by blank lines. Bullet items become "• ", ordered items keep
// their numbers, links keep their target in parentheses, and code and raw
// HTML are kept verbatim.
func PlainText(source string) string {
	src := []byte(source)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []string
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if block := blockText(node, src); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func blockText(node ast.Node, src []byte) string {
	switch n := node.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var content bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(src))
		}
		return strings.TrimRight(content.String(), "\n")

	case *ast.HTMLBlock:
		var content bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(src))
		}
		if n.HasClosure() {
			content.Write(n.ClosureLine.Value(src))
		}
		return strings.TrimRight(content.String(), "\n")

	case *ast.List:
		var items []string
		number := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			var parts []string
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				if t := blockText(child, src); t != "" {
					parts = append(parts, t)
				}
			}
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d%c ", number, n.Marker)
				number++
			}
			items = append(items, marker+strings.Join(parts, "\n"+strings.Repeat(" ", utf8.RuneCountInString(marker))))
		}
		return strings.Join(items, "\n")

	case *ast.Blockquote:
		var parts []string
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if t := blockText(child, src); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n\n")

	case *ast.ThematicBreak:
		return ""

	default:
		return inlineText(node, src)
	}
}

// inlineText concatenates the text segments under node, keeping soft and
// hard line breaks.
func inlineText(node ast.Node, src []byte) string {
	var b strings.Builder
	var linkStart []int
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			var dest []byte
			switch l := n.(type) {
			case *ast.Link:
				dest = l.Destination
			case *ast.Image:
				dest = l.Destination
			default:
				return ast.WalkContinue, nil
			}
			start := linkStart[len(linkStart)-1]
			linkStart = linkStart[:len(linkStart)-1]
			if len(dest) > 0 && b.String()[start:] != string(dest) {
				b.WriteString(" (" + string(dest) + ")")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.CodeSpan:
			for c := t.FirstChild(); c != nil; c = c.NextSibling() {
				if seg, ok := c.(*ast.Text); ok {
					b.Write(seg.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			b.Write(t.URL(src))
			return ast.WalkSkipChildren, nil
		case *ast.Link, *ast.Image:
			linkStart = append(linkStart, b.Len())
		case *ast.RawHTML:
			for i := 0; i < t.Segments.Len(); i++ {
				seg := t.Segments.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// Render formats source for a terminal of the given width.
func Render(source string, width int) string {
	if width < 20 {
		width = 20
	}
	return strings.TrimRight(string(termmd.Render(source, width, 0)), "\n")
}
