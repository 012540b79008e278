package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)

	// Outline numbering such as "1. ", "2.1 " or "3.2.1. ". A bare number
	// without a dot ("2023 Results") is kept.
	numberingPattern = regexp.MustCompile(`^\d+\.(?:\d+\.?)*\s+`)
)

// matchHeading reports whether line is an ATX heading and returns its depth
// and raw text.
func matchHeading(line string) (int, string, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

// headingName returns the display name for raw heading text: inline markup
// reduced to plain text and outline numbering removed.
func headingName(md goldmark.Markdown, raw string) string {
	name := plainHeadingText(md, raw)
	if stripped := strings.TrimSpace(numberingPattern.ReplaceAllString(name, "")); stripped != "" {
		name = stripped
	}
	return name
}

// plainHeadingText parses raw as a level-1 heading and collects its text
// leaves, dropping emphasis, link and code-span markers.
func plainHeadingText(md goldmark.Markdown, raw string) string {
	src := []byte("# " + raw)
	doc := md.Parser().Parse(text.NewReader(src))
	h, ok := doc.FirstChild().(*ast.Heading)
	if !ok {
		return raw
	}
	var buf bytes.Buffer
	collectInline(h, src, &buf)
	if t := strings.TrimSpace(buf.String()); t != "" {
		return t
	}
	return raw
}

func collectInline(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.URL(src))
		case *ast.RawHTML:
			// Inline HTML tags carry no heading text.
		default:
			collectInline(c, src, buf)
		}
	}
}
