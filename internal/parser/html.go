package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML exports of a report. Headings nest the same way as
// in markdown; <table> elements become tables.
type HTMLParser struct {
	Options
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := readSource(r, filename)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := doctree.New(titleFromFilename(filename))
	titleTag := findTitle(root)
	b := newTreeBuilder(doc)
	isRefSection := referenceMatcher(p.ReferenceSections)

	var h1Title string
	seenTitle := false
	lastHeading := ""

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				name := strings.TrimSpace(numberingPattern.ReplaceAllString(textContent(n), ""))
				if level == 1 && !seenTitle {
					seenTitle = true
					h1Title = name
				} else if name != "" {
					b.openHeading(&doctree.Section{Name: name, RawName: textContent(n), Level: level})
				}
				lastHeading = name
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "table":
				caption := tableCaption(n)
				if caption == "" {
					caption = findCaption(b.recentLines(captionLookback))
				}
				if caption == "" {
					caption = lastHeading
				}
				headers, rows := tableCells(n)
				doc.AddTable(doctree.NewTable(doctree.TableID(len(doc.Tables)+1), caption, headers, rows))
				b.markBoundary()
				lastHeading = ""
				return
			case "p", "li", "blockquote", "pre":
				t := textContent(n)
				if t == "" {
					return
				}
				lastHeading = ""
				if b.within(isRefSection) {
					if ref, ok := matchReference(t); ok {
						doc.AddReference(ref)
						return
					}
				}
				b.addParagraph(t)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	b.finish()

	switch {
	case titleTag != "":
		doc.Title = titleTag
	case h1Title != "":
		doc.Title = h1Title
	}
	return doc, nil
}

// tableCells reads header and body cells from a <table>. The first row is the
// header row whether it uses <th> or <td>.
func tableCells(table *html.Node) ([]string, [][]string) {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if n != table {
					return // nested tables are not flattened into this one
				}
			case "tr":
				var cells []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						cells = append(cells, textContent(c))
					}
				}
				rows = append(rows, cells)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], rows[1:]
}

func tableCaption(table *html.Node) string {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "caption" {
			return textContent(c)
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent joins the text nodes under n, collapsing whitespace runs.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
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
