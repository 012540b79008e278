package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled "Heading N" open
// sections; Word tables become tables with their first row as headers.
type DOCXParser struct {
	Options
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "reportparse-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	wd, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, doctree.NewError(doctree.KindDecode, filename, fmt.Errorf("parse docx: %w", err))
	}

	doc := doctree.New(titleFromFilename(filename))
	b := newTreeBuilder(doc)
	isRefSection := referenceMatcher(p.ReferenceSections)

	var h1Title string
	seenTitle := false
	lastHeading := ""

	for _, item := range wd.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			level := docxHeadingLevel(it)
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			if level > 0 {
				name := text
				if stripped := strings.TrimSpace(numberingPattern.ReplaceAllString(text, "")); stripped != "" {
					name = stripped
				}
				if level == 1 && !seenTitle {
					seenTitle = true
					h1Title = name
				} else {
					b.openHeading(&doctree.Section{Name: name, RawName: text, Level: level})
				}
				lastHeading = name
				continue
			}
			lastHeading = ""
			if b.within(isRefSection) {
				if ref, ok := matchReference(text); ok {
					doc.AddReference(ref)
					continue
				}
			}
			b.addParagraph(text)

		case *docx.Table:
			caption := findCaption(b.recentLines(captionLookback))
			if caption == "" {
				caption = lastHeading
			}
			headers, rows := docxTableCells(it)
			doc.AddTable(doctree.NewTable(doctree.TableID(len(doc.Tables)+1), caption, headers, rows))
			b.markBoundary()
			lastHeading = ""
		}
	}
	b.finish()

	if h1Title != "" {
		doc.Title = h1Title
	}
	return doc, nil
}

func docxTableCells(t *docx.Table) ([]string, [][]string) {
	var rows [][]string
	for _, tr := range t.TableRows {
		var cells []string
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if s := docxParagraphText(para); s != "" {
					parts = append(parts, s)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], rows[1:]
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
