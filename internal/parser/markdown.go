package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/yuin/goldmark"
)

// DefaultTitle is used when neither a title, an H1 nor a filename is available.
const DefaultTitle = "Untitled Document"

// MarkdownParser reads report markdown line by line.
//
// The first level-1 heading names the document and is not itself a section;
// text under it, before the first section heading, becomes the preamble.
// Lines inside fenced code blocks are always body text.
type MarkdownParser struct {
	Options
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := readSource(r, filename)
	if err != nil {
		return nil, err
	}
	return p.parse(src, "", titleFromFilename(filename)), nil
}

// ParseText parses markdown held in memory. An empty title means "use the
// first H1", falling back to DefaultTitle.
func (p *MarkdownParser) ParseText(text, title string) *doctree.Document {
	return p.parse(text, title, DefaultTitle)
}

func (p *MarkdownParser) parse(src, title, fallback string) *doctree.Document {
	doc := doctree.New("")
	b := newTreeBuilder(doc)
	md := goldmark.New()
	isRefSection := referenceMatcher(p.ReferenceSections)
	log := p.logger()

	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var (
		h1Title     string
		seenTitle   bool
		fence       string
		lastHeading string // name of a heading on the immediately preceding line
		tableCount  int
	)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t\r")

		if fence != "" {
			b.addLine(line)
			if closesFence(line, fence) {
				fence = ""
			}
			lastHeading = ""
			continue
		}
		if f := openingFence(line); f != "" {
			fence = f
			b.addLine(line)
			lastHeading = ""
			continue
		}

		if level, raw, ok := matchHeading(line); ok {
			name := headingName(md, raw)
			if level == 1 && !seenTitle {
				seenTitle = true
				h1Title = name
				lastHeading = name
				continue
			}
			b.openHeading(&doctree.Section{Name: name, RawName: raw, Level: level})
			lastHeading = name
			continue
		}

		if isTableLine(line) {
			end := i + 1
			for end < len(lines) && isTableLine(lines[end]) {
				end++
			}
			tableCount++
			caption := findCaption(b.recentLines(captionLookback))
			if caption == "" {
				caption = lastHeading
			}
			t := buildTable(doctree.TableID(tableCount), caption, lines[i:end])
			doc.AddTable(t)
			b.markBoundary()
			log.Debug("parsed table", "id", t.ID, "caption", t.Caption, "columns", len(t.Headers), "rows", len(t.Rows))
			i = end - 1
			lastHeading = ""
			continue
		}
		lastHeading = ""

		if b.within(isRefSection) {
			if ref, ok := matchReference(line); ok {
				doc.AddReference(ref)
				continue
			}
		}

		b.addLine(line)
	}
	b.finish()

	switch {
	case title != "":
		doc.Title = title
	case h1Title != "":
		doc.Title = h1Title
	default:
		doc.Title = fallback
	}

	log.Debug("parsed document",
		"title", doc.Title,
		"sections", len(doc.Sections),
		"tables", len(doc.Tables),
		"references", len(doc.References),
	)
	if expected := p.ExpectedSectionNames(); len(expected) > 0 {
		if missing := MissingSections(doc, expected); len(missing) > 0 {
			log.Warn("missing expected sections", "title", doc.Title, "missing", missing)
		}
	}
	return doc
}

// openingFence returns the fence marker if line opens a fenced code block.
func openingFence(line string) string {
	t := strings.TrimLeft(line, " ")
	if len(line)-len(t) > 3 {
		return ""
	}
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(t, marker) {
			n := len(t) - len(strings.TrimLeft(t, marker[:1]))
			return strings.Repeat(marker[:1], n)
		}
	}
	return ""
}

// closesFence reports whether line closes a block opened with fence.
func closesFence(line, fence string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, fence) && strings.Trim(t, fence[:1]) == ""
}
