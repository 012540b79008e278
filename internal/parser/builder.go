package parser

import (
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// openSection is a section whose body is still being collected.
type openSection struct {
	section *doctree.Section
	lines   []string
	mark    int // lines before mark are hidden from recentLines
}

// treeBuilder nests sections by heading level using an explicit stack.
// Body lines go to the innermost open section, or to the preamble when no
// section is open yet.
type treeBuilder struct {
	doc      *doctree.Document
	stack    []*openSection
	preamble []string
	preMark  int
}

func newTreeBuilder(doc *doctree.Document) *treeBuilder {
	return &treeBuilder{doc: doc}
}

// openHeading closes every open section at the same or a deeper level, then
// attaches s to the nearest shallower one (or to the document).
func (b *treeBuilder) openHeading(s *doctree.Section) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].section.Level >= s.Level {
		b.pop()
	}
	if len(b.stack) == 0 {
		b.doc.AddSection(s)
	} else {
		b.stack[len(b.stack)-1].section.AddSubsection(s)
	}
	b.stack = append(b.stack, &openSection{section: s})
}

func (b *treeBuilder) pop() {
	top := b.stack[len(b.stack)-1]
	top.section.Content = joinContent(top.lines)
	b.stack = b.stack[:len(b.stack)-1]
}

// addLine appends one body line. Runs of blank lines collapse to one.
func (b *treeBuilder) addLine(line string) {
	buf := &b.preamble
	if len(b.stack) > 0 {
		buf = &b.stack[len(b.stack)-1].lines
	}
	if strings.TrimSpace(line) == "" {
		if len(*buf) == 0 || (*buf)[len(*buf)-1] == "" {
			return
		}
		line = ""
	}
	*buf = append(*buf, line)
}

// addParagraph appends a block of text separated from what came before by a
// blank line.
func (b *treeBuilder) addParagraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.addLine("")
	for _, line := range strings.Split(text, "\n") {
		b.addLine(strings.TrimRight(line, " \t"))
	}
}

// within reports whether any open section satisfies match.
func (b *treeBuilder) within(match func(*doctree.Section) bool) bool {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if match(b.stack[i].section) {
			return true
		}
	}
	return false
}

// recentLines returns up to n of the latest body lines of the current block
// added since the last markBoundary.
func (b *treeBuilder) recentLines(n int) []string {
	buf := b.preamble[b.preMark:]
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		buf = top.lines[top.mark:]
	}
	if len(buf) > n {
		buf = buf[len(buf)-n:]
	}
	return buf
}

// markBoundary hides the lines collected so far from recentLines.
func (b *treeBuilder) markBoundary() {
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		top.mark = len(top.lines)
		return
	}
	b.preMark = len(b.preamble)
}

// finish closes all open sections and stores the preamble.
func (b *treeBuilder) finish() *doctree.Document {
	for len(b.stack) > 0 {
		b.pop()
	}
	b.doc.Preamble = joinContent(b.preamble)
	return b.doc
}

func joinContent(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
