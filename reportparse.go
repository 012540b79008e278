package reportparse

import (
	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/dgallion1/reportparse/internal/parser"
)

type (
	Document        = doctree.Document
	Section         = doctree.Section
	Table           = doctree.Table
	Reference       = doctree.Reference
	ParserError     = doctree.ParserError
	ErrorKind       = doctree.ErrorKind
	ValidationIssue = doctree.ValidationIssue
)

const (
	KindFileNotFound      = doctree.KindFileNotFound
	KindDecode            = doctree.KindDecode
	KindMalformedDocument = doctree.KindMalformedDocument
	KindIO                = doctree.KindIO
)

var (
	ErrParser            = doctree.ErrParser
	ErrFileNotFound      = doctree.ErrFileNotFound
	ErrDecode            = doctree.ErrDecode
	ErrMalformedDocument = doctree.ErrMalformedDocument
	ErrIO                = doctree.ErrIO
)

// New returns an empty document with the given title.
func New(title string) *Document {
	return doctree.New(title)
}

// NewSection returns an empty section. Levels run from 1 to 6 and a
// subsection must be deeper than its parent.
func NewSection(name string, level int) *Section {
	return doctree.NewSection(name, level)
}

// NewTable builds a table whose rows are padded or truncated to the header
// width.
func NewTable(id, caption string, headers []string, rows [][]string) Table {
	return doctree.NewTable(id, caption, headers, rows)
}

// ParseDocument parses the report at path. Markdown is the primary format;
// .txt, .csv, .html, .docx and .pdf files go through their own readers. A
// non-empty title overrides the one found in the file.
func ParseDocument(path, title string) (*Document, error) {
	return parser.ParseFile(path, title, parser.Options{})
}

// Parse parses markdown held in memory. With an empty title the first
// level-1 heading is used, or "Untitled Document" when there is none.
func Parse(text, title string) *Document {
	p := &parser.MarkdownParser{}
	return p.ParseText(text, title)
}

// LoadFromFile reads a document saved with Document.SaveToFile.
func LoadFromFile(path string) (*Document, error) {
	return doctree.LoadFromFile(path)
}

// FromJSON decodes and validates a serialized document.
func FromJSON(data []byte) (*Document, error) {
	return doctree.FromJSON(data)
}
