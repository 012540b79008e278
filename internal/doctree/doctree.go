package doctree

import "fmt"

// Document is the root of a parsed report.
type Document struct {
	Title      string            // Document title (first H1, explicit override, or filename)
	Preamble   string            // Text that appeared before the first section heading
	Sections   []*Section        // Top-level sections
	Tables     []Table           // Every table in the document, in source order
	References []Reference       // Every citation, in source order
	Metadata   map[string]string // Free-form source details (path, content hash)
}

// Section is a heading-delimited block that owns its subsections.
type Section struct {
	Name        string     // Heading text without outline numbering
	RawName     string     // Heading text as written
	Level       int        // Heading depth 1-6, "##" = 2; deeper than the parent's
	Content     string     // Body text up to the next heading
	Subsections []*Section // Deeper headings nested under this one
}

// Table is a pipe-delimited table block.
type Table struct {
	ID      string
	Caption string
	Headers []string
	Rows    [][]string
}

// Reference is a bracket-numbered citation.
type Reference struct {
	ID   string
	Text string
}

// New returns an empty document with the given title.
func New(title string) *Document {
	return &Document{Title: title}
}

// AddSection appends a top-level section.
func (d *Document) AddSection(s *Section) {
	d.Sections = append(d.Sections, s)
}

// AddTable appends a table, fitting every row to the header width first.
func (d *Document) AddTable(t Table) {
	d.Tables = append(d.Tables, NewTable(t.ID, t.Caption, t.Headers, t.Rows))
}

// AddReference appends a citation. Duplicate ids are kept.
func (d *Document) AddReference(r Reference) {
	d.References = append(d.References, r)
}

// SetMeta records a metadata value, allocating the map on first use.
func (d *Document) SetMeta(key, value string) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]string)
	}
	d.Metadata[key] = value
}

// NewSection returns an empty section at the given heading level.
func NewSection(name string, level int) *Section {
	return &Section{Name: name, RawName: name, Level: level}
}

// AddSubsection appends a child section.
func (s *Section) AddSubsection(child *Section) {
	s.Subsections = append(s.Subsections, child)
}

// NewTable builds a table whose rows all have exactly len(headers) cells.
// Short rows are padded with empty strings; extra trailing cells are dropped.
func NewTable(id, caption string, headers []string, rows [][]string) Table {
	t := Table{ID: id, Caption: caption, Headers: headers}
	width := len(headers)
	for _, row := range rows {
		fixed := make([]string, width)
		copy(fixed, row)
		t.Rows = append(t.Rows, fixed)
	}
	return t
}

// TableID returns the synthetic id for the n-th table (1-based).
func TableID(n int) string {
	return fmt.Sprintf("T%d", n)
}

// Walk visits every section depth-first in document order.
// Returning false from fn stops the descent into that section's subsections.
func (d *Document) Walk(fn func(s *Section, depth int) bool) {
	var walk func(sections []*Section, depth int)
	walk = func(sections []*Section, depth int) {
		for _, s := range sections {
			if fn(s, depth) {
				walk(s.Subsections, depth+1)
			}
		}
	}
	walk(d.Sections, 0)
}

// FindSection returns the first section, at any depth, with the given name.
func (d *Document) FindSection(name string) *Section {
	var found *Section
	d.Walk(func(s *Section, _ int) bool {
		if found != nil {
			return false
		}
		if s.Name == name {
			found = s
			return false
		}
		return true
	})
	return found
}
