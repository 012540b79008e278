package doctree

import "slices"

// Equal reports whether two documents have the same content field for field.
// Nil and empty slices or maps compare equal.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Title != o.Title || d.Preamble != o.Preamble {
		return false
	}
	if !sectionsEqual(d.Sections, o.Sections) {
		return false
	}
	if !slices.EqualFunc(d.Tables, o.Tables, Table.Equal) {
		return false
	}
	if !slices.Equal(d.References, o.References) {
		return false
	}
	if len(d.Metadata) != len(o.Metadata) {
		return false
	}
	for k, v := range d.Metadata {
		if ov, ok := o.Metadata[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Equal compares two sections and their subsection trees.
func (s *Section) Equal(o *Section) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Name == o.Name &&
		s.RawName == o.RawName &&
		s.Level == o.Level &&
		s.Content == o.Content &&
		sectionsEqual(s.Subsections, o.Subsections)
}

func sectionsEqual(a, b []*Section) bool {
	return slices.EqualFunc(a, b, (*Section).Equal)
}

// Equal compares headers and rows cell by cell.
func (t Table) Equal(o Table) bool {
	if t.ID != o.ID || t.Caption != o.Caption {
		return false
	}
	if !slices.Equal(t.Headers, o.Headers) {
		return false
	}
	return slices.EqualFunc(t.Rows, o.Rows, slices.Equal[[]string])
}
