package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// CSVParser handles CSV files as a single table whose first record is the
// header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := readSource(r, filename)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(src))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := doctree.New(titleFromFilename(filename))
	if len(records) == 0 {
		return doc, nil
	}

	doc.AddTable(doctree.NewTable(doctree.TableID(1), doc.Title, records[0], records[1:]))
	return doc, nil
}
