package doctree

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("document.schema.json", bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("document.schema.json")
	})
	return compiledSchema, schemaErr
}

// Wire types. Slices are always emitted as arrays, never null.
type documentJSON struct {
	Title      string            `json:"title"`
	Preamble   string            `json:"preamble,omitempty"`
	Sections   []sectionJSON     `json:"sections"`
	Tables     []tableJSON       `json:"tables"`
	References []referenceJSON   `json:"references"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type sectionJSON struct {
	Name        string        `json:"name"`
	RawName     string        `json:"raw_name,omitempty"`
	Level       int           `json:"level"`
	Content     string        `json:"content"`
	Subsections []sectionJSON `json:"subsections"`
}

type tableJSON struct {
	ID      string     `json:"id"`
	Caption *string    `json:"caption"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type referenceJSON struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MarshalJSON encodes the document in its on-disk shape.
func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		Title:      d.Title,
		Preamble:   d.Preamble,
		Sections:   encodeSections(d.Sections),
		Tables:     make([]tableJSON, 0, len(d.Tables)),
		References: make([]referenceJSON, 0, len(d.References)),
		Metadata:   d.Metadata,
	}
	for _, t := range d.Tables {
		tj := tableJSON{
			ID:      t.ID,
			Headers: nonNil(t.Headers),
			Rows:    make([][]string, 0, len(t.Rows)),
		}
		if t.Caption != "" {
			caption := t.Caption
			tj.Caption = &caption
		}
		for _, row := range t.Rows {
			tj.Rows = append(tj.Rows, nonNil(row))
		}
		out.Tables = append(out.Tables, tj)
	}
	for _, r := range d.References {
		out.References = append(out.References, referenceJSON(r))
	}
	return json.Marshal(out)
}

func encodeSections(sections []*Section) []sectionJSON {
	out := make([]sectionJSON, 0, len(sections))
	for _, s := range sections {
		out = append(out, sectionJSON{
			Name:        s.Name,
			RawName:     s.RawName,
			Level:       s.Level,
			Content:     s.Content,
			Subsections: encodeSections(s.Subsections),
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// UnmarshalJSON decodes the on-disk shape without structural checks.
// Use FromJSON to reject incompatible input.
func (d *Document) UnmarshalJSON(data []byte) error {
	var in documentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = Document{
		Title:    in.Title,
		Preamble: in.Preamble,
		Sections: decodeSections(in.Sections),
	}
	if len(in.Metadata) > 0 {
		d.Metadata = in.Metadata
	}
	for _, tj := range in.Tables {
		t := Table{ID: tj.ID}
		if len(tj.Headers) > 0 {
			t.Headers = tj.Headers
		}
		if tj.Caption != nil {
			t.Caption = *tj.Caption
		}
		if len(tj.Rows) > 0 {
			t.Rows = tj.Rows
		}
		d.Tables = append(d.Tables, t)
	}
	for _, rj := range in.References {
		d.References = append(d.References, Reference(rj))
	}
	return nil
}

func decodeSections(in []sectionJSON) []*Section {
	if len(in) == 0 {
		return nil
	}
	out := make([]*Section, 0, len(in))
	for _, sj := range in {
		out = append(out, &Section{
			Name:        sj.Name,
			RawName:     sj.RawName,
			Level:       sj.Level,
			Content:     sj.Content,
			Subsections: decodeSections(sj.Subsections),
		})
	}
	return out
}

// ToJSON returns the indented JSON form of the document.
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromJSON decodes a document, rejecting input that does not match the
// document schema or breaks the model invariants.
func FromJSON(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, NewError(KindDecode, "", errors.New("input is not valid UTF-8"))
	}
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewError(KindMalformedDocument, "", fmt.Errorf("decode document: %w", err))
	}
	if issues := checkInvariants(&doc); len(issues) > 0 {
		return nil, &ParserError{Kind: KindMalformedDocument, Issues: issues}
	}
	return &doc, nil
}

// Validate reports, as a MalformedDocument error, anything that would stop
// the document from loading back after SaveToFile.
func (d *Document) Validate() error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return d.validateEncoded(data)
}

func (d *Document) validateEncoded(data []byte) error {
	if err := checkSchema(data); err != nil {
		return err
	}
	if issues := checkInvariants(d); len(issues) > 0 {
		return &ParserError{Kind: KindMalformedDocument, Issues: issues}
	}
	return nil
}

// checkSchema validates encoded JSON against the document schema.
func checkSchema(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return NewError(KindMalformedDocument, "", fmt.Errorf("parse json: %w", err))
	}

	schema, err := documentSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(raw); err != nil {
		pe := NewError(KindMalformedDocument, "", err)
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			pe.Issues = collectIssues(verr)
		}
		return pe
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// checkInvariants covers what the schema cannot express.
func checkInvariants(d *Document) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(sections []*Section, parentLevel int, loc string)
	walk = func(sections []*Section, parentLevel int, loc string) {
		for i, s := range sections {
			here := fmt.Sprintf("%s/%d", loc, i)
			if s.Level <= parentLevel {
				issues = append(issues, ValidationIssue{
					Location: here + "/level",
					Message:  fmt.Sprintf("level %d is not deeper than parent level %d", s.Level, parentLevel),
				})
			}
			walk(s.Subsections, s.Level, here+"/subsections")
		}
	}
	walk(d.Sections, 0, "/sections")

	for i, t := range d.Tables {
		for j, row := range t.Rows {
			if len(row) != len(t.Headers) {
				issues = append(issues, ValidationIssue{
					Location: fmt.Sprintf("/tables/%d/rows/%d", i, j),
					Message:  fmt.Sprintf("row has %d cells, headers have %d", len(row), len(t.Headers)),
				})
			}
		}
	}
	return issues
}

// SaveToFile writes the document as indented UTF-8 JSON. A document that
// LoadFromFile would reject is not written.
func (d *Document) SaveToFile(path string) error {
	data, err := d.ToJSON()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := d.validateEncoded(data); err != nil {
		var pe *ParserError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewError(KindIO, path, err)
	}
	return nil
}

// LoadFromFile reads a document previously written by SaveToFile.
func LoadFromFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(KindFileNotFound, path, err)
		}
		return nil, NewError(KindIO, path, err)
	}
	doc, err := FromJSON(data)
	if err != nil {
		var pe *ParserError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}
