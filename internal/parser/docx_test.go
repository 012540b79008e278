package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Heading1").AddText("Report")
	w.AddParagraph().AddText("Prepared for the board.")
	w.AddParagraph().Style("Heading2").AddText("1. Summary")
	w.AddParagraph().AddText("Costs fell.")
	w.AddParagraph().Style("Heading3").AddText("1.1 Detail")
	w.AddParagraph().AddText("Table 1: Costs")

	tbl := w.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Item")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Cost")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("a")

	w.AddParagraph().Style("Heading2").AddText("References")
	w.AddParagraph().AddText("[1] Smith 2020")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser(t *testing.T) {
	doc, err := ParseBytes(buildDOCX(t), "board_report.docx", "", Options{ExpectedSections: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Report" {
		t.Errorf("expected title %q, got %q", "Report", doc.Title)
	}
	if doc.Preamble != "Prepared for the board." {
		t.Errorf("expected preamble, got %q", doc.Preamble)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(doc.Sections))
	}
	summary := doc.Sections[0]
	if summary.Name != "Summary" || summary.RawName != "1. Summary" || summary.Level != 2 {
		t.Errorf("unexpected summary section: %+v", summary)
	}
	if summary.Content != "Costs fell." {
		t.Errorf("expected summary content %q, got %q", "Costs fell.", summary.Content)
	}
	if len(summary.Subsections) != 1 {
		t.Fatalf("expected Detail under Summary, got %d subsections", len(summary.Subsections))
	}
	if d := summary.Subsections[0]; d.Name != "Detail" || d.RawName != "1.1 Detail" || d.Level != 3 {
		t.Errorf("unexpected subsection: %+v", d)
	}

	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(doc.Tables))
	}
	want := doctree.Table{
		ID:      "T1",
		Caption: "Table 1: Costs",
		Headers: []string{"Item", "Cost"},
		Rows:    [][]string{{"a", ""}},
	}
	if !doc.Tables[0].Equal(want) {
		t.Errorf("expected %+v, got %+v", want, doc.Tables[0])
	}

	if len(doc.References) != 1 || doc.References[0] != (doctree.Reference{ID: "1", Text: "Smith 2020"}) {
		t.Errorf("unexpected references: %+v", doc.References)
	}
	if doc.Sections[1].Content != "" {
		t.Errorf("reference text duplicated into content: %q", doc.Sections[1].Content)
	}
	if doc.Metadata["source"] != "board_report.docx" {
		t.Errorf("expected source metadata, got %v", doc.Metadata)
	}
}

func TestDOCXParser_NotADocument(t *testing.T) {
	_, err := ParseBytes([]byte("plain text pretending to be a docx"), "fake.docx", "", Options{})
	if !errors.Is(err, doctree.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	var pe *doctree.ParserError
	if !errors.As(err, &pe) || pe.Path != "fake.docx" {
		t.Errorf("expected path on the error, got %v", err)
	}
}
