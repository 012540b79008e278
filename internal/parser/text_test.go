package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/reportparse/internal/doctree"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Notes" {
		t.Errorf("expected title %q, got %q", "Notes", doc.Title)
	}
	if len(doc.Sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(doc.Sections))
	}

	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if doc.Preamble != want {
		t.Errorf("expected %q, got %q", want, doc.Preamble)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Empty" {
		t.Errorf("expected title %q, got %q", "Empty", doc.Title)
	}
	if doc.Preamble != "" {
		t.Errorf("expected empty preamble, got %q", doc.Preamble)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Whitespace-only lines count as blank.
	input := "Para one.\n\n   \n\nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Preamble != "Para one.\n\nPara two." {
		t.Errorf("expected two paragraphs, got %q", doc.Preamble)
	}
}

func TestTextParser_InvalidUTF8(t *testing.T) {
	p := &TextParser{}
	_, err := p.Parse(strings.NewReader("ok\n\xff\n"), "bad.txt")
	if !errors.Is(err, doctree.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestTextParser_LineLongerThanScannerDefault(t *testing.T) {
	long := strings.Repeat("word ", 300*1024) // 1.5MB on one line
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("\ufeffIntro.\n\n"+long+"\n"), "long.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Intro.\n\n" + strings.TrimRight(long, " ")
	if doc.Preamble != want {
		t.Errorf("expected the long line kept whole (%d bytes), got %d bytes", len(want), len(doc.Preamble))
	}
}
