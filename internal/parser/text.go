package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// TextParser handles plain text files. Text has no headings, so every
// paragraph lands in the preamble.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := readSource(r, filename)
	if err != nil {
		return nil, err
	}

	// A line can be as long as the whole file.
	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), max(len(src)+1, 64*1024))

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, doctree.NewError(doctree.KindIO, filename, fmt.Errorf("scan text: %w", err))
	}

	doc := doctree.New(titleFromFilename(filename))
	doc.Preamble = strings.Join(paragraphs, "\n\n")
	return doc, nil
}
