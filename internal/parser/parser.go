package parser

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/reportparse/internal/doctree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes the parsers that understand headings.
type Options struct {
	Logger            *slog.Logger
	ReferenceSections []string // nil means DefaultReferenceSections
	ExpectedSections  []string // nil means DefaultExpectedSections; an empty non-nil list disables the check

	PDFFallbackPdftotext bool
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ExpectedSectionNames returns the sections to warn about when absent.
func (o Options) ExpectedSectionNames() []string {
	if o.ExpectedSections == nil {
		return DefaultExpectedSections
	}
	return o.ExpectedSections
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{Options: opts}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{Options: opts}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFile reads path and parses it with the parser for its extension.
// Files with an unknown extension are read as markdown. A non-empty title
// replaces whatever title the parser derived.
func ParseFile(path, title string, opts Options) (*doctree.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseBytes(data, path, title, opts)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("parsed file",
		"path", path,
		"title", doc.Title,
		"sections", len(doc.Sections),
		"tables", len(doc.Tables),
		"references", len(doc.References),
	)
	return doc, nil
}

// ParseBytes parses data as if it had been read from name, recording name and
// the content hash in the document metadata. Errors are always *ParserError.
func ParseBytes(data []byte, name, title string, opts Options) (*doctree.Document, error) {
	p, err := ForFile(name, opts)
	if err != nil {
		p = &MarkdownParser{Options: opts}
	}

	doc, err := p.Parse(bytes.NewReader(data), filepath.Base(name))
	if err != nil {
		var pe *doctree.ParserError
		if errors.As(err, &pe) {
			pe.Path = name
			return nil, pe
		}
		return nil, doctree.NewError(doctree.KindDecode, name, err)
	}

	if title != "" {
		doc.Title = title
	}
	doc.SetMeta("source", name)
	doc.SetMeta("content_hash", ContentHashHex(data))
	return doc, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, doctree.NewError(doctree.KindFileNotFound, path, err)
		}
		return nil, doctree.NewError(doctree.KindIO, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, doctree.NewError(doctree.KindIO, path, err)
	}
	return data, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readSource reads UTF-8 text, dropping a leading byte order mark.
func readSource(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	src = bytes.TrimPrefix(src, utf8BOM)
	if !utf8.Valid(src) {
		return "", doctree.NewError(doctree.KindDecode, filename, errors.New("input is not valid UTF-8"))
	}
	return string(src), nil
}

// titleFromFilename turns "platform_analysis-2024.md" into
// "Platform Analysis 2024".
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" || stem == "." {
		return DefaultTitle
	}
	return cases.Title(language.English).String(stem)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
