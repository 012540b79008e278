package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ParserError.
type ErrorKind string

const (
	KindFileNotFound      ErrorKind = "file_not_found"
	KindDecode            ErrorKind = "decode_error"
	KindMalformedDocument ErrorKind = "malformed_document"
	KindIO                ErrorKind = "io_error"
)

// Sentinels for errors.Is. ErrParser matches every ParserError.
var (
	ErrParser            = errors.New("document parser error")
	ErrFileNotFound      = errors.New("file not found")
	ErrDecode            = errors.New("cannot decode document")
	ErrMalformedDocument = errors.New("malformed document")
	ErrIO                = errors.New("document i/o failed")
)

var kindSentinels = map[ErrorKind]error{
	KindFileNotFound:      ErrFileNotFound,
	KindDecode:            ErrDecode,
	KindMalformedDocument: ErrMalformedDocument,
	KindIO:                ErrIO,
}

// ValidationIssue is one structural problem found while loading JSON.
type ValidationIssue struct {
	Location string
	Message  string
}

// ParserError is the single public error type for parsing, loading and saving.
type ParserError struct {
	Kind   ErrorKind
	Path   string
	Issues []ValidationIssue
	Err    error
}

func (e *ParserError) Error() string {
	var b strings.Builder
	b.WriteString(kindSentinels[e.Kind].Error())
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, issue := range e.Issues {
		loc := issue.Location
		if loc == "" {
			loc = "#"
		}
		fmt.Fprintf(&b, "; %s: %s", loc, issue.Message)
	}
	if e.Err != nil && len(e.Issues) == 0 {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParserError) Unwrap() error {
	return e.Err
}

// Is matches ErrParser and the sentinel for the error's kind.
func (e *ParserError) Is(target error) bool {
	if target == ErrParser {
		return true
	}
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// NewError builds a ParserError of the given kind.
func NewError(kind ErrorKind, path string, err error) *ParserError {
	return &ParserError{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of a ParserError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParserError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
