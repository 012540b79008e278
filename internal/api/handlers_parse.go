package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/dgallion1/reportparse/internal/parser"
)

type parseResponse struct {
	Document        *doctree.Document `json:"document"`
	MissingSections []string          `json:"missing_sections,omitempty"`
}

type validateResponse struct {
	Valid      bool   `json:"valid"`
	Title      string `json:"title"`
	Sections   int    `json:"sections"`
	Tables     int    `json:"tables"`
	References int    `json:"references"`
}

type issueJSON struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error  string      `json:"error"`
	Kind   string      `json:"kind,omitempty"`
	Issues []issueJSON `json:"issues,omitempty"`
}

// handleParse accepts a multipart upload (field "file", optional "title") and
// returns the parsed document.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	start := time.Now()
	opts := s.cfg.ParserOptions(s.log)
	doc, err := parser.ParseBytes(data, filename, r.FormValue("title"), opts)
	if err != nil {
		kind, _ := doctree.KindOf(err)
		s.metrics.observeParse(filename, string(kind), 0, time.Since(start))
		s.log.Warn("parse failed", "filename", filename, "error", err)
		writeParserError(w, err)
		return
	}
	s.metrics.observeParse(filename, "ok", len(doc.Tables), time.Since(start))

	resp := parseResponse{Document: doc}
	if expected := opts.ExpectedSectionNames(); len(expected) > 0 {
		resp.MissingSections = parser.MissingSections(doc, expected)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleValidate checks a serialized document against the document schema
// and its structural invariants.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	doc, err := doctree.FromJSON(data)
	if err != nil {
		s.metrics.validations.WithLabelValues("invalid").Inc()
		writeParserError(w, err)
		return
	}
	s.metrics.validations.WithLabelValues("valid").Inc()
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:      true,
		Title:      doc.Title,
		Sections:   len(doc.Sections),
		Tables:     len(doc.Tables),
		References: len(doc.References),
	})
}

// writeParserError maps a ParserError onto a status code. Input problems
// are 422; anything else is a server fault.
func writeParserError(w http.ResponseWriter, err error) {
	var pe *doctree.ParserError
	if !errors.As(err, &pe) {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	code := http.StatusInternalServerError
	switch pe.Kind {
	case doctree.KindDecode, doctree.KindMalformedDocument:
		code = http.StatusUnprocessableEntity
	}

	resp := errorResponse{Error: pe.Error(), Kind: string(pe.Kind)}
	for _, issue := range pe.Issues {
		resp.Issues = append(resp.Issues, issueJSON{Location: issue.Location, Message: issue.Message})
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
