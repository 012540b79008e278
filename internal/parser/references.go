package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// DefaultReferenceSections are the section names whose "[n] text" lines are
// collected as references. A name matches when it contains one of these as
// whole words, ignoring case, so "Sources" counts and "Resources" does not.
var DefaultReferenceSections = []string{
	"references",
	"bibliography",
	"works cited",
	"citations",
	"sources",
}

var referencePattern = regexp.MustCompile(`^(?:[-*+][ \t]+)?\[([^\[\]]+)\]:?[ \t]+(\S.*)$`)

// matchReference parses a "[id] text" line.
func matchReference(line string) (doctree.Reference, bool) {
	m := referencePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return doctree.Reference{}, false
	}
	id := strings.TrimSpace(m[1])
	if id == "" {
		return doctree.Reference{}, false
	}
	return doctree.Reference{ID: id, Text: strings.TrimSpace(m[2])}, true
}

// referenceMatcher builds a predicate that recognizes reference sections.
func referenceMatcher(names []string) func(*doctree.Section) bool {
	if len(names) == 0 {
		names = DefaultReferenceSections
	}
	patterns := make([]*regexp.Regexp, 0, len(names))
	for _, n := range names {
		words := strings.Fields(n)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+strings.Join(words, `\s+`)+`\b`))
	}
	return func(s *doctree.Section) bool {
		for _, re := range patterns {
			if re.MatchString(s.Name) {
				return true
			}
		}
		return false
	}
}
