package parser

import (
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// DefaultExpectedSections lists the sections a platform analysis report
// normally contains.
var DefaultExpectedSections = []string{
	"Executive Summary",
	"Platform Overview",
	"Core Capabilities",
	"Data Management Architecture",
	"User Experience and Interface Design",
	"Technological Foundations",
	"Competitive Differentiation",
	"Lessons Learned",
}

// MissingSections returns the expected names that do not appear, as a
// case-insensitive substring, in any top-level section name or in the names of
// the first section's subsections.
func MissingSections(doc *doctree.Document, expected []string) []string {
	var found []string
	for _, s := range doc.Sections {
		found = append(found, strings.ToLower(s.Name))
	}
	if len(doc.Sections) > 0 {
		for _, s := range doc.Sections[0].Subsections {
			found = append(found, strings.ToLower(s.Name))
		}
	}

	var missing []string
	for _, want := range expected {
		w := strings.ToLower(want)
		ok := false
		for _, name := range found {
			if strings.Contains(name, w) {
				ok = true
				break
			}
		}
		if !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
