package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/reportparse/internal/doctree"
)

// captionLookback is how many body lines before a table are searched for a
// "Table N:" label.
const captionLookback = 5

var captionPattern = regexp.MustCompile(`^(?:Table|TABLE)\s+[\d.]+:?\s+(.+)$`)

// isTableLine reports whether line starts and ends with a pipe.
func isTableLine(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 2 && t[0] == '|' && t[len(t)-1] == '|'
}

// isSeparatorRow reports whether line is a header/body separator such as
// "|---|:--:|".
func isSeparatorRow(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "-") {
		return false
	}
	for _, r := range t {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// splitCells returns the trimmed cells between the outer pipes. An escaped
// pipe (\|) stays inside its cell.
func splitCells(line string) []string {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, "|")
	if strings.HasSuffix(t, "|") && !strings.HasSuffix(t, `\|`) {
		t = t[:len(t)-1]
	}

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(t); i++ {
		switch {
		case t[i] == '\\' && i+1 < len(t) && t[i+1] == '|':
			cur.WriteByte('|')
			i++
		case t[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(t[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// buildTable turns a block of pipe lines into a table. The first line is the
// header row; a separator on the second line is dropped.
func buildTable(id, caption string, block []string) doctree.Table {
	if len(block) == 0 {
		return doctree.NewTable(id, caption, nil, nil)
	}
	headers := splitCells(block[0])
	body := block[1:]
	if len(body) > 0 && isSeparatorRow(body[0]) {
		body = body[1:]
	}
	rows := make([][]string, 0, len(body))
	for _, line := range body {
		rows = append(rows, splitCells(line))
	}
	return doctree.NewTable(id, caption, headers, rows)
}

// findCaption looks back through the preceding body lines for a table label.
func findCaption(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if captionPattern.MatchString(line) {
			return line
		}
	}
	return ""
}
