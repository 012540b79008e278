package reportparse_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/reportparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `# Digital Health Platform Analysis

Scope and method.

## 1. Executive Summary
The platform consolidates patient records.

## 2. Core Capabilities
### 2.1 Data *Ingestion*
Feeds from three EHR vendors.

Table 1: Feed volumes
| Vendor | Daily records |
|--------|---------------|
| Epic   | 120000        |
| Cerner |

## References
[1] Smith, J. (2020). Interoperability at scale.
[2] Johnson, A. (2023).
`

func TestParseDocument_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "platform_analysis.md")
	require.NoError(t, os.WriteFile(src, []byte(report), 0o644))

	doc, err := reportparse.ParseDocument(src, "")
	require.NoError(t, err)

	assert.Equal(t, "Digital Health Platform Analysis", doc.Title)
	assert.Equal(t, "Scope and method.", doc.Preamble)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "Executive Summary", doc.Sections[0].Name)
	assert.Equal(t, "1. Executive Summary", doc.Sections[0].RawName)

	caps := doc.Sections[1]
	require.Len(t, caps.Subsections, 1)
	assert.Equal(t, "Data Ingestion", caps.Subsections[0].Name)
	assert.Equal(t, 3, caps.Subsections[0].Level)
	assert.Empty(t, caps.Content)

	require.Len(t, doc.Tables, 1)
	assert.Equal(t, "Table 1: Feed volumes", doc.Tables[0].Caption)
	assert.Equal(t, [][]string{{"Epic", "120000"}, {"Cerner", ""}}, doc.Tables[0].Rows)

	assert.Equal(t, []reportparse.Reference{
		{ID: "1", Text: "Smith, J. (2020). Interoperability at scale."},
		{ID: "2", Text: "Johnson, A. (2023)."},
	}, doc.References)
	assert.Empty(t, doc.Sections[2].Content)

	out := filepath.Join(dir, "platform_analysis.json")
	require.NoError(t, doc.SaveToFile(out))
	loaded, err := reportparse.LoadFromFile(out)
	require.NoError(t, err)
	assert.True(t, doc.Equal(loaded), "round trip changed the document")
}

func TestParseDocument_Missing(t *testing.T) {
	_, err := reportparse.ParseDocument(filepath.Join(t.TempDir(), "absent.md"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, reportparse.ErrFileNotFound)
	assert.ErrorIs(t, err, reportparse.ErrParser)
	assert.False(t, errors.Is(err, reportparse.ErrDecode))

	var pe *reportparse.ParserError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, reportparse.KindFileNotFound, pe.Kind)
}

func TestLoadFromFile_MissingSectionsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"T","tables":[],"references":[]}`), 0o644))

	doc, err := reportparse.LoadFromFile(path)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, reportparse.ErrMalformedDocument)
	assert.NotErrorIs(t, err, reportparse.ErrFileNotFound)
}

func TestParse_Programmatic(t *testing.T) {
	doc := reportparse.Parse("## Findings\nNo incidents.\n", "")
	assert.Equal(t, "Untitled Document", doc.Title)

	built := reportparse.New("Untitled Document")
	findings := reportparse.NewSection("Findings", 2)
	findings.Content = "No incidents."
	built.AddSection(findings)
	assert.True(t, doc.Equal(built))

	unleveled := reportparse.New("Draft")
	unleveled.AddSection(&reportparse.Section{Name: "Intro"})
	err := unleveled.SaveToFile(filepath.Join(t.TempDir(), "draft.json"))
	assert.ErrorIs(t, err, reportparse.ErrMalformedDocument)

	tbl := reportparse.NewTable("T1", "", []string{"a", "b"}, [][]string{{"1", "2", "3"}})
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
}
