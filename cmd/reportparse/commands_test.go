package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/reportparse/internal/config"
	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGlobal(out io.Writer) *Global {
	return &Global{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.Default(),
		Out:    out,
	}
}

func TestParseCmd_Stdout(t *testing.T) {
	src := filepath.Join(t.TempDir(), "review.md")
	require.NoError(t, os.WriteFile(src, []byte("# Review\n## Findings\nStable.\n"), 0o644))

	var out bytes.Buffer
	cmd := &ParseCmd{File: src}
	require.NoError(t, cmd.Run(testGlobal(&out), &CLI{}))

	doc, err := doctree.FromJSON(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Review", doc.Title)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Stable.", doc.Sections[0].Content)
}

func TestParseCmd_OutputThenLoad(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "review.md")
	dst := filepath.Join(dir, "review.json")
	require.NoError(t, os.WriteFile(src, []byte("## Results\n| A | B |\n|---|---|\n| 1 |\n## Sources\n[1] Lee (2021).\n"), 0o644))

	parse := &ParseCmd{File: src, Title: "Quarterly Review", Output: dst}
	require.NoError(t, parse.Run(testGlobal(io.Discard), &CLI{}))

	var out bytes.Buffer
	load := &LoadCmd{File: dst}
	require.NoError(t, load.Run(testGlobal(&out), &CLI{}))

	assert.Equal(t, "Quarterly Review\n"+
		"  Results\n"+
		"  Sources\n"+
		"table T1: Results [2 cols x 1 rows]\n"+
		"references: 1\n", out.String())
}

func TestParseCmd_MissingFile(t *testing.T) {
	cmd := &ParseCmd{File: filepath.Join(t.TempDir(), "nope.md")}
	err := cmd.Run(testGlobal(io.Discard), &CLI{})
	assert.ErrorIs(t, err, doctree.ErrFileNotFound)
}

func TestLoadCmd_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"x"}`), 0o644))

	err := (&LoadCmd{File: path}).Run(testGlobal(io.Discard), &CLI{})
	assert.ErrorIs(t, err, doctree.ErrMalformedDocument)
}

func TestSetup_Flags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	var logs bytes.Buffer
	cli := &CLI{Verbose: true, LogFormat: "text"}
	g, err := cli.setup(io.Discard, &logs)
	require.NoError(t, err)
	assert.Equal(t, "debug", g.Config.LogLevel)
	assert.Equal(t, "text", g.Config.LogFormat)

	g.Logger.Debug("probe")
	assert.Contains(t, logs.String(), "msg=probe")

	_, err = (&CLI{LogFormat: "xml"}).setup(io.Discard, io.Discard)
	assert.Error(t, err)
}
