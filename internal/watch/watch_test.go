package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/dgallion1/reportparse/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(dir, out string) *Watcher {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Watcher{Dir: dir, OutDir: out, Logger: log, Options: parser.Options{Logger: log}}
}

func TestSync(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.md"), []byte("# Alpha\n## Scope\ntext\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.csv"), []byte("a,b\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.md"), []byte("# Hidden\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0o644))

	n, err := newWatcher(dir, out).Sync()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err := doctree.LoadFromFile(filepath.Join(out, "alpha.json"))
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.Title)

	doc, err = doctree.LoadFromFile(filepath.Join(out, "beta.json"))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)

	_, err = os.Stat(filepath.Join(out, ".hidden.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSync_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte("\xff\xfe"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.md"), []byte("# Good\n"), 0o644))

	n, err := newWatcher(dir, "").Sync()
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, doctree.ErrDecode)
	assert.FileExists(t, filepath.Join(dir, "good.json"))
}

func TestRun_ConvertsOnWrite(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "json")
	w := newWatcher(dir, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The output dir appears before the watch loop starts.
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	src := filepath.Join(dir, "gamma.md")
	require.Eventually(t, func() bool {
		// Rewrite until the watcher picks it up; the first write can race the
		// watch registration.
		_ = os.WriteFile(src, []byte("# Gamma\n## Results\nok\n"), 0o644)
		doc, err := doctree.LoadFromFile(filepath.Join(out, "gamma.json"))
		return err == nil && doc.Title == "Gamma"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestOutputPath(t *testing.T) {
	w := &Watcher{Dir: "/reports"}
	assert.Equal(t, filepath.Join("/reports", "q3_review.json"), w.OutputPath("/reports/q3_review.md"))
	w.OutDir = "/out"
	assert.Equal(t, filepath.Join("/out", "q3_review.json"), w.OutputPath("/reports/q3_review.md"))
}
