// Package watch keeps JSON renditions of a directory of reports up to date.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportparse/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// Watcher converts every supported report under Dir into Dir/<stem>.json (or
// OutDir/<stem>.json) and reconverts a report whenever it is written.
type Watcher struct {
	Dir     string
	OutDir  string // defaults to Dir
	Options parser.Options
	Logger  *slog.Logger
}

func (w *Watcher) log() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Watcher) outDir() string {
	if w.OutDir != "" {
		return w.OutDir
	}
	return w.Dir
}

// OutputPath returns where the JSON for report src is written.
func (w *Watcher) OutputPath(src string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.outDir(), stem+".json")
}

// Convert parses src and saves the document next to the other outputs.
func (w *Watcher) Convert(src string) error {
	doc, err := parser.ParseFile(src, "", w.Options)
	if err != nil {
		return err
	}
	out := w.OutputPath(src)
	if err := doc.SaveToFile(out); err != nil {
		return err
	}
	w.log().Info("converted report", "src", src, "out", out)
	return nil
}

// Sync converts every supported report currently in Dir. Failures are logged
// and counted; the first one is returned after all files were tried.
func (w *Watcher) Sync() (int, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}
	var firstErr error
	converted := 0
	for _, e := range entries {
		if e.IsDir() || ignored(e.Name()) {
			continue
		}
		if err := w.Convert(filepath.Join(w.Dir, e.Name())); err != nil {
			w.log().Warn("convert failed", "file", e.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		converted++
	}
	return converted, firstErr
}

// Run syncs once and then follows filesystem events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	if n, err := w.Sync(); err != nil {
		w.log().Warn("initial sync incomplete", "converted", n, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if ignored(filepath.Base(ev.Name)) {
				continue
			}
			w.log().Debug("report changed", "path", ev.Name, "op", ev.Op.String())
			if err := w.Convert(ev.Name); err != nil {
				w.log().Warn("convert failed", "file", ev.Name, "error", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log().Warn("watcher error", "error", err)
		}
	}
}

// ignored skips hidden and editor temp files, and anything the parsers do not
// read (which includes the .json outputs).
func ignored(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return true
	}
	return !parser.IsSupportedExtension(name)
}
