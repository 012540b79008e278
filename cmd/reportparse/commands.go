package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/reportparse/internal/api"
	"github.com/dgallion1/reportparse/internal/doctree"
	"github.com/dgallion1/reportparse/internal/parser"
	"github.com/dgallion1/reportparse/internal/watch"
)

// ParseCmd implements the 'parse' command.
type ParseCmd struct {
	File   string `arg:"" help:"Report file (.md, .txt, .csv, .html, .docx, .pdf)"`
	Title  string `short:"t" help:"Override the document title"`
	Output string `short:"o" help:"Write JSON to this file instead of stdout"`
}

func (c *ParseCmd) Run(g *Global, _ *CLI) error {
	doc, err := parser.ParseFile(c.File, c.Title, g.Config.ParserOptions(g.Logger))
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := doc.SaveToFile(c.Output); err != nil {
			return err
		}
		g.Logger.Info("wrote document", "path", c.Output)
		return nil
	}

	data, err := doc.ToJSON()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = fmt.Fprintf(g.Out, "%s\n", data)
	return err
}

// LoadCmd implements the 'load' command.
type LoadCmd struct {
	File string `arg:"" help:"JSON document written by 'parse'"`
}

func (c *LoadCmd) Run(g *Global, _ *CLI) error {
	doc, err := doctree.LoadFromFile(c.File)
	if err != nil {
		var pe *doctree.ParserError
		if errors.As(err, &pe) {
			for _, issue := range pe.Issues {
				g.Logger.Error("invalid document", "location", issue.Location, "problem", issue.Message)
			}
		}
		return err
	}
	return printOutline(g, doc)
}

func printOutline(g *Global, doc *doctree.Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", doc.Title)
	doc.Walk(func(s *doctree.Section, depth int) bool {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth+1), s.Name)
		return true
	})
	for _, t := range doc.Tables {
		caption := t.Caption
		if caption == "" {
			caption = "(no caption)"
		}
		fmt.Fprintf(&b, "table %s: %s [%d cols x %d rows]\n", t.ID, caption, len(t.Headers), len(t.Rows))
	}
	fmt.Fprintf(&b, "references: %d\n", len(doc.References))
	_, err := fmt.Fprint(g.Out, b.String())
	return err
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port string `short:"p" help:"Listen port (overrides PORT)"`
}

func (c *ServeCmd) Run(g *Global, _ *CLI) error {
	cfg := g.Config
	if c.Port != "" {
		cfg.Port = c.Port
	}
	srv := api.NewServer(g.Logger, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		g.Logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	g.Logger.Info("starting reportparse", "port", cfg.Port, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Dir    string `arg:"" help:"Directory of reports to follow"`
	Output string `short:"o" help:"Directory for the JSON files (default: alongside the reports)"`
}

func (c *WatchCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &watch.Watcher{
		Dir:     c.Dir,
		OutDir:  c.Output,
		Options: g.Config.ParserOptions(g.Logger),
		Logger:  g.Logger,
	}
	out := c.Output
	if out == "" {
		out = c.Dir
	}
	g.Logger.Info("watching reports", "dir", c.Dir, "out", out)
	return w.Run(ctx)
}
