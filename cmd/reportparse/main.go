package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/reportparse/internal/config"
)

// Global carries what every subcommand needs once flags are parsed.
type Global struct {
	Logger *slog.Logger
	Config config.Config
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string `short:"c" help:"YAML configuration file (optional)"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	LogFormat string `name:"log-format" help:"Log format: text or json (default from config)"`

	Parse ParseCmd `cmd:"" help:"Parse a report into the JSON document format"`
	Load  LoadCmd  `cmd:"" help:"Load a saved JSON document and print its outline"`
	Serve ServeCmd `cmd:"" help:"Run the HTTP parsing API"`
	Watch WatchCmd `cmd:"" help:"Keep JSON copies of a directory of reports up to date"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("reportparse"),
		kong.Description("Parse markdown reports into sections, tables and references."),
		kong.UsageOnError(),
	)

	g, err := cli.setup(os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reportparse:", err)
		os.Exit(1)
	}
	ctx.FatalIfErrorf(ctx.Run(g, &cli))
}

// setup loads configuration, applies the global flags on top of it and
// installs the process logger.
func (c *CLI) setup(out, logOut io.Writer) (*Global, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Verbose {
		cfg.LogLevel = "debug"
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(logOut, cfg)
	slog.SetDefault(logger)
	return &Global{Logger: logger, Config: cfg, Out: out}, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
