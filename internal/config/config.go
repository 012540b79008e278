package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/reportparse/internal/parser"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer-token checks on /api routes.
	APIKey string `yaml:"api_key"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Parsing
	ReferenceSections    []string `yaml:"reference_sections"`
	ExpectedSections     []string `yaml:"expected_sections"`
	PDFFallbackPdftotext bool     `yaml:"pdf_fallback_pdftotext"`
}

// Default returns the configuration used when neither a file nor the
// environment sets a value.
func Default() Config {
	return Config{
		Port:                 "8090",
		MaxUploadBytes:       10 << 20, // 10MB
		LogLevel:             "info",
		LogFormat:            "json",
		ExpectedSections:     slices.Clone(parser.DefaultExpectedSections),
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration in three layers: defaults, the optional YAML
// file at path, then environment variables (a .env file in the working
// directory is loaded first if present).
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("REPORTPARSE_API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.ReferenceSections = envList("REFERENCE_SECTIONS", cfg.ReferenceSections)
	cfg.ExpectedSections = envList("EXPECTED_SECTIONS", cfg.ExpectedSections)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	return cfg, nil
}

// Validate checks every field and reports all failures at once as
// validation.Errors keyed by field name.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.By(func(value any) error {
			n, err := strconv.Atoi(value.(string))
			if err != nil || n < 1 || n > 65535 {
				return validation.NewError("config.port_invalid", "must be a TCP port number")
			}
			return nil
		})),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.LogLevel, validation.Required, validation.By(func(any) error {
			if _, err := c.SlogLevel(); err != nil {
				return validation.NewError("config.log_level_invalid", "must be debug, info, warn or error")
			}
			return nil
		})),
		validation.Field(&c.LogFormat, validation.Required, validation.In("json", "text")),
	)
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// ParserOptions returns the parser settings carried by the configuration.
func (c Config) ParserOptions(log *slog.Logger) parser.Options {
	return parser.Options{
		Logger:            log,
		ReferenceSections: c.ReferenceSections,
		ExpectedSections:  c.ExpectedSections,

		PDFFallbackPdftotext: c.PDFFallbackPdftotext,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
