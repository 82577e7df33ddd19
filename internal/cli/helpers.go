package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/runnerr0/histview/internal/artifact"
	"github.com/runnerr0/histview/internal/config"
)

// loadConfig resolves configuration: an explicit --config must load; the
// default path is read when present; otherwise built-in defaults apply.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		path, err := config.ExpandPath(globals.Config)
		if err != nil {
			return nil, err
		}
		return config.Load(path)
	}

	path, err := config.ExpandPath(config.DefaultConfigPath)
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return config.Load(path)
		}
	}
	return config.DefaultConfig(), nil
}

// setup loads configuration and installs the process logger.
func setup(globals *GlobalFlags) (*config.Config, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	if globals != nil && globals.Driver != "" {
		cfg.Storage.Driver = globals.Driver
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.Logging, globals != nil && globals.Verbose))
	return cfg, nil
}

// newLogger builds a slog.Logger from the logging section. verbose forces
// debug level.
func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openArtifact opens an Engine on an existing file.
func openArtifact(ctx context.Context, path, driver string) (*artifact.Engine, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("artifact %s is a directory", path)
	}
	return artifact.Open(ctx, path,
		artifact.WithDriver(driver),
		artifact.WithLogger(slog.Default()),
	)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// plural picks the singular or plural noun for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
