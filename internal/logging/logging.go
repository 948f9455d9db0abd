package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/partman-wizard/partman-wizard/internal/config"
)

const DefaultDirectory = "~/.partman-wizard/logs/"

// Setup initializes a logger that writes to a dated file under directory.
// The terminal belongs to the prompts, so nothing is logged to stdout.
// The returned closer releases the log file.
func Setup(level, directory string) (*slog.Logger, io.Closer, error) {
	if directory == "" {
		directory = DefaultDirectory
	}
	directory = config.ExpandHome(directory)

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(directory, FileName(time.Now()))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	return slog.New(handler), file, nil
}

// FileName returns the log file name for the given day.
func FileName(day time.Time) string {
	return fmt.Sprintf("partman-wizard-%s.log", day.Format("2006-01-02"))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
