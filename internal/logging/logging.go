// Package logging sets up the process-wide logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

const SupportedLevels = "debug, info, warn, error"

// Configure installs a charm logger writing to w at level as the default
// logger of both charmbracelet/log and log/slog.
func Configure(level string, w io.Writer) error {
	l, err := parseLevel(level)
	if err != nil {
		return err
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           l,
		ReportTimestamp: true,
	})
	log.SetDefault(logger)
	slog.SetDefault(slog.New(logger))
	return nil
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("invalid log level %q: must be one of %s", level, SupportedLevels)
	}
}
