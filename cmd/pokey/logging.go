package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// newLogger builds the root logger every component derives its prefix from
func newLogger(w io.Writer, level, format string, noColor bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	switch format {
	case "", "text":
		logger.SetStyles(logStyles())
	case "json":
		logger.SetFormatter(log.JSONFormatter)
		logger.SetTimeFormat(time.RFC3339)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
		logger.SetTimeFormat(time.RFC3339)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if noColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger, nil
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("11"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("9"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styles.Keys["table"] = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	return styles
}
