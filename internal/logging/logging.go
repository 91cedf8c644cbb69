// Package logging cria os loggers estruturados do harness (charmbracelet/log).
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Options struct {
	// Level: debug, info, warn, error (padrão info)
	Level  string
	Output io.Writer
	Prefix string
	// ReportTimestamp adiciona o horário em cada linha
	ReportTimestamp bool
}

func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func New(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return log.NewWithOptions(opts.Output, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// Discard é um logger que não escreve nada.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
