// Package logger configures the process-wide phuslu logger.
package logger

import (
	"io"
	"os"

	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/config"
)

// Setup replaces log.DefaultLogger. Logs go to stderr so that stdout stays
// free for command output and the MCP stdio transport.
func Setup(cfg config.LoggingConfig) {
	log.DefaultLogger = New(cfg, os.Stderr)
}

func New(cfg config.LoggingConfig, w io.Writer) log.Logger {
	logger := log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}

	switch cfg.Format {
	case "json":
		logger.Writer = &log.IOWriter{Writer: w}
	default:
		logger.Writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    isTerminal(w),
			QuoteString:    true,
			EndWithMessage: true,
		}
	}
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && log.IsTerminal(f.Fd())
}
