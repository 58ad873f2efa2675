// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
)

// SetOutput redirects every logger created afterwards, and the global charm
// logger, to w. The IPC server needs stdout for its protocol and sends logs
// to stderr instead.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
	log.SetOutput(w)
}

// Output returns the writer new loggers write to.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// New creates a new default charm log.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(Output(), log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
