// Package console is the process logger used by the CLI and the generator.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/castr-dev/castr/internal/diag"
)

// Level controls which messages the Logger emits.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	QuietLevel
)

// Log is a printf-style logger backed by a zap sugared logger.
type Log struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
	sugar *zap.SugaredLogger
}

// Logger is the shared logger. It starts at InfoLevel on stderr.
var Logger = New(os.Stderr, InfoLevel)

// New creates a logger writing plain console lines to w.
func New(w io.Writer, level Level) *Log {
	l := &Log{out: w}
	l.build(level)
	return l
}

func (l *Log) build(level Level) {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(l.out), zapLevel(level))
	l.level = level
	l.sugar = zap.New(core).Sugar()
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	}
	return zapcore.FatalLevel
}

// SetLevel changes the minimum level.
func (l *Log) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.build(level)
}

// Level returns the current minimum level.
func (l *Log) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Log) logger() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// Debug logs a debug message.
func (l *Log) Debug(format string, args ...any) {
	l.logger().Debugf(strings.TrimSuffix(format, "\n"), args...)
}

// Info logs an informational message.
func (l *Log) Info(format string, args ...any) {
	l.logger().Infof(strings.TrimSuffix(format, "\n"), args...)
}

// Warn logs a warning.
func (l *Log) Warn(format string, args ...any) {
	l.logger().Warnf(strings.TrimSuffix(format, "\n"), args...)
}

// Printf logs at debug level. It lets a Log serve as a Debugger.
func (l *Log) Printf(format string, args ...any) {
	l.Debug(format, args...)
}

// Sync flushes buffered output.
func (l *Log) Sync() error {
	return l.logger().Sync()
}

var (
	codeColor = color.New(color.FgYellow, color.Bold)
	pathColor = color.New(color.FgCyan)
)

// PrintWarnings writes a batch of warnings under a heading, one per line.
// Colour follows color.NoColor.
func PrintWarnings(w io.Writer, source string, ws diag.Warnings) {
	if len(ws) == 0 {
		return
	}
	codeColor.Fprintf(w, "%d warning(s) for %s\n", len(ws), source)
	for _, warning := range ws {
		fmt.Fprint(w, "  ")
		codeColor.Fprint(w, warning.Code)
		if warning.Path != "" {
			fmt.Fprint(w, " ")
			pathColor.Fprint(w, warning.Path)
		}
		fmt.Fprintf(w, ": %s\n", warning.Message)
	}
}
