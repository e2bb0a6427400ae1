// Package logging defines the small logging interface used across mapgen.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger provides a minimal interface for observability and debugging.
// A nil Logger must never be passed around; use NopLogger instead.
type Logger interface {
	// Debug logs verbose operational details.
	Debug(ctx context.Context, msg string, keyvals ...any)

	// Info logs significant events during normal execution.
	Info(ctx context.Context, msg string, keyvals ...any)

	// Error logs failures that require attention.
	Error(ctx context.Context, msg string, keyvals ...any)
}

// NopLogger is a logger that does nothing.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ context.Context, _ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ context.Context, _ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ context.Context, _ string, _ ...any) {}

// Level filters Console output.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// Console writes one line per entry: "LEVEL msg key=value ...".
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

// NewConsole creates a Console logger writing entries at or above level to w.
func NewConsole(w io.Writer, level Level) *Console {
	return &Console{w: w, level: level}
}

var (
	debugTag = color.New(color.FgHiBlack).SprintFunc()
	infoTag  = color.New(color.FgCyan).SprintFunc()
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Debug implements Logger.
func (c *Console) Debug(_ context.Context, msg string, keyvals ...any) {
	c.write(LevelDebug, debugTag("DEBUG"), msg, keyvals)
}

// Info implements Logger.
func (c *Console) Info(_ context.Context, msg string, keyvals ...any) {
	c.write(LevelInfo, infoTag("INFO "), msg, keyvals)
}

// Error implements Logger.
func (c *Console) Error(_ context.Context, msg string, keyvals ...any) {
	c.write(LevelError, errorTag("ERROR"), msg, keyvals)
}

func (c *Console) write(level Level, tag, msg string, keyvals []any) {
	if level < c.level {
		return
	}

	line := tag + " " + msg + formatKeyvals(keyvals)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(c.w, line)
}

func formatKeyvals(keyvals []any) string {
	if len(keyvals) == 0 {
		return ""
	}

	var sb strings.Builder

	for i := 0; i < len(keyvals); i += 2 {
		sb.WriteByte(' ')

		if i+1 >= len(keyvals) {
			fmt.Fprintf(&sb, "%v=(missing)", keyvals[i])
			break
		}

		fmt.Fprintf(&sb, "%v=%v", keyvals[i], keyvals[i+1])
	}

	return sb.String()
}
