// Package util holds the leveled stderr logger shared by the pipeline and
// the CLI commands.
package util

import (
	"fmt"
	"os"
	"time"
)

// LogLevel orders message severities.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

const colorReset = "\033[0m"

var (
	currentLogLevel = LevelInfo
	useColors       = true
)

// SetVerbose lowers the threshold to debug.
func SetVerbose(verbose bool) {
	if verbose {
		currentLogLevel = LevelDebug
	}
}

// SetQuiet raises the threshold so only errors are printed.
func SetQuiet(quiet bool) {
	if quiet {
		currentLogLevel = LevelError
	}
}

// SetColors toggles ANSI colors on the timestamp prefix.
func SetColors(enabled bool) {
	useColors = enabled
}

// Quiet reports whether quiet mode is active.
func Quiet() bool {
	return currentLogLevel >= LevelError
}

func logf(level LogLevel, color, tag, format string, args ...interface{}) {
	if currentLogLevel > level {
		return
	}
	ts := time.Now().Format("15:04:05")
	if useColors {
		ts = color + ts + colorReset
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", ts, tag, fmt.Sprintf(format, args...))
}

// DebugLog prints row-level diagnostics; visible only with --verbose.
func DebugLog(format string, args ...interface{}) {
	logf(LevelDebug, "\033[90m", "[DEBUG]", format, args...)
}

// InfoLog prints progress messages.
func InfoLog(format string, args ...interface{}) {
	logf(LevelInfo, "\033[36m", "[INFO] ", format, args...)
}

// WarnLog prints recoverable problems.
func WarnLog(format string, args ...interface{}) {
	logf(LevelWarn, "\033[33m", "[WARN] ", format, args...)
}

// ErrorLog prints failures; shown even in quiet mode.
func ErrorLog(format string, args ...interface{}) {
	logf(LevelError, "\033[31m", "[ERROR]", format, args...)
}

// SuccessLog prints the end-of-run banner at info level.
func SuccessLog(format string, args ...interface{}) {
	logf(LevelInfo, "\033[32m", "[OK]   ", format, args...)
}
