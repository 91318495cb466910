// Package logger prints the research run's progress to stderr when the
// --verbose flag is set: reasoning steps, tool calls, index builds, and
// anything the run recovers from. Output is off by default so briefs on
// stdout stay pipeable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var prefixes = map[level]string{
	levelDebug: "[DEBUG] ",
	levelInfo:  "[INFO] ",
	levelWarn:  "[WARN] ",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns verbose output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects verbose output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(lvl level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, prefixes[lvl]+format+"\n", args...)
}

// Debug logs fine-grained progress, such as individual tool calls.
func Debug(format string, args ...any) {
	emit(levelDebug, format, args...)
}

// Info logs run milestones, such as a completed index build.
func Info(format string, args ...any) {
	emit(levelInfo, format, args...)
}

// Warn logs recoverable problems the run continued past.
func Warn(format string, args ...any) {
	emit(levelWarn, format, args...)
}

// Section prints a visual divider between phases of a run.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}
