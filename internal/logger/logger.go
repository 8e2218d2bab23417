package logger

import (
	"io"
	"log"
	"os"
)

const (
	fatalLabel = "[FATAL] "
	errorLabel = "[ERROR] "
	warnLabel  = "[WARN ] "
	infoLabel  = "[INFO ] "
	debugLabel = "[DEBUG] "
)

// Level controls which messages a Logger lets through.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

// LevelFromVerbosity maps a -v count to a Level.
func LevelFromVerbosity(v int) Level {
	switch {
	case v <= 0:
		return LevelWarn
	case v == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Logger is a levelled wrapper around [log.Logger].
// Errors and warnings are always printed.
type Logger struct {
	out   *log.Logger
	level Level
	exit  func(int)
}

// New returns a Logger writing to w with the standard log flags.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
		exit:  os.Exit,
	}
}

var std = New(os.Stderr, LevelWarn)

// Default returns the process-wide logger. Only the entry point should use it;
// components get their Logger passed in.
func Default() *Logger {
	return std
}

// SetLevel changes the level of l.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// mylog prepends the level string to the underlying Printf.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) mylog(label string, format string, args ...interface{}) {
	l.out.Printf(label+format, args...)
}

// Fatal prints with a fatal label and exits with status 1.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.mylog(fatalLabel, format, args...)
	l.exit(1)
}

// Error prints with an error label.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) Error(format string, args ...interface{}) {
	l.mylog(errorLabel, format, args...)
}

// Warn prints with a warn label.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) Warn(format string, args ...interface{}) {
	l.mylog(warnLabel, format, args...)
}

// Info prints with an info label when the level is at least LevelInfo.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level < LevelInfo {
		return
	}
	l.mylog(infoLabel, format, args...)
}

// Debug prints with a debug label when the level is LevelDebug.
// Arguments are handled in the manner of [fmt.Printf].
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level < LevelDebug {
		return
	}
	l.mylog(debugLabel, format, args...)
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(io.Discard, LevelWarn)
}
