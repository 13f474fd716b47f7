package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	level Level
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger

	combined io.Writer
	closers  []io.Closer
}

const flags = log.Ldate | log.Ltime | log.Lshortfile

func New() *Logger {
	return &Logger{
		level:    LevelInfo,
		debug:    log.New(os.Stdout, "DEBUG: ", flags),
		info:     log.New(os.Stdout, "INFO: ", flags),
		warn:     log.New(os.Stderr, "WARN: ", flags),
		error:    log.New(os.Stderr, "ERROR: ", flags),
		combined: os.Stdout,
	}
}

func NewWithWriter(writer io.Writer) *Logger {
	return &Logger{
		level:    LevelDebug,
		debug:    log.New(writer, "DEBUG: ", flags),
		info:     log.New(writer, "INFO: ", flags),
		warn:     log.New(writer, "WARN: ", flags),
		error:    log.New(writer, "ERROR: ", flags),
		combined: writer,
	}
}

// NewFileLogger writes every line to stdout and <dir>/combined.log, and
// warnings and errors additionally to <dir>/error.log.
func NewFileLogger(dir string, level Level) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	combinedFile, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open combined.log: %w", err)
	}
	errorFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		combinedFile.Close()
		return nil, fmt.Errorf("open error.log: %w", err)
	}

	return newLeveled(
		level,
		io.MultiWriter(os.Stdout, combinedFile),
		io.MultiWriter(os.Stderr, combinedFile, errorFile),
		combinedFile, errorFile,
	), nil
}

func newLeveled(level Level, out, errOut io.Writer, closers ...io.Closer) *Logger {
	return &Logger{
		level:    level,
		debug:    log.New(out, "DEBUG: ", flags),
		info:     log.New(out, "INFO: ", flags),
		warn:     log.New(errOut, "WARN: ", flags),
		error:    log.New(errOut, "ERROR: ", flags),
		combined: out,
		closers:  closers,
	}
}

// SetLevel drops messages below level.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Writer is the combined sink, used to route the HTTP access log.
func (l *Logger) Writer() io.Writer {
	return l.combined
}

func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *Logger) Debug(v ...interface{}) {
	if l.level <= LevelDebug {
		l.debug.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level <= LevelDebug {
		l.debug.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Info(v ...interface{}) {
	if l.level <= LevelInfo {
		l.info.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level <= LevelInfo {
		l.info.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Warn(v ...interface{}) {
	if l.level <= LevelWarn {
		l.warn.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level <= LevelWarn {
		l.warn.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Error(v ...interface{}) {
	l.error.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.error.Output(2, fmt.Sprintf(format, v...))
}
