// Structured logging for gcode-inspect
//
// Leveled logger with:
// - structured fields (key-value pairs) per logger and per entry
// - text or JSON output
// - ANSI-coloured level prefixes on terminals
// - per-component loggers derived with WithPrefix
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DEBUG level for pass-level statistics and tracing
	DEBUG LogLevel = iota

	// INFO level for general informational messages
	INFO

	// WARN level for recoverable problems
	WARN

	// ERROR level for failures
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	// FormatText outputs human-readable text format
	FormatText OutputFormat = iota
	// FormatJSON outputs one JSON object per line
	FormatJSON
)

// ParseFormat maps "text"/"json" to an OutputFormat.
func ParseFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, true
	case "json":
		return FormatJSON, true
	}
	return FormatText, false
}

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// shared holds the state every logger derived from one root shares, so a
// level change on the root is seen by its prefixed children.
type shared struct {
	mu         sync.Mutex
	writer     io.Writer
	level      LogLevel
	timeFormat string
	colorize   bool
	outFormat  OutputFormat
	caller     bool
}

// Logger is a leveled logger with a component prefix
type Logger struct {
	*shared
	prefix string
	fields Fields
}

// Entry is a pending log line carrying extra fields
type Entry struct {
	logger *Logger
	fields Fields
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger

	ansiColors = map[LogLevel]string{
		DEBUG: "\x1b[36m",
		INFO:  "\x1b[32m",
		WARN:  "\x1b[33m",
		ERROR: "\x1b[31m",
	}
	ansiReset = "\x1b[0m"
)

// New creates a new logger writing to stderr
func New(prefix string) *Logger {
	return &Logger{
		shared: &shared{
			writer:     os.Stderr,
			level:      INFO,
			timeFormat: "2006-01-02 15:04:05.000",
			colorize:   os.Getenv("NO_COLOR") == "",
			outFormat:  FormatText,
		},
		prefix: prefix,
		fields: Fields{},
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New("")
	l.SetWriter(io.Discard)
	l.SetLevel(ERROR + 1)
	return l
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.GetLevel()
}

// SetWriter sets the output writer
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// SetColorize enables or disables colorized output
func (l *Logger) SetColorize(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = enable
}

// SetFormat sets the output format
func (l *Logger) SetFormat(format OutputFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outFormat = format
}

// SetCaller enables or disables caller info in log output
func (l *Logger) SetCaller(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caller = enable
}

// WithPrefix returns a logger sharing l's output and level under a new prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{shared: l.shared, prefix: prefix, fields: l.fields}
}

// With returns a logger that attaches fields to every message
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{shared: l.shared, prefix: l.prefix, fields: merged}
}

// WithField returns an Entry with the given field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

// WithFields returns an Entry with the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{logger: l, fields: fields}
}

// WithError returns an Entry with the error field set
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) formatText(level LogLevel, msg string, fields Fields, caller string) string {
	var sb strings.Builder

	sb.WriteString(time.Now().Format(l.timeFormat))
	sb.WriteString(" [")
	sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	sb.WriteString("] ")

	if l.colorize {
		sb.WriteString(ansiColors[level])
	}
	sb.WriteString(l.prefix)
	if l.colorize {
		sb.WriteString(ansiReset)
	}
	sb.WriteString(": ")
	sb.WriteString(msg)

	if caller != "" {
		sb.WriteString(" (")
		sb.WriteString(caller)
		sb.WriteString(")")
	}

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(fmt.Sprintf("%v", fields[k]))
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return sb.String()
}

// JSONLogEntry is the structure for JSON formatted log entries
type JSONLogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *Logger) formatJSON(level LogLevel, msg string, fields Fields, caller string) string {
	entry := JSONLogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Logger:    l.prefix,
		Message:   msg,
		Caller:    caller,
	}
	if len(fields) > 0 {
		entry.Fields = fields
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log entry: %v"}`+"\n", err)
	}
	return string(data) + "\n"
}

// logInternal is the single write path; callerSkip counts frames above it.
func (l *Logger) logInternal(level LogLevel, msg string, extra Fields, callerSkip int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	fields := l.fields
	if len(extra) > 0 {
		fields = make(Fields, len(l.fields)+len(extra))
		for k, v := range l.fields {
			fields[k] = v
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	caller := ""
	if l.caller {
		caller = getCaller(callerSkip + 1)
	}

	var out string
	if l.outFormat == FormatJSON {
		out = l.formatJSON(level, msg, fields, caller)
	} else {
		out = l.formatText(level, msg, fields, caller)
	}
	fmt.Fprint(l.writer, out)
}

func (l *Logger) logf(level LogLevel, msg string, args []interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logInternal(level, msg, nil, 3)
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...interface{}) { l.logf(DEBUG, msg, args) }

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) { l.logf(INFO, msg, args) }

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) { l.logf(WARN, msg, args) }

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) { l.logf(ERROR, msg, args) }

// Entry methods

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.WithFields(Fields{key: value})
}

// WithFields adds multiple fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

// WithError adds an error field to the entry
func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

// Debug logs at DEBUG level with fields
func (e *Entry) Debug(msg string) { e.logger.logInternal(DEBUG, msg, e.fields, 2) }

// Info logs at INFO level with fields
func (e *Entry) Info(msg string) { e.logger.logInternal(INFO, msg, e.fields, 2) }

// Warn logs at WARN level with fields
func (e *Entry) Warn(msg string) { e.logger.logInternal(WARN, msg, e.fields, 2) }

// Error logs at ERROR level with fields
func (e *Entry) Error(msg string) { e.logger.logInternal(ERROR, msg, e.fields, 2) }

// Package-level functions using the default logger

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// GetLogger returns a component logger derived from the default logger
func GetLogger(prefix string) *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("gcode")
		ConfigureFromEnv(defaultLogger)
	}
	return defaultLogger.WithPrefix(prefix)
}

// ConfigureFromEnv applies environment-based configuration to the logger.
// Environment variables:
//   - GCODE_LOG_LEVEL: DEBUG, INFO, WARN, ERROR
//   - GCODE_LOG_FORMAT: text, json
//   - GCODE_LOG_CALLER: any non-empty value enables caller info
//   - NO_COLOR: any non-empty value disables colors
//
// Colors are also disabled when stderr is not a terminal.
func ConfigureFromEnv(l *Logger) {
	if levelStr := os.Getenv("GCODE_LOG_LEVEL"); levelStr != "" {
		l.SetLevel(ParseLevel(levelStr))
	}
	if formatStr := os.Getenv("GCODE_LOG_FORMAT"); formatStr != "" {
		if f, ok := ParseFormat(formatStr); ok {
			l.SetFormat(f)
		}
	}
	if os.Getenv("GCODE_LOG_CALLER") != "" {
		l.SetCaller(true)
	}
	if os.Getenv("NO_COLOR") != "" || !IsTerminal(os.Stderr.Fd()) {
		l.SetColorize(false)
	}
}
