// Structured logging tests
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	logger := New("test")
	logger.SetWriter(buf)
	logger.SetLevel(DEBUG)
	logger.SetColorize(false)
	return logger
}

func TestLoggerBasic(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("parsed %d lines", 12)

	output := buf.String()
	if !strings.Contains(output, "[INFO ]") {
		t.Errorf("expected INFO level, got: %s", output)
	}
	if !strings.Contains(output, "test:") {
		t.Errorf("expected prefix 'test:', got: %s", output)
	}
	if !strings.Contains(output, "parsed 12 lines") {
		t.Errorf("expected formatted message, got: %s", output)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetLevel(INFO)

	logger.Debug("debug message")
	if buf.Len() != 0 {
		t.Errorf("expected DEBUG to be filtered, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("expected WARN to pass, got: %s", buf.String())
	}
	if logger.Enabled(DEBUG) {
		t.Errorf("DEBUG should not be enabled at INFO")
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetFormat(FormatJSON)

	logger.WithField("tool", "6").Info("tool change")

	var entry JSONLogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v, output: %s", err, buf.String())
	}
	if entry.Level != "INFO" || entry.Logger != "test" || entry.Message != "tool change" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["tool"] != "6" {
		t.Errorf("expected field tool=6, got: %v", entry.Fields)
	}
}

func TestLoggerWithFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.WithFields(Fields{"b": 2, "a": 1}).Info("fields")

	if !strings.Contains(buf.String(), "{a=1, b=2}") {
		t.Errorf("expected sorted fields, got: %s", buf.String())
	}
}

func TestLoggerWithPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With(Fields{"source": "part.nc"})

	logger.WithError(errors.New("boom")).Error("failed")

	output := buf.String()
	if !strings.Contains(output, "source=part.nc") || !strings.Contains(output, "error=boom") {
		t.Errorf("expected persistent and entry fields, got: %s", output)
	}
}

func TestWithPrefixSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := newTestLogger(&buf)
	child := root.WithPrefix("api")

	root.SetLevel(ERROR)
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("child should follow root level, got: %s", buf.String())
	}

	child.Error("shown")
	if !strings.Contains(buf.String(), "api:") {
		t.Errorf("expected child prefix, got: %s", buf.String())
	}
}

func TestLoggerCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetCaller(true)

	logger.Info("where")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("expected caller file, got: %s", buf.String())
	}

	buf.Reset()
	logger.WithField("k", 1).Info("entry where")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("expected caller file for entry, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
		{"bogus", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat("JSON"); !ok || f != FormatJSON {
		t.Errorf("expected json format")
	}
	if _, ok := ParseFormat("xml"); ok {
		t.Errorf("expected xml to be rejected")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(ERROR) {
		t.Errorf("discard logger should not enable ERROR")
	}
	l.Error("nothing")
}

func TestGetLogger(t *testing.T) {
	SetDefaultLogger(New("root"))
	l := GetLogger("cli")
	if l.prefix != "cli" {
		t.Errorf("expected prefix cli, got %s", l.prefix)
	}
	SetDefaultLogger(nil)
}

func TestIsTerminalRegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f.Fd()) {
		t.Error("a regular file is not a terminal")
	}
}

func BenchmarkLoggerText(b *testing.B) {
	logger := New("bench")
	logger.SetWriter(io.Discard)
	logger.SetColorize(false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("line %d", i)
	}
}

func BenchmarkLoggerFiltered(b *testing.B) {
	logger := New("bench")
	logger.SetWriter(io.Discard)
	logger.SetLevel(ERROR)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("filtered %d", i)
	}
}
