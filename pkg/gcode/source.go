// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"gcode-inspect/pkg/errors"
)

// MaxLineBytes bounds a single source line. Slicer output never comes close;
// anything longer is treated as a corrupt or binary file.
const MaxLineBytes = 1 << 20

// SourceLine is one line of the loaded program. Number is 1-based and counts
// every physical line, comments and blanks included.
type SourceLine struct {
	Number int
	Text   string
}

// ReadLines splits r into numbered source lines. A trailing newline does not
// produce an empty final line. name is only used in error messages.
func ReadLines(r io.Reader, name string) ([]SourceLine, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	var lines []SourceLine
	n := 0
	for scanner.Scan() {
		n++
		lines = append(lines, SourceLine{Number: n, Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return nil, errors.SourceTooLongError(name, n+1, MaxLineBytes)
		}
		return nil, errors.SourceReadError(name, err)
	}
	return lines, nil
}

// SplitLines numbers the lines of an in-memory program.
func SplitLines(content string) []SourceLine {
	lines, err := ReadLines(strings.NewReader(content), "<string>")
	if err != nil {
		// Only over-long lines can fail on a string reader; fall back to a
		// plain split so callers always get the whole text.
		raw := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
		lines = make([]SourceLine, len(raw))
		for i, text := range raw {
			lines[i] = SourceLine{Number: i + 1, Text: strings.TrimSuffix(text, "\r")}
		}
	}
	return lines
}

// Open loads path and returns an Analyzer over it. On failure the returned
// Analyzer is still usable: it holds no lines and every accessor yields empty
// results.
func Open(path string, opts ...Option) (*Analyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return New(nil, opts...), errors.SourceReadError(path, err)
	}
	defer f.Close()

	lines, err := ReadLines(f, path)
	if err != nil {
		return New(nil, opts...), err
	}
	return New(lines, opts...), nil
}

// FromString returns an Analyzer over an in-memory program.
func FromString(content string, opts ...Option) *Analyzer {
	return New(SplitLines(content), opts...)
}

// FromReader returns an Analyzer over everything readable from r.
func FromReader(r io.Reader, name string, opts ...Option) (*Analyzer, error) {
	lines, err := ReadLines(r, name)
	if err != nil {
		return New(nil, opts...), err
	}
	return New(lines, opts...), nil
}
