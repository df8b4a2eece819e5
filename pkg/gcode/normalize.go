package gcode

import (
	"regexp"
	"strings"
)

var reParenComment = regexp.MustCompile(`\([^)]*\)`)

// Normalize strips comments from a raw line and reports whether what is left
// is a command line. Lines that are blank, or begin with ';' or '(' once
// trimmed, are not commands and are skipped by every pass.
//
// Parenthesised comments are removed before the ';' tail, so a ';' inside
// "( ... )" does not cut the rest of the line.
func Normalize(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == ';' || line[0] == '(' {
		return "", false
	}
	line = reParenComment.ReplaceAllString(line, "")
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), true
}

// command is a normalized line still tied to its source.
type command struct {
	line SourceLine
	text string
}

// commands yields the command lines of a program in order.
func commands(lines []SourceLine) []command {
	out := make([]command, 0, len(lines))
	for _, l := range lines {
		if text, ok := Normalize(l.Text); ok {
			out = append(out, command{line: l, text: text})
		}
	}
	return out
}

// trimmedRaw is the form raw lines are reported in.
func trimmedRaw(l SourceLine) string {
	return strings.TrimSpace(l.Text)
}
