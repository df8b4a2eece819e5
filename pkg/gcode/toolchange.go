package gcode

import "regexp"

// ToolChange is one detected tool selection.
type ToolChange struct {
	Line int    `json:"line_number" yaml:"line_number" cbor:"line_number"`
	Tool string `json:"tool_number" yaml:"tool_number" cbor:"tool_number"`
	Raw  string `json:"line_content" yaml:"line_content" cbor:"line_content"`
}

type toolPattern struct {
	name string
	re   *regexp.Regexp
}

// toolPatterns are tried in order and the first hit wins. The bare T-word
// comes first, so it also decides lines like "M6 T3" and "M61 Q5 T3"; the
// later entries only fire on lines with no T-word at all.
var toolPatterns = []toolPattern{
	{"T", regexp.MustCompile(`T(\d+)`)},
	{"M6", regexp.MustCompile(`M6\s+T(\d+)`)},
	{"M06", regexp.MustCompile(`M06\s+T(\d+)`)},
	{"M61", regexp.MustCompile(`M61\s+Q(\d+)`)},
}

// matchTool runs the pattern cascade over one normalized command.
func matchTool(cmd string) (string, bool) {
	for _, p := range toolPatterns {
		if m := p.re.FindStringSubmatch(cmd); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// DetectToolChanges returns one ToolChange per command line that selects a
// tool, in line order. Tool keeps its digits exactly as written.
func DetectToolChanges(lines []SourceLine) []ToolChange {
	var out []ToolChange
	for _, c := range commands(lines) {
		if tool, ok := matchTool(c.text); ok {
			out = append(out, ToolChange{
				Line: c.line.Number,
				Tool: tool,
				Raw:  trimmedRaw(c.line),
			})
		}
	}
	return out
}
