package gcode

// ToolPaths maps a tool id to the positions visited while it was active.
type ToolPaths map[string][]PathPoint

// RapidSegment is one rapid move made with Tool active.
type RapidSegment struct {
	Tool string    `json:"tool" yaml:"tool" cbor:"tool"`
	From PathPoint `json:"from" yaml:"from" cbor:"from"`
	To   PathPoint `json:"to" yaml:"to" cbor:"to"`
}

// RapidSegments maps a tool id to its rapid moves in program order.
type RapidSegments map[string][]RapidSegment

// toolCursor tracks the active tool as lines are walked in order.
type toolCursor struct {
	changes []ToolChange
	next    int
	tool    string
	active  bool
}

// due reports whether line is the next pending tool change.
func (tc *toolCursor) due(line int) bool {
	return tc.next < len(tc.changes) && tc.changes[tc.next].Line == line
}

// advance moves to the tool selected at line, if any.
func (tc *toolCursor) advance(line int) {
	if tc.due(line) {
		tc.tool = tc.changes[tc.next].Tool
		tc.active = true
		tc.next++
	}
}

// ExtractToolPaths walks the program again and splits the position stream at
// each tool change. Every command line contributes one point, including lines
// without axis words, except a tool-change line that moves no axis. A tool
// selected more than once collects all its ranges in order. Points before the
// first change go under untooledKey, or are dropped when it is empty.
func ExtractToolPaths(lines []SourceLine, changes []ToolChange, untooledKey string) ToolPaths {
	paths := ToolPaths{}
	cursor := &toolCursor{changes: changes}

	var pos Position
	var current []PathPoint
	flush := func() {
		if len(current) == 0 {
			return
		}
		switch {
		case cursor.active:
			paths[cursor.tool] = append(paths[cursor.tool], current...)
		case untooledKey != "":
			paths[untooledKey] = append(paths[untooledKey], current...)
		}
		current = nil
	}

	for _, c := range commands(lines) {
		pos = pos.Apply(c.text)
		if cursor.due(c.line.Number) {
			flush()
			cursor.advance(c.line.Number)
			// A bare selection is not a motion sample for the new tool.
			if !reAxisWord.MatchString(c.text) {
				continue
			}
		}
		current = append(current, pos.Point())
	}
	flush()
	return paths
}

// ExtractRapidSegments records, for each rapid line after the first command
// line, the move from the previous line's position to this one, under the
// tool active at that line. Rapids before any tool change are skipped.
func ExtractRapidSegments(lines []SourceLine, changes []ToolChange) RapidSegments {
	segments := RapidSegments{}
	cursor := &toolCursor{changes: changes}

	var pos Position
	var prev *Position
	for _, c := range commands(lines) {
		cursor.advance(c.line.Number)
		pos = pos.Apply(c.text)
		if IsRapid(c.text) && prev != nil && cursor.active {
			segments[cursor.tool] = append(segments[cursor.tool], RapidSegment{
				Tool: cursor.tool,
				From: prev.Point(),
				To:   pos.Point(),
			})
		}
		p := pos
		prev = &p
	}
	return segments
}

// ToolAt returns the tool active at line, given changes in line order.
func ToolAt(changes []ToolChange, line int) (string, bool) {
	tool, ok := "", false
	for _, tc := range changes {
		if line < tc.Line {
			break
		}
		tool, ok = tc.Tool, true
	}
	return tool, ok
}
