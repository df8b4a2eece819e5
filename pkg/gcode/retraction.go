package gcode

import "regexp"

// Retraction is a lift followed by rapid travel. Height is the lift height
// as detected, or the cluster mean once grouped.
type Retraction struct {
	StartLine int     `json:"line_number" yaml:"line_number" cbor:"line_number"`
	Height    float64 `json:"z_height" yaml:"z_height" cbor:"z_height"`
	StartRaw  string  `json:"line_content" yaml:"line_content" cbor:"line_content"`
	EndLine   int     `json:"end_line" yaml:"end_line" cbor:"end_line"`
	EndRaw    string  `json:"end_content" yaml:"end_content" cbor:"end_content"`
	Grouped   bool    `json:"grouped" yaml:"grouped" cbor:"grouped"`
	GroupSize int     `json:"group_size" yaml:"group_size" cbor:"group_size"`
}

var (
	// A G or M word, whitespace, then a Z word somewhere later on the line.
	reZMove = regexp.MustCompile(`[GgMm]\d+\.?\d*\s+.*[Zz][-+]?\d*\.?\d+`)
	// G0 or G00 at the start of the command, not followed by another digit.
	reRapid = regexp.MustCompile(`^[Gg]0?0(?:[^0-9.]|$)`)
)

// IsRapid reports whether a normalized command is a rapid (G0/G00) move.
func IsRapid(cmd string) bool {
	return reRapid.MatchString(cmd)
}

// IsZMove reports whether a normalized command is a G/M command carrying a Z word.
func IsZMove(cmd string) bool {
	return reZMove.MatchString(cmd)
}

type liftState int

const (
	stateNormal liftState = iota
	stateLifted
)

// retractionDetector is the per-line lift/travel state machine.
type retractionDetector struct {
	threshold float64

	state       liftState
	startLine   SourceLine
	startHeight float64
	prevZ       float64

	events []Retraction
}

// step consumes one command line whose position has already been folded.
func (d *retractionDetector) step(c command, pos Position) {
	if d.state == stateNormal && IsZMove(c.text) && pos.Z > d.prevZ+d.threshold {
		d.state = stateLifted
		d.startLine = c.line
		d.startHeight = pos.Z
	}

	// Every rapid line on a plateau emits, all sharing the same start.
	if d.state == stateLifted && IsRapid(c.text) {
		d.events = append(d.events, Retraction{
			StartLine: d.startLine.Number,
			Height:    d.startHeight,
			StartRaw:  trimmedRaw(d.startLine),
			EndLine:   c.line.Number,
			EndRaw:    trimmedRaw(c.line),
		})
		if pos.Z < d.startHeight {
			d.state = stateNormal
		}
	}

	d.prevZ = pos.Z
}

// DetectRetractions runs the lift detector over the program and returns the
// ungrouped events in detection order.
func DetectRetractions(lines []SourceLine, threshold float64) []Retraction {
	d := &retractionDetector{threshold: threshold}
	var pos Position
	for _, c := range commands(lines) {
		pos = pos.Apply(c.text)
		d.step(c, pos)
	}
	return d.events
}
