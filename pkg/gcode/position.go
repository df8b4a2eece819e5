package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// Position is the modal X/Y/Z machine position.
type Position struct {
	X, Y, Z float64
}

// PathPoint is a position sample as [x, y, z].
type PathPoint [3]float64

// Point returns p as a PathPoint.
func (p Position) Point() PathPoint {
	return PathPoint{p.X, p.Y, p.Z}
}

var reAxisWord = regexp.MustCompile(`([XxYyZz])([-+]?\d*\.?\d+)`)

// Apply folds every axis word in cmd onto p and returns the result. Axes not
// mentioned keep their value; a repeated axis takes its last value. Words
// that fail to parse are ignored.
func (p Position) Apply(cmd string) Position {
	for _, m := range reAxisWord.FindAllStringSubmatch(cmd, -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch strings.ToUpper(m[1]) {
		case "X":
			p.X = v
		case "Y":
			p.Y = v
		case "Z":
			p.Z = v
		}
	}
	return p
}

// TrackPositions returns the position after each command line, in order.
func TrackPositions(lines []SourceLine) []Position {
	cmds := commands(lines)
	out := make([]Position, len(cmds))
	var pos Position
	for i, c := range cmds {
		pos = pos.Apply(c.text)
		out[i] = pos
	}
	return out
}
