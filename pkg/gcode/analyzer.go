// Package gcode recovers tool changes, retractions and per-tool motion from
// G-code programs.
//
// The engine works on a loaded, numbered line list. Each pass (tool changes,
// retractions, paths, rapids) walks that list independently with its own
// modal position, so passes never share state and a new Analyzer never sees
// anything from a previous one.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package gcode

import (
	"time"

	"gcode-inspect/pkg/log"
)

// Analyzer holds a program and the results of its last Parse.
// It is not safe for concurrent use.
type Analyzer struct {
	lines []SourceLine
	opts  Options
	log   *log.Logger

	parsed      bool
	toolChanges []ToolChange
	retractions []Retraction
}

// New returns an Analyzer over lines. lines is retained, not copied; callers
// must not modify it afterwards.
func New(lines []SourceLine, opts ...Option) *Analyzer {
	o := buildOptions(opts)
	return &Analyzer{
		lines: lines,
		opts:  o,
		log:   o.Logger,
	}
}

// Options returns the options in effect.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Lines returns a copy of the loaded program.
func (a *Analyzer) Lines() []SourceLine {
	return append([]SourceLine(nil), a.lines...)
}

// Parse detects tool changes and retractions, replacing any earlier results.
// Running it again on the same Analyzer yields identical results.
func (a *Analyzer) Parse() {
	start := time.Now()

	a.toolChanges = DetectToolChanges(a.lines)
	raw := DetectRetractions(a.lines, a.opts.RiseThreshold)
	a.retractions = GroupRetractions(raw, a.opts.GroupTolerance)
	a.parsed = true

	if a.log.Enabled(log.DEBUG) {
		a.log.WithFields(log.Fields{
			"lines":        len(a.lines),
			"tool_changes": len(a.toolChanges),
			"retractions":  len(a.retractions),
			"elapsed":      time.Since(start).String(),
		}).Debug("parse complete")
	}
}

func (a *Analyzer) ensureParsed() {
	if !a.parsed {
		a.Parse()
	}
}

// Parsed reports whether Parse has run.
func (a *Analyzer) Parsed() bool {
	return a.parsed
}

// ToolChanges returns the detected tool changes in line order. Empty before Parse.
func (a *Analyzer) ToolChanges() []ToolChange {
	return append([]ToolChange(nil), a.toolChanges...)
}

// Retractions returns the grouped retractions in height order. Empty before Parse.
// Callers wanting line order must sort by StartLine themselves.
func (a *Analyzer) Retractions() []Retraction {
	return append([]Retraction(nil), a.retractions...)
}

// ToolAt returns the tool active at a 1-based line, parsing first if needed.
func (a *Analyzer) ToolAt(line int) (string, bool) {
	a.ensureParsed()
	return ToolAt(a.toolChanges, line)
}

// ToolPaths splits the program's positions by active tool, parsing first if
// needed so tool boundaries are known.
func (a *Analyzer) ToolPaths() ToolPaths {
	a.ensureParsed()
	return ExtractToolPaths(a.lines, a.toolChanges, a.opts.UntooledKey)
}

// RapidSegments collects rapid moves per tool, parsing first if needed.
func (a *Analyzer) RapidSegments() RapidSegments {
	a.ensureParsed()
	return ExtractRapidSegments(a.lines, a.toolChanges)
}
