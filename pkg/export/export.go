// Package export renders analysis results as JSON, YAML or CBOR documents.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"gcode-inspect/pkg/errors"
	"gcode-inspect/pkg/gcode"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the accepted names, for flag help.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat maps a user supplied name to a Format. "yml" is accepted as
// YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", errors.ExportFormatError(name)
}

// ContentType returns the media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCBOR:
		return "application/cbor"
	default:
		return "application/json"
	}
}

// Report is the document written for one program.
type Report struct {
	Source        string              `json:"source" yaml:"source" cbor:"source"`
	Lines         int                 `json:"lines" yaml:"lines" cbor:"lines"`
	ToolChanges   []gcode.ToolChange  `json:"tool_changes" yaml:"tool_changes" cbor:"tool_changes"`
	Retractions   []gcode.Retraction  `json:"retractions" yaml:"retractions" cbor:"retractions"`
	HeightGroups  []gcode.HeightGroup `json:"height_groups" yaml:"height_groups" cbor:"height_groups"`
	Primary       *gcode.HeightGroup  `json:"primary" yaml:"primary" cbor:"primary"`
	ToolPaths     gcode.ToolPaths     `json:"tool_paths,omitempty" yaml:"tool_paths,omitempty" cbor:"tool_paths,omitempty"`
	RapidSegments gcode.RapidSegments `json:"rapid_segments,omitempty" yaml:"rapid_segments,omitempty" cbor:"rapid_segments,omitempty"`
}

// Geometry is the path-only document served by the API.
type Geometry struct {
	ToolPaths     gcode.ToolPaths     `json:"tool_paths" yaml:"tool_paths" cbor:"tool_paths"`
	RapidSegments gcode.RapidSegments `json:"rapid_segments" yaml:"rapid_segments" cbor:"rapid_segments"`
}

// NewReport collects the results of a. a is parsed if it has not been.
// Paths and rapid segments are only included when withGeometry is set.
func NewReport(name string, a *gcode.Analyzer, withGeometry bool) Report {
	if !a.Parsed() {
		a.Parse()
	}
	r := Report{
		Source:       name,
		Lines:        len(a.Lines()),
		ToolChanges:  nonNil(a.ToolChanges()),
		Retractions:  nonNil(a.Retractions()),
		HeightGroups: nonNil(a.HeightGroups()),
	}
	if primary, ok := a.PrimaryHeight(); ok {
		r.Primary = &primary
	}
	if withGeometry {
		r.ToolPaths = a.ToolPaths()
		r.RapidSegments = a.RapidSegments()
	}
	return r
}

// NewGeometry collects the paths and rapid segments of a.
func NewGeometry(a *gcode.Analyzer) Geometry {
	return Geometry{ToolPaths: a.ToolPaths(), RapidSegments: a.RapidSegments()}
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var cborEncMode cbor.EncMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	cborEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

// Encode writes v to w in format f. v is usually a Report or Geometry.
func Encode(w io.Writer, v any, f Format) error {
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	case FormatCBOR:
		err = cborEncMode.NewEncoder(w).Encode(v)
	default:
		return errors.ExportFormatError(string(f))
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrExportEncode, fmt.Sprintf("unable to write %s", f))
	}
	return nil
}
