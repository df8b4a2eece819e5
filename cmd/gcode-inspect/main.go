// gcode-inspect reports tool changes, retraction heights and per-tool motion
// found in CNC G-code programs.
//
// Usage:
//
//	gcode-inspect [--config file] [--log-level level] <command> <file|->
//
// Commands:
//
//	summary      Human-readable report of tool changes and retraction heights
//	tools        Tool changes in line order
//	retractions  Grouped retractions in height order
//	paths        Positions visited by each tool
//	rapids       Rapid moves made by each tool
//	export       Full report as json, yaml or cbor
//	serve        HTTP API
//	config       Print the effective configuration
//
// Examples:
//
//	# Summary of a program
//	gcode-inspect summary part.nc
//
//	# YAML report including paths, from stdin
//	cat part.nc | gcode-inspect export --format yaml --geometry -
//
//	# Serve the API on a custom port
//	gcode-inspect serve --addr :9090
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
