package gcode

import (
	"fmt"
	"sort"
	"strings"
)

// HeightGroup is one distinct (grouped) retraction height and how often it
// was used.
type HeightGroup struct {
	Height    float64 `json:"z_height" yaml:"z_height" cbor:"z_height"`
	Count     int     `json:"count" yaml:"count" cbor:"count"`
	FirstLine int     `json:"first_line" yaml:"first_line" cbor:"first_line"`
}

// Share is Count as a fraction of total, or 0 when total is 0.
func (g HeightGroup) Share(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(g.Count) / float64(total)
}

// GroupHeights buckets retractions by exact height, ascending. FirstLine is
// the start line of the first event in the bucket as the events are ordered.
func GroupHeights(retractions []Retraction) []HeightGroup {
	byHeight := map[float64]*HeightGroup{}
	for _, r := range retractions {
		g, ok := byHeight[r.Height]
		if !ok {
			g = &HeightGroup{Height: r.Height, FirstLine: r.StartLine}
			byHeight[r.Height] = g
		}
		g.Count++
	}

	out := make([]HeightGroup, 0, len(byHeight))
	for _, g := range byHeight {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out
}

// PrimaryGroup is the bucket with the most members; ties go to the lowest height.
func PrimaryGroup(groups []HeightGroup) (HeightGroup, bool) {
	var best HeightGroup
	found := false
	for _, g := range groups {
		if !found || g.Count > best.Count {
			best, found = g, true
		}
	}
	return best, found
}

// HeightGroups returns the distinct retraction heights of the last Parse.
func (a *Analyzer) HeightGroups() []HeightGroup {
	a.ensureParsed()
	return GroupHeights(a.retractions)
}

// PrimaryHeight returns the most used retraction height, if any.
func (a *Analyzer) PrimaryHeight() (HeightGroup, bool) {
	return PrimaryGroup(a.HeightGroups())
}

// Summarize renders a plain-text report of tool changes and retraction heights.
func (a *Analyzer) Summarize() string {
	a.ensureParsed()

	var sb strings.Builder
	sb.WriteString("=== G-code Analysis Summary ===\n")

	sb.WriteString("\nTool Changes:\n")
	if len(a.toolChanges) == 0 {
		sb.WriteString("No tool changes detected.\n")
	}
	for _, tc := range a.toolChanges {
		fmt.Fprintf(&sb, "Line %d: Tool T%s - %s\n", tc.Line, tc.Tool, tc.Raw)
	}

	sb.WriteString("\nRetraction Heights:\n")
	if len(a.retractions) == 0 {
		sb.WriteString("No retractions detected.")
		return sb.String()
	}

	groups := GroupHeights(a.retractions)
	for _, g := range groups {
		fmt.Fprintf(&sb, "Z Height: %.3f (first on line %d)\n", g.Height, g.FirstLine)
		if g.Count > 1 {
			fmt.Fprintf(&sb, "  Found in %d movements\n", g.Count)
		}
	}

	total := len(a.retractions)
	primary, _ := PrimaryGroup(groups)
	fmt.Fprintf(&sb, "\nPrimary Retraction Height: %.3f\n", primary.Height)
	fmt.Fprintf(&sb, "  Used in %d out of %d retractions\n", primary.Count, total)
	fmt.Fprintf(&sb, "  (%.1f%% of all retractions)", primary.Share(total)*100)
	return sb.String()
}
