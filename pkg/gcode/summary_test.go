package gcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liftCycles(height string, n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, "G1 Z"+height, "G0 X1 Z0")
	}
	return out
}

func TestSummarizePrimaryHeight(t *testing.T) {
	src := append(liftCycles("1.0", 5), liftCycles("2.0", 2)...)
	a := FromString(program(src...))
	a.Parse()

	require.Len(t, a.Retractions(), 7)

	primary, ok := a.PrimaryHeight()
	require.True(t, ok)
	assert.Equal(t, 1.0, primary.Height)
	assert.Equal(t, 5, primary.Count)
	assert.InDelta(t, 0.714, primary.Share(7), 0.001)

	summary := a.Summarize()
	assert.Contains(t, summary, "Primary Retraction Height: 1.000")
	assert.Contains(t, summary, "Used in 5 out of 7 retractions")
	assert.Contains(t, summary, "(71.4% of all retractions)")
}

func TestSummarizeFullText(t *testing.T) {
	a := FromString(program(
		"T6 ; roughing",
		"G1 Z1",
		"G0 X5",
		"G0 X6",
		"G1 Z0",
		"G1 Z3",
		"G0 X0 Z0",
	))

	want := strings.Join([]string{
		"=== G-code Analysis Summary ===",
		"",
		"Tool Changes:",
		"Line 1: Tool T6 - T6 ; roughing",
		"",
		"Retraction Heights:",
		"Z Height: 1.000 (first on line 2)",
		"  Found in 3 movements",
		"",
		"Primary Retraction Height: 1.000",
		"  Used in 3 out of 3 retractions",
		"  (100.0% of all retractions)",
	}, "\n")
	assert.Equal(t, want, a.Summarize())
}

func TestSummarizeNothingDetected(t *testing.T) {
	a := FromString(program("G1 X1", "G1 Y1"))
	a.Parse()

	summary := a.Summarize()
	assert.Contains(t, summary, "No tool changes detected.")
	assert.Contains(t, summary, "No retractions detected.")
	assert.NotContains(t, summary, "Primary")

	_, ok := a.PrimaryHeight()
	assert.False(t, ok)
}

func TestGroupHeightsAndTies(t *testing.T) {
	groups := GroupHeights([]Retraction{
		{StartLine: 9, Height: 3},
		{StartLine: 4, Height: 1},
		{StartLine: 7, Height: 3},
		{StartLine: 2, Height: 1},
	})
	assert.Equal(t, []HeightGroup{
		{Height: 1, Count: 2, FirstLine: 4},
		{Height: 3, Count: 2, FirstLine: 9},
	}, groups)

	primary, ok := PrimaryGroup(groups)
	require.True(t, ok)
	assert.Equal(t, 1.0, primary.Height, "ties go to the lowest height")

	assert.Equal(t, 0.0, HeightGroup{Count: 3}.Share(0))
}
