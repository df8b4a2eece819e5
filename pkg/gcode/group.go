package gcode

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GroupRetractions clusters events by height and returns new events with
// Height replaced by their cluster's mean (3 decimals) and Grouped/GroupSize
// set. The input slice is not modified.
//
// Events are stable-sorted by height; an event joins the open cluster when it
// is within tolerance of the cluster's last member, so a cluster may span more
// than tolerance overall. The result is in height order.
func GroupRetractions(events []Retraction, tolerance float64) []Retraction {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Retraction, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Height < sorted[j].Height
	})

	out := make([]Retraction, 0, len(sorted))
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && math.Abs(sorted[i].Height-sorted[i-1].Height) < tolerance {
			continue
		}
		out = append(out, closeCluster(sorted[start:i])...)
		start = i
	}
	return out
}

func closeCluster(cluster []Retraction) []Retraction {
	heights := make([]float64, len(cluster))
	for i, r := range cluster {
		heights[i] = r.Height
	}
	mean := roundTo(stat.Mean(heights, nil), 3)

	for i := range cluster {
		cluster[i].Height = mean
		cluster[i].Grouped = true
		cluster[i].GroupSize = len(cluster)
	}
	return cluster
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
