package motion

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregate reduces a track's segments to statistics and labels every edge.
// smoothed must be indexed like the concatenated segment edges, as returned
// by Segmenter.Segment.
func Aggregate(segments []Segment, smoothed []float64) (TrackStats, []EdgeLabel) {
	var (
		stats          TrackStats
		pauseDurations []float64
		runVelocities  []float64
		runDisp        float64
		runTime        float64
		labels         []EdgeLabel
		all            []DirectedEdge
	)

	for _, seg := range segments {
		switch seg.Type {
		case Pausing:
			stats.NumberOfPauses++
			if seg.Len() > 0 {
				pauseDurations = append(pauseDurations, seg.Duration())
			}
		case Running:
			stats.NumberOfRuns++
			if seg.Len() > 0 {
				stats.NSpotsInRuns += seg.Len() + 1
				runDisp += seg.Displacement()
				runTime += seg.Elapsed()
			}
			for _, e := range seg.Edges {
				runVelocities = append(runVelocities, e.Velocity)
			}
		}

		for _, e := range seg.Edges {
			label := EdgeLabel{
				EdgeID:           e.ID,
				TimeLocation:     e.TimeLocation,
				MovementType:     seg.Type,
				SmoothedVelocity: math.NaN(),
			}
			// Every edge carries its smoothed velocity, PAUSE edges included.
			if i := len(labels); i < len(smoothed) {
				label.SmoothedVelocity = smoothed[i]
			}
			labels = append(labels, label)
		}
		all = append(all, seg.Edges...)
	}

	stats.PauseMeanDuration = math.NaN()
	if stats.NumberOfPauses > 0 {
		stats.PauseMeanDuration = floats.Sum(pauseDurations) / float64(stats.NumberOfPauses)
	}

	stats.MeanVelocityNoPauses = math.NaN()
	if len(runVelocities) > 0 {
		stats.MeanVelocityNoPauses = stat.Mean(runVelocities, nil)
	}

	stats.LinearVelocityNoPauses = math.NaN()
	if stats.NumberOfRuns > 0 {
		stats.LinearVelocityNoPauses = runDisp / runTime
	}

	stats.TrackLinearVelocity = trackLinearVelocity(all)
	return stats, labels
}

// trackLinearVelocity is the straight-line speed between the earliest and
// the latest spot of the track.
func trackLinearVelocity(edges []DirectedEdge) float64 {
	if len(edges) == 0 {
		return math.NaN()
	}
	first, last := edges[0].Earlier, edges[0].Later
	for _, e := range edges {
		if e.Earlier.T < first.T {
			first = e.Earlier
		}
		if e.Later.T < first.T {
			first = e.Later
		}
		if e.Later.T > last.T {
			last = e.Later
		}
		if e.Earlier.T > last.T {
			last = e.Earlier
		}
	}
	return first.DistanceTo(last) / (last.T - first.T)
}
