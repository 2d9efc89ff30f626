package motion

import (
	"context"
	"time"
)

// Track feature keys.
const (
	NumberOfPauses         = "NUMBER_OF_PAUSES"
	PauseMeanDuration      = "PAUSE_MEAN_DURATION"
	MeanVelocityNoPauses   = "MEAN_VELOCITY_NO_PAUSES"
	LinearVelocityNoPauses = "LINEAR_VELOCITY_NO_PAUSES"
	NSpotsInRuns           = "N_SPOTS_IN_RUNS"
	TrackLinearVelocity    = "TRACK_LINEAR_VELOCITY"
)

// Edge feature keys.
const (
	MovementType     = "MOVEMENT_TYPE"
	SmoothedVelocity = "SMOOTHED_VELOCITY"
)

// Dimension is the physical quantity a feature is expressed in.
type Dimension string

const (
	DimensionNone     Dimension = "NONE"
	DimensionTime     Dimension = "TIME"
	DimensionVelocity Dimension = "VELOCITY"
)

// FeatureInfo describes a feature for display.
type FeatureInfo struct {
	Key       string
	Name      string
	ShortName string
	Dimension Dimension
	IsInt     bool
}

// TrackFeatures lists the track features in display order.
var TrackFeatures = []FeatureInfo{
	{Key: NumberOfPauses, Name: "Number of pauses", ShortName: "N pauses", Dimension: DimensionNone, IsInt: true},
	{Key: PauseMeanDuration, Name: "Mean pause duration", ShortName: "Pause duration", Dimension: DimensionTime},
	{Key: MeanVelocityNoPauses, Name: "Mean velocity w/o pauses", ShortName: "Mean V. w/o pauses", Dimension: DimensionVelocity},
	{Key: LinearVelocityNoPauses, Name: "Linear velocity w/o pauses", ShortName: "Linear V. w/o pauses", Dimension: DimensionVelocity},
	{Key: NSpotsInRuns, Name: "N spots in run segments", ShortName: "N spots in runs", Dimension: DimensionNone, IsInt: true},
	{Key: TrackLinearVelocity, Name: "Track linear velocity", ShortName: "Lin. V.", Dimension: DimensionVelocity},
}

// EdgeFeatures lists the edge features in display order.
var EdgeFeatures = []FeatureInfo{
	{Key: MovementType, Name: "Movement type", ShortName: "Mvt type", Dimension: DimensionNone, IsInt: true},
	{Key: SmoothedVelocity, Name: "Smoothed velocity", ShortName: "Smoothed V", Dimension: DimensionVelocity},
}

// TrackStats are the per-track statistics. Undefined values are NaN.
type TrackStats struct {
	NumberOfPauses         int
	NumberOfRuns           int
	PauseMeanDuration      float64
	MeanVelocityNoPauses   float64
	LinearVelocityNoPauses float64
	NSpotsInRuns           int
	TrackLinearVelocity    float64
}

// EdgeLabel is the per-edge output.
type EdgeLabel struct {
	EdgeID           int64
	TimeLocation     float64
	SmoothedVelocity float64
	MovementType     MotionType
}

// FeatureMap returns the label keyed by edge feature.
func (l EdgeLabel) FeatureMap() map[string]float64 {
	return map[string]float64{
		MovementType:     float64(l.MovementType),
		SmoothedVelocity: l.SmoothedVelocity,
	}
}

// TrackResult is everything the analysis produces for one track.
type TrackResult struct {
	TrackID   int64
	TrackName string
	Stats     TrackStats
	Segments  []Segment
	Edges     []EdgeLabel // time order
	Elapsed   time.Duration
}

// TrackFeatureMap returns the statistics keyed by track feature.
func (r *TrackResult) TrackFeatureMap() map[string]float64 {
	s := r.Stats
	return map[string]float64{
		NumberOfPauses:         float64(s.NumberOfPauses),
		PauseMeanDuration:      s.PauseMeanDuration,
		MeanVelocityNoPauses:   s.MeanVelocityNoPauses,
		LinearVelocityNoPauses: s.LinearVelocityNoPauses,
		NSpotsInRuns:           float64(s.NSpotsInRuns),
		TrackLinearVelocity:    s.TrackLinearVelocity,
	}
}

// ResultSink receives finished tracks. Analyzer.Run calls it from a single
// goroutine, in ascending track ID order.
type ResultSink interface {
	WriteTrackResult(ctx context.Context, r *TrackResult) error
}
