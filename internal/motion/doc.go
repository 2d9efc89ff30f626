// Package motion splits microscopy tracks into paused and running stretches.
//
// Each track flows through four stages:
//
//	Sample -> GaussianSmooth -> Segmenter -> Aggregate
//
// Sample orders a track's edges in time and extracts displacement and
// elapsed-time series. GaussianSmooth denoises each displacement component.
// Segmenter derives a velocity per edge, classifies it against a threshold
// and absorbs stretches shorter than the minimum run length into their
// neighbours. Aggregate reduces the resulting segments to per-track
// statistics and per-edge labels.
//
// Tracks are independent. Analyzer runs them through a bounded worker pool
// and hands each TrackResult to a ResultSink from a single goroutine.
package motion
