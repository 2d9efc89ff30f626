package motion

import (
	"math"
)

// Segmenter turns the samples of one track into RUN and PAUSE segments.
// It holds no per-track state and may be shared between goroutines.
type Segmenter struct {
	params Params
}

// NewSegmenter returns a Segmenter for p. p is expected to have passed
// Validate.
func NewSegmenter(p Params) *Segmenter {
	return &Segmenter{params: p}
}

// Velocities smooths the displacement series and returns one speed per
// edge. Elapsed time is not smoothed.
func (s *Segmenter) Velocities(samples Samples) []float64 {
	sm := SmoothAll(s.params.SmoothingWindow, samples.DX, samples.DY, samples.DZ)
	dx, dy, dz := sm[0], sm[1], sm[2]

	v := make([]float64, samples.Len())
	for i := range v {
		sq := dx[i]*dx[i] + dy[i]*dy[i]
		if s.params.Formula == LegacyDzDx {
			sq += dz[i] * dx[i]
		} else {
			sq += dz[i] * dz[i]
		}
		v[i] = math.Sqrt(sq) / samples.DT[i]
	}
	return v
}

// Classify tags each velocity. NaN never falls below the threshold, so it
// reads as RUN.
func (s *Segmenter) Classify(velocities []float64) []MotionType {
	out := make([]MotionType, len(velocities))
	for i, v := range velocities {
		if v < s.params.VelocityThreshold {
			out[i] = Pausing
		} else {
			out[i] = Running
		}
	}
	return out
}

// Segment runs the full segmentation of one track and returns its segments
// together with the smoothed per-edge velocities, indexed like
// samples.Edges.
func (s *Segmenter) Segment(samples Samples) ([]Segment, []float64) {
	velocities := s.Velocities(samples)
	if samples.Len() == 0 {
		return nil, velocities
	}

	classes := s.Classify(velocities)
	var spans []span
	if len(classes) <= s.params.MinConsecutiveFrames {
		spans = []span{{typ: s.majority(classes, velocities), from: 0, to: len(classes)}}
	} else {
		spans = splitRuns(classes, s.params.MinConsecutiveFrames)
	}

	segments := make([]Segment, len(spans))
	for i, sp := range spans {
		segments[i] = Segment{Type: sp.typ, Edges: samples.Edges[sp.from:sp.to:sp.to]}
	}
	return segments, velocities
}

// majority tags a track too short to segment. Ties go to the mean speed.
func (s *Segmenter) majority(classes []MotionType, velocities []float64) MotionType {
	var pauses int
	for _, c := range classes {
		if c == Pausing {
			pauses++
		}
	}
	runs := len(classes) - pauses
	switch {
	case pauses > runs:
		return Pausing
	case runs > pauses:
		return Running
	}
	var sum float64
	for _, v := range velocities {
		sum += v
	}
	if sum/float64(len(velocities)) < s.params.VelocityThreshold {
		return Pausing
	}
	return Running
}

// span is the half-open edge range [from, to) of a segment.
type span struct {
	typ      MotionType
	from, to int
}

// splitRuns is the run-length filter. A stretch is only committed when it
// is longer than minLen at the moment the class changes; otherwise it is
// folded into the stretch that follows and its length keeps counting. The
// trailing stretch is committed when long enough and otherwise absorbed by
// the last committed segment. Committing a stretch with the same tag as the
// previous segment extends that segment.
func splitRuns(classes []MotionType, minLen int) []span {
	var spans []span
	commit := func(sp span) {
		if last := len(spans) - 1; last >= 0 && spans[last].typ == sp.typ {
			spans[last].to = sp.to
			return
		}
		spans = append(spans, sp)
	}

	cur := classes[0]
	start, count := 0, 0
	for i, c := range classes {
		if c != cur {
			if count > minLen {
				commit(span{typ: cur, from: start, to: i})
				start, count = i, 0
			}
			cur = c
		}
		count++
	}

	if count > minLen || len(spans) == 0 {
		commit(span{typ: cur, from: start, to: len(classes)})
	} else {
		spans[len(spans)-1].to = len(classes)
	}
	return spans
}
