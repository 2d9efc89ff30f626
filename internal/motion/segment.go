package motion

import "fmt"

// MotionType tags an edge or a segment. The numeric values are what gets
// stored in the MOVEMENT_TYPE edge feature.
type MotionType int

const (
	Pausing MotionType = 0
	Running MotionType = 1
)

func (m MotionType) String() string {
	switch m {
	case Pausing:
		return "PAUSE"
	case Running:
		return "RUN"
	default:
		return fmt.Sprintf("MotionType(%d)", int(m))
	}
}

// Segment is a contiguous, time-ordered stretch of a track's edges sharing
// one tag. Segments returned by Segmenter always hold at least one edge.
type Segment struct {
	Type  MotionType
	Edges []DirectedEdge
}

// Len returns the number of edges in the segment.
func (s Segment) Len() int { return len(s.Edges) }

// Start is the time location of the first edge.
func (s Segment) Start() float64 {
	if len(s.Edges) == 0 {
		return 0
	}
	return s.Edges[0].TimeLocation
}

// End is the time location of the last edge.
func (s Segment) End() float64 {
	if len(s.Edges) == 0 {
		return 0
	}
	return s.Edges[len(s.Edges)-1].TimeLocation
}

// Duration is End - Start.
func (s Segment) Duration() float64 { return s.End() - s.Start() }

// Displacement is the straight-line distance from the earliest spot of the
// first edge to the latest spot of the last edge.
func (s Segment) Displacement() float64 {
	if len(s.Edges) == 0 {
		return 0
	}
	return s.Edges[0].Earlier.DistanceTo(s.Edges[len(s.Edges)-1].Later)
}

// Elapsed is the acquisition-time span covered by the segment's spots.
func (s Segment) Elapsed() float64 {
	if len(s.Edges) == 0 {
		return 0
	}
	return s.Edges[len(s.Edges)-1].Later.T - s.Edges[0].Earlier.T
}

func (s Segment) String() string {
	return fmt.Sprintf("%s:%d", s.Type, len(s.Edges))
}
