package motion

import (
	"sort"

	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// DirectedEdge is an edge whose endpoints have been put in time order.
type DirectedEdge struct {
	ID           int64
	Earlier      trackgraph.Spot
	Later        trackgraph.Spot
	Velocity     float64 // raw, as computed upstream
	TimeLocation float64
}

// Direct orients e by frame index.
func Direct(e trackgraph.Edge) DirectedEdge {
	d := DirectedEdge{
		ID:           e.ID,
		Earlier:      e.Source,
		Later:        e.Target,
		Velocity:     e.Velocity,
		TimeLocation: e.TimeLocation,
	}
	if e.Source.Frame > e.Target.Frame {
		d.Earlier, d.Later = e.Target, e.Source
	}
	return d
}

// Samples holds the per-edge series of one track. All slices share the
// index of Edges.
type Samples struct {
	DX    []float64
	DY    []float64
	DZ    []float64
	DT    []float64
	Edges []DirectedEdge
}

// Len returns the number of edges sampled.
func (s Samples) Len() int { return len(s.Edges) }

// Sample sorts edges by time location and extracts displacement and elapsed
// time for each, later minus earlier. Equal time locations keep input order.
func Sample(edges []trackgraph.Edge) Samples {
	sorted := make([]trackgraph.Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeLocation < sorted[j].TimeLocation
	})

	n := len(sorted)
	s := Samples{
		DX:    make([]float64, n),
		DY:    make([]float64, n),
		DZ:    make([]float64, n),
		DT:    make([]float64, n),
		Edges: make([]DirectedEdge, n),
	}
	for i, e := range sorted {
		d := Direct(e)
		s.Edges[i] = d
		s.DX[i] = d.Later.X - d.Earlier.X
		s.DY[i] = d.Later.Y - d.Earlier.Y
		s.DZ[i] = d.Later.Z - d.Earlier.Z
		s.DT[i] = d.Later.T - d.Earlier.T
	}
	return s
}
