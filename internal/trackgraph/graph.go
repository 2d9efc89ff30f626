package trackgraph

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Spot is a single point observation of a particle.
type Spot struct {
	ID    int64
	X     float64
	Y     float64
	Z     float64
	T     float64 // acquisition time, in the model's time units
	Frame int     // frame index, monotonic within a track
}

// DistanceTo returns the Euclidean distance between two spots.
func (s Spot) DistanceTo(o Spot) float64 {
	dx := o.X - s.X
	dy := o.Y - s.Y
	dz := o.Z - s.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Edge links two temporally adjacent spots of a track.
//
// Source and Target carry no ordering guarantee. Velocity and TimeLocation
// are computed upstream and are treated as read-only inputs.
type Edge struct {
	ID           int64
	Source       Spot
	Target       Spot
	Velocity     float64 // raw instantaneous velocity
	TimeLocation float64 // midpoint time of the link
}

// NewEdge links a and b and fills Velocity and TimeLocation the way the
// upstream edge analyzers do: distance over absolute time difference, and
// the mean of the two acquisition times.
func NewEdge(id int64, a, b Spot) Edge {
	dt := math.Abs(b.T - a.T)
	return Edge{
		ID:           id,
		Source:       a,
		Target:       b,
		Velocity:     a.DistanceTo(b) / dt,
		TimeLocation: 0.5 * (a.T + b.T),
	}
}

// Graph is the read-only view of the tracking model the analysis needs.
type Graph interface {
	// TrackIDs returns the IDs of all tracks, in ascending order.
	TrackIDs() []int64
	// TrackEdges returns the edges of a track in no particular order.
	TrackEdges(trackID int64) []Edge
	// TrackName returns a display name for the track.
	TrackName(trackID int64) string
}

// MemoryGraph is an in-memory Graph. It is safe for concurrent reads once
// populated, and AddTrack may be called concurrently with reads.
type MemoryGraph struct {
	mu     sync.RWMutex
	edges  map[int64][]Edge
	names  map[int64]string
	sorted []int64
}

// NewMemoryGraph returns an empty graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		edges: make(map[int64][]Edge),
		names: make(map[int64]string),
	}
}

// AddTrack registers a track. Adding an existing ID replaces it.
func (g *MemoryGraph) AddTrack(trackID int64, name string, edges []Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[trackID]; !ok {
		g.sorted = append(g.sorted, trackID)
		sort.Slice(g.sorted, func(i, j int) bool { return g.sorted[i] < g.sorted[j] })
	}
	cp := make([]Edge, len(edges))
	copy(cp, edges)
	g.edges[trackID] = cp
	g.names[trackID] = name
}

// TrackIDs implements Graph.
func (g *MemoryGraph) TrackIDs() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int64, len(g.sorted))
	copy(out, g.sorted)
	return out
}

// TrackEdges implements Graph. Unknown tracks have no edges.
func (g *MemoryGraph) TrackEdges(trackID int64) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src := g.edges[trackID]
	out := make([]Edge, len(src))
	copy(out, src)
	return out
}

// TrackName implements Graph. Tracks added without a name get "Track_<id>".
func (g *MemoryGraph) TrackName(trackID int64) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if name := g.names[trackID]; name != "" {
		return name
	}
	return fmt.Sprintf("Track_%d", trackID)
}

// ChainEdges links consecutive spots into edges, numbering edge IDs from
// firstID. It is the usual way to build a linear track from a spot list.
func ChainEdges(firstID int64, spots []Spot) []Edge {
	if len(spots) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(spots)-1)
	for i := 1; i < len(spots); i++ {
		edges = append(edges, NewEdge(firstID+int64(i-1), spots[i-1], spots[i]))
	}
	return edges
}
