// Package testutil provides shared test helpers and track fixtures.
package testutil

import (
	"fmt"
	"testing"

	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// idStride separates the spot and edge IDs of different fixture tracks so
// several tracks can share one database.
const idStride = 100000

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ParsePattern lays out the spots of fixture track trackID. See
// trackgraph.PatternSpots for the pattern syntax.
func ParsePattern(trackID int64, pattern string, speed float64) ([]trackgraph.Spot, error) {
	return trackgraph.PatternSpots(trackID*idStride, pattern, speed)
}

// PatternTrack builds the edges of a linear fixture track at unit speed.
// Odd edges are stored with reversed endpoints.
func PatternTrack(t testing.TB, trackID int64, pattern string) []trackgraph.Edge {
	t.Helper()
	spots, err := ParsePattern(trackID, pattern, 1)
	AssertNoError(t, err)
	edges := trackgraph.ChainEdges(trackID*idStride, spots)
	for i := range edges {
		if i%2 == 1 {
			edges[i].Source, edges[i].Target = edges[i].Target, edges[i].Source
		}
	}
	return edges
}

// PatternGraph builds an in-memory graph with one fixture track per entry.
func PatternGraph(t testing.TB, patterns map[int64]string) *trackgraph.MemoryGraph {
	t.Helper()
	g := trackgraph.NewMemoryGraph()
	for id, p := range patterns {
		g.AddTrack(id, fmt.Sprintf("Track_%d", id), PatternTrack(t, id, p))
	}
	return g
}
