package motion

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// literalParams classifies trackFromPattern edges exactly as written:
// RUN edges move at speed 1, PAUSE edges at speed 0.
func literalParams(minFrames int) Params {
	return Params{
		VelocityThreshold:    0.5,
		MinConsecutiveFrames: minFrames,
		SmoothingWindow:      0,
		Formula:              Euclidean,
	}
}

// trackFromPattern builds a linear track from a pattern like "R5 P4 R2".
// Spots sit one time unit and one frame apart; RUN edges step +1 in x.
// Every other edge is stored with reversed endpoints and the slice is
// shuffled, so callers exercise ordering and direction recovery.
func trackFromPattern(t *testing.T, pattern string) []trackgraph.Edge {
	t.Helper()

	spots := []trackgraph.Spot{{ID: 0}}
	x := 0.0
	for _, tok := range strings.Fields(pattern) {
		n, err := strconv.Atoi(tok[1:])
		require.NoError(t, err, "bad token %q", tok)
		step := 0.0
		switch tok[0] {
		case 'R':
			step = 1
		case 'P':
		default:
			t.Fatalf("bad token %q", tok)
		}
		for k := 0; k < n; k++ {
			x += step
			f := len(spots)
			spots = append(spots, trackgraph.Spot{ID: int64(f), X: x, T: float64(f), Frame: f})
		}
	}

	edges := trackgraph.ChainEdges(1000, spots)
	for i := range edges {
		if i%2 == 1 {
			edges[i].Source, edges[i].Target = edges[i].Target, edges[i].Source
		}
	}
	rng := rand.New(rand.NewSource(int64(len(edges))))
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	return edges
}

func layout(segments []Segment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.String()
	}
	return out
}

func segmentPattern(t *testing.T, p Params, pattern string) []Segment {
	t.Helper()
	segs, _ := NewSegmenter(p).Segment(Sample(trackFromPattern(t, pattern)))
	return segs
}

type recordingSink struct {
	calls []int64
	err   error
}

func (s *recordingSink) WriteTrackResult(_ context.Context, r *TrackResult) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, r.TrackID)
	return nil
}
