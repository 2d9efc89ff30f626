package motion

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// Literal simulation, L = 3:
//
//	R5          commit RUN:5 on the switch to P
//	P4          commit PAUSE:4 on the switch to R
//	R2          too short, folded into the P that follows (count 2)
//	P5          count 7, committed on the switch and merged into PAUSE:4 -> PAUSE:11
//	R5          commit RUN:5 on the switch to P
//	P2          too short, folded into the R that follows (count 2)
//	R2          count 4 at end of track, committed and merged -> RUN:9
func TestSegmenter_ConcreteScenario(t *testing.T) {
	t.Parallel()

	segs := segmentPattern(t, literalParams(3), "R5 P4 R2 P5 R5 P2 R2")
	want := []string{"RUN:5", "PAUSE:11", "RUN:9"}
	if diff := cmp.Diff(want, layout(segs)); diff != "" {
		t.Errorf("segment layout mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_Layouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		min     int
		want    []string
	}{
		{"all run", "R10", 3, []string{"RUN:10"}},
		{"all pause", "P8", 2, []string{"PAUSE:8"}},
		{"short leading run folded", "R2 P10", 3, []string{"PAUSE:12"}},
		{"short trailing pause absorbed", "R5 P2", 3, []string{"RUN:7"}},
		{"alternating long runs", "P4 R4 P4", 3, []string{"PAUSE:4", "RUN:4", "PAUSE:4"}},
		{"single blip", "R4 P1 R4", 3, []string{"RUN:9"}},
		{"exactly min is too short", "R4 P3 R4", 3, []string{"RUN:11"}},
		{"one over min stands", "R4 P4 R4", 3, []string{"RUN:4", "PAUSE:4", "RUN:4"}},
		{"trailing long pause", "R6 P1 R1 P5", 3, []string{"RUN:6", "PAUSE:7"}},
		{"min one", "R2 P2 R2", 1, []string{"RUN:2", "PAUSE:2", "RUN:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			segs := segmentPattern(t, literalParams(tt.min), tt.pattern)
			if diff := cmp.Diff(tt.want, layout(segs)); diff != "" {
				t.Errorf("%s with L=%d (-want +got):\n%s", tt.pattern, tt.min, diff)
			}
		})
	}
}

func TestSegmenter_ShortTracks(t *testing.T) {
	t.Parallel()

	t.Run("majority run", func(t *testing.T) {
		t.Parallel()
		segs := segmentPattern(t, literalParams(3), "R2 P1")
		assert.Equal(t, []string{"RUN:3"}, layout(segs))
	})

	t.Run("majority pause", func(t *testing.T) {
		t.Parallel()
		segs := segmentPattern(t, literalParams(5), "P3 R1 P1")
		assert.Equal(t, []string{"PAUSE:5"}, layout(segs))
	})

	t.Run("single edge", func(t *testing.T) {
		t.Parallel()
		segs := segmentPattern(t, literalParams(3), "P1")
		assert.Equal(t, []string{"PAUSE:1"}, layout(segs))
	})

	t.Run("tie goes to mean velocity", func(t *testing.T) {
		t.Parallel()
		// Mean speed of R1 P1 is 0.5.
		p := literalParams(3)
		p.VelocityThreshold = 0.5
		assert.Equal(t, []string{"RUN:2"}, layout(segmentPattern(t, p, "R1 P1")))
		p.VelocityThreshold = 0.6
		assert.Equal(t, []string{"PAUSE:2"}, layout(segmentPattern(t, p, "R1 P1")))
	})

	t.Run("empty track", func(t *testing.T) {
		t.Parallel()
		segs, v := NewSegmenter(literalParams(3)).Segment(Sample(nil))
		assert.Empty(t, segs)
		assert.Empty(t, v)
	})
}

func TestSegmenter_VelocityFormula(t *testing.T) {
	t.Parallel()

	// dx=3, dz=4 over dt=1: Euclidean gives 5, legacy gives sqrt(9+12).
	edge := trackgraph.NewEdge(1,
		trackgraph.Spot{ID: 1, T: 0, Frame: 0},
		trackgraph.Spot{ID: 2, X: 3, Z: 4, T: 1, Frame: 1},
	)
	samples := Sample([]trackgraph.Edge{edge})

	p := literalParams(1)
	p.VelocityThreshold = 4.8

	euclid := NewSegmenter(p)
	v := euclid.Velocities(samples)
	require.Len(t, v, 1)
	assert.InDelta(t, 5.0, v[0], 1e-12)
	segs, _ := euclid.Segment(samples)
	assert.Equal(t, []string{"RUN:1"}, layout(segs))

	p.Formula = LegacyDzDx
	legacy := NewSegmenter(p)
	v = legacy.Velocities(samples)
	assert.InDelta(t, math.Sqrt(21), v[0], 1e-12)
	segs, _ = legacy.Segment(samples)
	assert.Equal(t, []string{"PAUSE:1"}, layout(segs))
}

func TestSegmenter_ClassifyNaNIsRun(t *testing.T) {
	t.Parallel()

	s := NewSegmenter(literalParams(1))
	got := s.Classify([]float64{0.1, math.NaN(), 0.9, 0.5})
	assert.Equal(t, []MotionType{Pausing, Running, Running, Running}, got)
}

func TestSegmenter_SmoothingPassThrough(t *testing.T) {
	t.Parallel()

	edges := trackFromPattern(t, "R3 P3 R3")
	samples := Sample(edges)
	v := NewSegmenter(literalParams(2)).Velocities(samples)
	for i, e := range samples.Edges {
		assert.InDelta(t, e.Velocity, v[i], 1e-12, "edge %d", e.ID)
	}
}

func randomPattern(rng *rand.Rand) string {
	var b strings.Builder
	n := 1 + rng.Intn(12)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if rng.Intn(2) == 0 {
			b.WriteByte('R')
		} else {
			b.WriteByte('P')
		}
		b.WriteString(strconv.Itoa(1 + rng.Intn(7)))
	}
	return b.String()
}

func TestSegmenter_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 300; iter++ {
		pattern := randomPattern(rng)
		p := literalParams(1 + rng.Intn(4))
		if iter%3 == 0 {
			p.SmoothingWindow = 1 + rng.Intn(4)
		}

		edges := trackFromPattern(t, pattern)
		samples := Sample(edges)
		segs, v := NewSegmenter(p).Segment(samples)
		require.Len(t, v, len(edges))

		// Partition, in time order.
		var got []int64
		for _, s := range segs {
			require.NotZero(t, s.Len(), "%s: empty segment", pattern)
			for _, e := range s.Edges {
				got = append(got, e.ID)
			}
		}
		want := make([]int64, len(edges))
		for i, e := range edges {
			want[i] = e.ID
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s (L=%d): partition mismatch (-want +got):\n%s", pattern, p.MinConsecutiveFrames, diff)
		}

		for i := 1; i < len(segs); i++ {
			assert.NotEqual(t, segs[i-1].Type, segs[i].Type, "%s: adjacent segments share a tag", pattern)
		}

		if len(segs) > 1 {
			for _, s := range segs {
				assert.Greater(t, s.Len(), p.MinConsecutiveFrames, "%s (L=%d): %v", pattern, p.MinConsecutiveFrames, layout(segs))
			}
		}

		// Determinism.
		again, v2 := NewSegmenter(p).Segment(Sample(edges))
		if diff := cmp.Diff(segs, again, cmpopts.EquateNaNs()); diff != "" {
			t.Fatalf("%s: second run differs:\n%s", pattern, diff)
		}
		if diff := cmp.Diff(v, v2, cmpopts.EquateNaNs()); diff != "" {
			t.Fatalf("%s: velocities differ:\n%s", pattern, diff)
		}
	}
}

func TestSplitRuns_SpanBounds(t *testing.T) {
	t.Parallel()

	classes := []MotionType{Running, Running, Pausing, Pausing, Pausing, Running}
	got := splitRuns(classes, 1)
	want := []span{
		{typ: Running, from: 0, to: 2},
		{typ: Pausing, from: 2, to: 6},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(span{})); diff != "" {
		t.Errorf("splitRuns mismatch (-want +got):\n%s", diff)
	}
}
