package motion

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/optofluidics/trackpause/internal/monitoring"
	"github.com/optofluidics/trackpause/internal/timeutil"
	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// Analyzer runs the pausing analysis over the tracks of a graph.
type Analyzer struct {
	params    Params
	segmenter *Segmenter
	workers   int

	// Clock times each track and each run. Defaults to the wall clock.
	Clock timeutil.Clock
	// Log receives one line per track. Defaults to monitoring.Logger().
	Log logrus.FieldLogger
}

// RunSummary describes a finished (or interrupted) Run.
type RunSummary struct {
	Tracks  int // tracks in the graph
	Written int // tracks handed to the sink
	Pauses  int
	Runs    int
	Elapsed time.Duration
}

// NewAnalyzer returns an Analyzer for p using up to workers goroutines.
// workers <= 0 means GOMAXPROCS.
func NewAnalyzer(p Params, workers int) *Analyzer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		params:    p,
		segmenter: NewSegmenter(p),
		workers:   workers,
		Clock:     timeutil.RealClock{},
		Log:       monitoring.Logger(),
	}
}

// Params returns the analyzer's parameters.
func (a *Analyzer) Params() Params { return a.params }

// ProcessTrack analyses one track. It does not validate parameters and
// never fails: undefined statistics come back as NaN.
func (a *Analyzer) ProcessTrack(trackID int64, name string, edges []trackgraph.Edge) *TrackResult {
	start := a.Clock.Now()

	samples := Sample(edges)
	segments, smoothed := a.segmenter.Segment(samples)
	stats, labels := Aggregate(segments, smoothed)

	r := &TrackResult{
		TrackID:   trackID,
		TrackName: name,
		Stats:     stats,
		Segments:  segments,
		Edges:     labels,
		Elapsed:   a.Clock.Since(start),
	}

	a.Log.WithFields(logrus.Fields{
		"track_id": trackID,
		"segments": len(segments),
	}).Info(summaryLine(name, stats.NumberOfPauses, stats.NumberOfRuns))
	return r
}

// Run validates the parameters, then analyses every track of g and hands
// each result to sink in ascending track ID order. sink may be nil.
//
// Cancellation is checked before each track starts. On cancellation Run
// returns the context error along with a summary of what was written.
func (a *Analyzer) Run(ctx context.Context, g trackgraph.Graph, sink ResultSink) (RunSummary, error) {
	if err := a.params.Validate(); err != nil {
		return RunSummary{}, err
	}
	start := a.Clock.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := g.TrackIDs()
	summary := RunSummary{Tracks: len(ids)}
	results := make([]*TrackResult, len(ids))
	done := make([]chan struct{}, len(ids))
	for i := range done {
		done[i] = make(chan struct{})
	}

	writeErr := make(chan error, 1)
	go func() {
		for i := range ids {
			<-done[i]
			r := results[i]
			if r == nil || runCtx.Err() != nil {
				break
			}
			if sink != nil {
				if err := sink.WriteTrackResult(runCtx, r); err != nil {
					cancel()
					writeErr <- fmt.Errorf("failed to write track %d: %w", r.TrackID, err)
					return
				}
			}
			summary.Written++
			summary.Pauses += r.Stats.NumberOfPauses
			summary.Runs += r.Stats.NumberOfRuns
		}
		writeErr <- nil
	}()

	var eg errgroup.Group
	eg.SetLimit(a.workers)
	scheduled := 0
	for i, id := range ids {
		if runCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			defer close(done[i])
			if runCtx.Err() != nil {
				return nil
			}
			results[i] = a.ProcessTrack(id, g.TrackName(id), g.TrackEdges(id))
			return nil
		})
		scheduled = i + 1
	}
	for i := scheduled; i < len(ids); i++ {
		close(done[i])
	}
	_ = eg.Wait()

	err := <-writeErr
	summary.Elapsed = a.Clock.Since(start)
	if err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("analysis interrupted after %d of %d tracks: %w", summary.Written, summary.Tracks, err)
	}
	return summary, nil
}

func summaryLine(name string, pauses, runs int) string {
	return fmt.Sprintf("Track %s has %s and %s.", name, plural(pauses, "pause"), plural(runs, "run"))
}

func plural(n int, word string) string {
	switch n {
	case 0:
		return "no " + word + "s"
	case 1:
		return "1 " + word
	default:
		return fmt.Sprintf("%d %ss", n, word)
	}
}
