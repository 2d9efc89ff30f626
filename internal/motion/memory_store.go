package motion

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a ResultSink that keeps results in memory, keyed by track.
type MemoryStore struct {
	mu      sync.Mutex
	results map[int64]*TrackResult
	order   []int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[int64]*TrackResult)}
}

// WriteTrackResult implements ResultSink.
func (s *MemoryStore) WriteTrackResult(ctx context.Context, r *TrackResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.TrackID]; !ok {
		s.order = append(s.order, r.TrackID)
	}
	s.results[r.TrackID] = r
	return nil
}

// Result returns the result stored for a track.
func (s *MemoryStore) Result(trackID int64) (*TrackResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[trackID]
	return r, ok
}

// WriteOrder returns track IDs in the order they were first written.
func (s *MemoryStore) WriteOrder() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// TrackFeature looks up one track feature.
func (s *MemoryStore) TrackFeature(trackID int64, key string) (float64, bool) {
	r, ok := s.Result(trackID)
	if !ok {
		return 0, false
	}
	v, ok := r.TrackFeatureMap()[key]
	return v, ok
}

// EdgeFeature looks up one edge feature across all stored tracks.
func (s *MemoryStore) EdgeFeature(edgeID int64, key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		for _, l := range r.Edges {
			if l.EdgeID == edgeID {
				v, ok := l.FeatureMap()[key]
				return v, ok
			}
		}
	}
	return 0, false
}

// TrackIDs returns the stored track IDs in ascending order.
func (s *MemoryStore) TrackIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
