package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/optofluidics/trackpause/internal/motion"
)

// FeatureStore writes the results of one analysis run. It implements
// motion.ResultSink. Undefined (NaN) feature values are stored as NULL.
type FeatureStore struct {
	db    *DB
	runID string
}

// NewFeatureStore creates a FeatureStore writing under runID.
func NewFeatureStore(db *DB, runID string) *FeatureStore {
	return &FeatureStore{db: db, runID: runID}
}

// RunID returns the run the store writes under.
func (s *FeatureStore) RunID() string { return s.runID }

// WriteTrackResult stores the track and edge features of r in one
// transaction.
func (s *FeatureStore) WriteTrackResult(ctx context.Context, r *motion.TrackResult) error {
	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		features := r.TrackFeatureMap()
		for _, f := range motion.TrackFeatures {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO track_features (run_id, track_id, feature, value)
				VALUES (?, ?, ?, ?)`,
				s.runID, r.TrackID, f.Key, nullFloat(features[f.Key]),
			); err != nil {
				return fmt.Errorf("failed to insert %s for track %d: %w", f.Key, r.TrackID, err)
			}
		}

		for _, l := range r.Edges {
			values := l.FeatureMap()
			for _, f := range motion.EdgeFeatures {
				if _, err := tx.ExecContext(ctx, `
					INSERT OR REPLACE INTO edge_features (run_id, edge_id, track_id, feature, value)
					VALUES (?, ?, ?, ?, ?)`,
					s.runID, l.EdgeID, r.TrackID, f.Key, nullFloat(values[f.Key]),
				); err != nil {
					return fmt.Errorf("failed to insert %s for edge %d: %w", f.Key, l.EdgeID, err)
				}
			}
		}
		return tx.Commit()
	})
}

// TrackFeatures returns run's track features keyed by track ID and feature.
// NULL values come back as NaN.
func (s *FeatureStore) TrackFeatures(ctx context.Context) (map[int64]map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, feature, value FROM track_features
		WHERE run_id = ? ORDER BY track_id`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query track features: %w", err)
	}
	defer rows.Close()
	return scanFeatures(rows)
}

// EdgeFeatures returns the edge features of one track keyed by edge ID and
// feature.
func (s *FeatureStore) EdgeFeatures(ctx context.Context, trackID int64) (map[int64]map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT edge_id, feature, value FROM edge_features
		WHERE run_id = ? AND track_id = ? ORDER BY edge_id`, s.runID, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edge features: %w", err)
	}
	defer rows.Close()
	return scanFeatures(rows)
}

func scanFeatures(rows *sql.Rows) (map[int64]map[string]float64, error) {
	out := make(map[int64]map[string]float64)
	for rows.Next() {
		var (
			id      int64
			feature string
			value   sql.NullFloat64
		)
		if err := rows.Scan(&id, &feature, &value); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]float64)
		}
		out[id][feature] = floatOrNaN(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate features: %w", err)
	}
	return out, nil
}
