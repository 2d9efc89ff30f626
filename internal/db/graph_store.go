package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// GraphStore persists track graphs and serves them back as a
// trackgraph.Graph once Load has been called.
type GraphStore struct {
	*trackgraph.MemoryGraph
	db *DB
}

// NewGraphStore creates a GraphStore. The embedded graph is empty until Load.
func NewGraphStore(db *DB) *GraphStore {
	return &GraphStore{MemoryGraph: trackgraph.NewMemoryGraph(), db: db}
}

// InsertTrack stores a track with its spots and edges, replacing any
// previous version of the same track.
func (s *GraphStore) InsertTrack(ctx context.Context, trackID int64, name string, edges []trackgraph.Edge) error {
	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (track_id, name) VALUES (?, ?)
			ON CONFLICT(track_id) DO UPDATE SET name = excluded.name`,
			trackID, name,
		); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", trackID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE track_id = ?`, trackID); err != nil {
			return fmt.Errorf("failed to clear edges of track %d: %w", trackID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE track_id = ?`, trackID); err != nil {
			return fmt.Errorf("failed to clear spots of track %d: %w", trackID, err)
		}

		for _, e := range edges {
			for _, sp := range [2]trackgraph.Spot{e.Source, e.Target} {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO spots (spot_id, track_id, x, y, z, t, frame)
					VALUES (?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(spot_id) DO UPDATE SET
						track_id = excluded.track_id, x = excluded.x, y = excluded.y,
						z = excluded.z, t = excluded.t, frame = excluded.frame`,
					sp.ID, trackID, sp.X, sp.Y, sp.Z, sp.T, sp.Frame,
				); err != nil {
					return fmt.Errorf("failed to insert spot %d: %w", sp.ID, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO edges (edge_id, track_id, source_spot_id, target_spot_id, velocity, time_location)
				VALUES (?, ?, ?, ?, ?, ?)`,
				e.ID, trackID, e.Source.ID, e.Target.ID, nullFloat(e.Velocity), e.TimeLocation,
			); err != nil {
				return fmt.Errorf("failed to insert edge %d: %w", e.ID, err)
			}
		}
		return tx.Commit()
	})
}

// Load reads every stored track into the embedded graph.
func (s *GraphStore) Load(ctx context.Context) error {
	names, err := s.trackNames(ctx)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.edge_id, e.track_id, e.velocity, e.time_location,
			a.spot_id, a.x, a.y, a.z, a.t, a.frame,
			b.spot_id, b.x, b.y, b.z, b.t, b.frame
		FROM edges e
		JOIN spots a ON a.spot_id = e.source_spot_id
		JOIN spots b ON b.spot_id = e.target_spot_id
		ORDER BY e.track_id, e.edge_id`)
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := make(map[int64][]trackgraph.Edge, len(names))
	for rows.Next() {
		var (
			e        trackgraph.Edge
			trackID  int64
			velocity sql.NullFloat64
		)
		if err := rows.Scan(
			&e.ID, &trackID, &velocity, &e.TimeLocation,
			&e.Source.ID, &e.Source.X, &e.Source.Y, &e.Source.Z, &e.Source.T, &e.Source.Frame,
			&e.Target.ID, &e.Target.X, &e.Target.Y, &e.Target.Z, &e.Target.T, &e.Target.Frame,
		); err != nil {
			return fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Velocity = floatOrNaN(velocity)
		edges[trackID] = append(edges[trackID], e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate edges: %w", err)
	}

	g := trackgraph.NewMemoryGraph()
	for id, name := range names {
		g.AddTrack(id, name, edges[id])
	}
	s.MemoryGraph = g
	return nil
}

func (s *GraphStore) trackNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, name FROM tracks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
