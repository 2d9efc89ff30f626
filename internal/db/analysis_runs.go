package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/optofluidics/trackpause/internal/motion"
	"github.com/optofluidics/trackpause/internal/timeutil"
	"github.com/optofluidics/trackpause/internal/version"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// ErrRunNotFound is returned when no analysis run matches.
var ErrRunNotFound = errors.New("analysis run not found")

// AnalysisRun is one invocation of the analysis over a stored graph.
type AnalysisRun struct {
	RunID           string          `json:"run_id"`
	StartedAt       int64           `json:"started_at"`            // unix nanos
	FinishedAt      int64           `json:"finished_at,omitempty"` // 0 while running
	ParamsJSON      json.RawMessage `json:"params_json"`
	Version         string          `json:"version"`
	TracksProcessed int             `json:"tracks_processed"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
}

// Duration is the wall time the run took, or 0 while it is running.
func (r *AnalysisRun) Duration() time.Duration {
	if r.FinishedAt == 0 {
		return 0
	}
	return time.Duration(r.FinishedAt - r.StartedAt)
}

// Params decodes the parameters the run was started with.
func (r *AnalysisRun) Params() (motion.Params, error) {
	var rec paramsRecord
	if err := json.Unmarshal(r.ParamsJSON, &rec); err != nil {
		return motion.Params{}, fmt.Errorf("failed to decode params of run %s: %w", r.RunID, err)
	}
	formula, err := motion.ParseVelocityFormula(rec.VelocityFormula)
	if err != nil {
		return motion.Params{}, err
	}
	return motion.Params{
		VelocityThreshold:    rec.VelocityThreshold,
		MinConsecutiveFrames: rec.MinConsecutiveFrames,
		SmoothingWindow:      rec.SmoothingWindow,
		Formula:              formula,
	}, nil
}

type paramsRecord struct {
	VelocityThreshold    float64 `json:"velocity_threshold"`
	MinConsecutiveFrames int     `json:"min_consecutive_frames"`
	SmoothingWindow      int     `json:"smoothing_window"`
	VelocityFormula      string  `json:"velocity_formula"`
}

// AnalysisRunStore records analysis runs.
type AnalysisRunStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewAnalysisRunStore creates an AnalysisRunStore. A nil clock uses the
// wall clock.
func NewAnalysisRunStore(db *DB, clock timeutil.Clock) *AnalysisRunStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &AnalysisRunStore{db: db, clock: clock}
}

// StartRun records a new running analysis and returns its ID.
func (s *AnalysisRunStore) StartRun(ctx context.Context, p motion.Params) (string, error) {
	params, err := json.Marshal(paramsRecord{
		VelocityThreshold:    p.VelocityThreshold,
		MinConsecutiveFrames: p.MinConsecutiveFrames,
		SmoothingWindow:      p.SmoothingWindow,
		VelocityFormula:      p.Formula.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}

	runID := uuid.New().String()
	err = retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO analysis_runs (run_id, started_at, params_json, version, status)
			VALUES (?, ?, ?, ?, ?)`,
			runID, s.clock.Now().UnixNano(), string(params), version.String(), RunStatusRunning,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return runID, nil
}

// FinishRun marks a run finished. A nil runErr completes it; a context
// error cancels it; anything else fails it.
func (s *AnalysisRunStore) FinishRun(ctx context.Context, runID string, processed int, runErr error) error {
	status := RunStatusCompleted
	var errText sql.NullString
	if runErr != nil {
		status = RunStatusFailed
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			status = RunStatusCancelled
		}
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	var res sql.Result
	err := retryOnBusy(func() error {
		var err error
		res, err = s.db.ExecContext(ctx, `
			UPDATE analysis_runs
			SET finished_at = ?, tracks_processed = ?, status = ?, error = ?
			WHERE run_id = ?`,
			s.clock.Now().UnixNano(), processed, status, errText, runID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, params_json, version, tracks_processed, status, error`

// GetRun returns one run.
func (s *AnalysisRunStore) GetRun(ctx context.Context, runID string) (*AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// LatestRun returns the most recently started run.
func (s *AnalysisRunStore) LatestRun(ctx context.Context) (*AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM analysis_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first.
func (s *AnalysisRunStore) ListRuns(ctx context.Context, limit int) ([]*AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM analysis_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*AnalysisRun, error) {
	var (
		run        AnalysisRun
		finishedAt sql.NullInt64
		params     string
		errText    sql.NullString
	)
	if err := row.Scan(&run.RunID, &run.StartedAt, &finishedAt, &params, &run.Version,
		&run.TracksProcessed, &run.Status, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis run: %w", err)
	}
	run.FinishedAt = finishedAt.Int64
	run.ParamsJSON = json.RawMessage(params)
	run.Error = errText.String
	return &run, nil
}
