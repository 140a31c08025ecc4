package record

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/lane-tracker/internal/evaluation"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

// schema.sql creates the run and per-frame result tables.
//
//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("record: run not found")

// Store persists tracking runs to SQLite.
type Store struct {
	db *sql.DB
}

// RunInfo describes a stored run.
type RunInfo struct {
	RunID      string          `json:"run_id"`
	Name       string          `json:"name"`
	Strategy   string          `json:"strategy"`
	Seed       uint64          `json:"seed"`
	Config     json.RawMessage `json:"config,omitempty"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at,omitempty"`
	Frames     int             `json:"frames"`

	// Tally is set when the run was scored against labels.
	Tally *evaluation.Run `json:"tally,omitempty"`
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun creates a run record and returns its id.
func (s *Store) StartRun(name string, cfg lane.Config, seed uint64) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	runID := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO tracking_runs (run_id, name, strategy, seed, config_json, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, name, string(cfg.Strategy), int64(seed), string(cfgJSON), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// RecordResult stores one frame's output. Invalid sides are stored as NULL.
func (s *Store) RecordResult(runID string, r lane.Result) error {
	l := estimateColumns(r.Left)
	rt := estimateColumns(r.Right)
	_, err := s.db.Exec(`
		INSERT INTO frame_results (
			run_id, frame,
			left_x0, left_y0, left_x1, left_y1,
			right_x0, right_y0, right_x1, right_y1,
			smoothed, left_candidates, right_candidates
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Frame,
		l[0], l[1], l[2], l[3],
		rt[0], rt[1], rt[2], rt[3],
		r.Smoothed, r.LeftCandidates, r.RightCandidates,
	)
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", r.Frame, err)
	}
	return nil
}

// FinishRun stamps the run's end time and frame count, and stores the
// evaluation tally when one is given.
func (s *Store) FinishRun(runID string, tally *evaluation.Run) error {
	var tp, fp, fn any
	if tally != nil {
		tp, fp, fn = tally.TruePositives, tally.FalsePositives, tally.FalseNegatives
	}
	res, err := s.db.Exec(`
		UPDATE tracking_runs
		SET finished_at = ?,
			frames = (SELECT COUNT(*) FROM frame_results WHERE run_id = ?),
			true_positives = ?,
			false_positives = ?,
			false_negatives = ?
		WHERE run_id = ?`,
		time.Now().UnixNano(), runID, tp, fp, fn, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// Results returns a run's frame results in frame order.
func (s *Store) Results(runID string) ([]lane.Result, error) {
	rows, err := s.db.Query(`
		SELECT frame,
		       left_x0, left_y0, left_x1, left_y1,
		       right_x0, right_y0, right_x1, right_y1,
		       smoothed, left_candidates, right_candidates
		FROM frame_results
		WHERE run_id = ?
		ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []lane.Result
	for rows.Next() {
		var r lane.Result
		var l, rt [4]sql.NullFloat64
		err := rows.Scan(&r.Frame,
			&l[0], &l[1], &l[2], &l[3],
			&rt[0], &rt[1], &rt[2], &rt[3],
			&r.Smoothed, &r.LeftCandidates, &r.RightCandidates,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Left = estimateFromColumns(l)
		r.Right = estimateFromColumns(rt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns the stored metadata for runID.
func (s *Store) Run(runID string) (*RunInfo, error) {
	row := s.db.QueryRow(`
		SELECT run_id, name, strategy, seed, config_json, started_at, finished_at, frames,
		       true_positives, false_positives, false_negatives
		FROM tracking_runs
		WHERE run_id = ?`, runID)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return info, err
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]*RunInfo, error) {
	rows, err := s.db.Query(`
		SELECT run_id, name, strategy, seed, config_json, started_at, finished_at, frames,
		       true_positives, false_positives, false_negatives
		FROM tracking_runs
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []*RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunInfo, error) {
	var info RunInfo
	var seed int64
	var cfg sql.NullString
	var finished sql.NullInt64
	var tp, fp, fn sql.NullInt64
	err := row.Scan(&info.RunID, &info.Name, &info.Strategy, &seed, &cfg,
		&info.StartedAt, &finished, &info.Frames, &tp, &fp, &fn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	info.Seed = uint64(seed)
	if cfg.Valid {
		info.Config = json.RawMessage(cfg.String)
	}
	if finished.Valid {
		info.FinishedAt = finished.Int64
	}
	if tp.Valid {
		info.Tally = &evaluation.Run{
			Name:           info.Name,
			Frames:         info.Frames,
			TruePositives:  int(tp.Int64),
			FalsePositives: int(fp.Int64),
			FalseNegatives: int(fn.Int64),
		}
	}
	return &info, nil
}

func estimateColumns(e lane.Estimate) [4]any {
	if !e.Valid {
		return [4]any{nil, nil, nil, nil}
	}
	return [4]any{e.Line.X0, e.Line.Y0, e.Line.X1, e.Line.Y1}
}

func estimateFromColumns(c [4]sql.NullFloat64) lane.Estimate {
	for _, v := range c {
		if !v.Valid {
			return lane.NoEstimate
		}
	}
	return lane.EstimateOf(lane.Seg(c[0].Float64, c[1].Float64, c[2].Float64, c[3].Float64))
}
