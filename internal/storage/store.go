package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/san-kum/isingsim/internal/sweep"
)

// ErrRunNotFound is returned by Load and LoadPoints for an unknown id.
var ErrRunNotFound = errors.New("storage: run not found")

// Store archives completed sweeps in a single SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

type RunMetadata struct {
	ID           string
	Timestamp    time.Time
	Size         int
	T0           float64
	Tf           float64
	Steps        int
	EvolveSteps  int
	AverageSteps int
	Workers      int
	Seed         int64
	Elapsed      time.Duration
	Output       string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_ns    INTEGER NOT NULL,
	size          INTEGER NOT NULL,
	t0            REAL NOT NULL,
	tf            REAL NOT NULL,
	steps         INTEGER NOT NULL,
	evolve_steps  INTEGER NOT NULL,
	average_steps INTEGER NOT NULL,
	workers       INTEGER NOT NULL,
	seed          INTEGER NOT NULL,
	elapsed_ns    INTEGER NOT NULL,
	output        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS points (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	idx         INTEGER NOT NULL,
	temperature REAL NOT NULL,
	energy      REAL NOT NULL,
	m_rms       REAL NOT NULL,
	worker      INTEGER NOT NULL,
	elapsed_ns  INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
);`

// Open creates the database and its parent directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// Save writes the run and all of its points in one transaction and returns
// the run id. An empty meta.ID is filled in from the clock.
func (s *Store) Save(ctx context.Context, meta RunMetadata, results []sweep.Result) (id string, retErr error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("sweep_%d", meta.Timestamp.UnixNano())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs
		(id, created_ns, size, t0, tf, steps, evolve_steps, average_steps, workers, seed, elapsed_ns, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Timestamp.UnixNano(), meta.Size, meta.T0, meta.Tf, meta.Steps,
		meta.EvolveSteps, meta.AverageSteps, meta.Workers, meta.Seed, int64(meta.Elapsed), meta.Output,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points
		(run_id, idx, temperature, energy, m_rms, worker, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare points: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, meta.ID, r.Index, r.Temperature, r.Energy,
			r.MagnetizationRMS, r.Worker, int64(r.Elapsed)); err != nil {
			return "", fmt.Errorf("insert point %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return meta.ID, nil
}

const runColumns = `id, created_ns, size, t0, tf, steps, evolve_steps, average_steps, workers, seed, elapsed_ns, output`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunMetadata, error) {
	var (
		meta      RunMetadata
		createdNs int64
		elapsedNs int64
	)
	err := row.Scan(&meta.ID, &createdNs, &meta.Size, &meta.T0, &meta.Tf, &meta.Steps,
		&meta.EvolveSteps, &meta.AverageSteps, &meta.Workers, &meta.Seed, &elapsedNs, &meta.Output)
	if err != nil {
		return RunMetadata{}, err
	}
	meta.Timestamp = time.Unix(0, createdNs)
	meta.Elapsed = time.Duration(elapsedNs)
	return meta, nil
}

// List returns every archived run, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(ctx context.Context, id string) (*RunMetadata, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return &meta, nil
}

// LoadPoints returns the points of a run in ladder order.
func (s *Store) LoadPoints(ctx context.Context, id string) ([]sweep.Result, error) {
	if _, err := s.Load(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT idx, temperature, energy, m_rms, worker, elapsed_ns
		FROM points WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("select points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := make([]sweep.Result, 0)
	for rows.Next() {
		var (
			r         sweep.Result
			elapsedNs int64
		)
		if err := rows.Scan(&r.Index, &r.Temperature, &r.Energy, &r.MagnetizationRMS, &r.Worker, &elapsedNs); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		r.Elapsed = time.Duration(elapsedNs)
		points = append(points, r)
	}
	return points, rows.Err()
}
