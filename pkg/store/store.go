// Package store persists run history in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is a single build or improve invocation.
type Run struct {
	ID          string     `json:"id"`
	Idea        string     `json:"idea"`
	Archetype   string     `json:"archetype"`
	Audience    string     `json:"audience"`
	Timeline    string     `json:"timeline"`
	Status      string     `json:"status"`
	TotalTokens int        `json:"total_tokens"`
	OutputDir   string     `json:"output_dir"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Tasks is populated by GetRun.
	Tasks []TaskRecord `json:"tasks,omitempty"`
}

// TaskRecord is one executed task within a run.
type TaskRecord struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Tokens   int    `json:"tokens"`
	Error    string `json:"error,omitempty"`
}

const (
	createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id VARCHAR(64) PRIMARY KEY,
    idea TEXT NOT NULL,
    archetype VARCHAR(32) NOT NULL,
    audience TEXT,
    timeline TEXT,
    status VARCHAR(32) NOT NULL,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    output_dir TEXT,
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP
)`

	createTasksTableSQL = `
CREATE TABLE IF NOT EXISTS run_tasks (
    id VARCHAR(64) PRIMARY KEY,
    run_id VARCHAR(64) NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    status VARCHAR(32) NOT NULL,
    tokens INTEGER NOT NULL DEFAULT 0,
    error TEXT
)`

	createRunsCreatedAtIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`

	createTasksRunIDIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_run_tasks_run_id ON run_tasks(run_id)`
)

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range []string{
		createRunsTableSQL,
		createTasksTableSQL,
		createRunsCreatedAtIndexSQL,
		createTasksRunIDIndexSQL,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun inserts or updates a run. created_at is preserved on update.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run with an ID is required")
	}

	query := `
INSERT INTO runs (id, idea, archetype, audience, timeline, status, total_tokens, output_dir, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    total_tokens = excluded.total_tokens,
    output_dir = excluded.output_dir,
    completed_at = excluded.completed_at
`
	var completed any
	if run.CompletedAt != nil {
		completed = *run.CompletedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Idea, run.Archetype, run.Audience, run.Timeline,
		run.Status, run.TotalTokens, run.OutputDir, run.CreatedAt, completed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// SaveTask inserts or updates one task row of a run.
func (s *Store) SaveTask(ctx context.Context, task *TaskRecord) error {
	if task == nil || task.ID == "" || task.RunID == "" {
		return fmt.Errorf("task with ID and run ID is required")
	}

	query := `
INSERT INTO run_tasks (id, run_id, position, name, status, tokens, error)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    tokens = excluded.tokens,
    error = excluded.error
`
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.RunID, task.Position, task.Name, task.Status, task.Tokens, task.Error)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means 50.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
SELECT id, idea, archetype, audience, timeline, status, total_tokens, output_dir, created_at, completed_at
FROM runs
ORDER BY created_at DESC
LIMIT ?
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run and its tasks. Returns ErrNotFound for unknown IDs.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
SELECT id, idea, archetype, audience, timeline, status, total_tokens, output_dir, created_at, completed_at
FROM runs
WHERE id = ?
`
	row := s.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tasks, err := s.listTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Tasks = tasks
	return run, nil
}

func (s *Store) listTasks(ctx context.Context, runID string) ([]TaskRecord, error) {
	query := `
SELECT id, run_id, position, name, status, tokens, COALESCE(error, '')
FROM run_tasks
WHERE run_id = ?
ORDER BY position
`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var t TaskRecord
		if err := rows.Scan(&t.ID, &t.RunID, &t.Position, &t.Name, &t.Status, &t.Tokens, &t.Error); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var completed sql.NullTime
	err := row.Scan(&run.ID, &run.Idea, &run.Archetype, &run.Audience, &run.Timeline,
		&run.Status, &run.TotalTokens, &run.OutputDir, &run.CreatedAt, &completed)
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
