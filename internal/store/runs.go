package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("pipeline run not found")

// CreateRun inserts a new run in the running state and returns it.
func (s *Store) CreateRun(ctx context.Context) (*PipelineRun, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs (id, run_date, status, started_at)
         VALUES (?, ?, ?, ?)`,
		id,
		now.Format("2006-01-02"),
		RunStatusRunning,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.GetRun(ctx, id)
}

// GetRun loads a run along with its accumulated errors, oldest first.
func (s *Store) GetRun(ctx context.Context, id string) (*PipelineRun, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, run_date, status, started_at, completed_at,
               ideas_generated, scripts_generated, videos_created, videos_published
        FROM pipeline_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadRunErrors(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun returns the most recently started run, or nil when none exist.
func (s *Store) LatestRun(ctx context.Context) (*PipelineRun, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, run_date, status, started_at, completed_at,
               ideas_generated, scripts_generated, videos_created, videos_published
        FROM pipeline_runs ORDER BY started_at DESC, id DESC LIMIT 1`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadRunErrors(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally filtered by status.
// A limit of zero or less means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int, statuses ...RunStatus) ([]*PipelineRun, error) {
	query := `
        SELECT id, run_date, status, started_at, completed_at,
               ideas_generated, scripts_generated, videos_created, videos_published
        FROM pipeline_runs`
	args := make([]any, 0, len(statuses)+1)

	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for _, run := range runs {
		if err := s.loadRunErrors(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// AddRunCounters applies an additive delta to a run's progress counters.
// Deltas land only while the run is still running; updates against a
// terminal run are silently dropped so late step completions cannot
// mutate a closed record.
func (s *Store) AddRunCounters(ctx context.Context, runID string, delta CounterDelta) error {
	if delta.empty() {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
        UPDATE pipeline_runs SET
            ideas_generated = ideas_generated + ?,
            scripts_generated = scripts_generated + ?,
            videos_created = videos_created + ?,
            videos_published = videos_published + ?
        WHERE id = ? AND status = ?`,
		delta.Ideas, delta.Scripts, delta.Videos, delta.Published,
		runID, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("add run counters: %w", err)
	}
	return nil
}

// AppendRunError records a step failure message against a running run.
// Appends against a terminal run are dropped.
func (s *Store) AppendRunError(ctx context.Context, runID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO run_errors (run_id, message, created_at)
        SELECT id, ?, ? FROM pipeline_runs WHERE id = ? AND status = ?`,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("append run error: %w", err)
	}
	return nil
}

// FinishRun transitions a running run to the given terminal status and stamps
// completed_at. It reports whether the transition happened; a run that is
// already terminal is left untouched and returns false.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("finish run: %q is not a terminal status", status)
	}

	res, err := s.db.ExecContext(ctx, `
        UPDATE pipeline_runs SET status = ?, completed_at = ?
        WHERE id = ? AND status = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		RunStatusRunning,
	)
	if err != nil {
		return false, fmt.Errorf("finish run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finish run rows affected: %w", err)
	}
	return affected > 0, nil
}

// ForceRunStatus sets a run's status unconditionally. This is the operator
// override behind the force-complete and force-fail endpoints; normal
// lifecycle transitions go through FinishRun.
func (s *Store) ForceRunStatus(ctx context.Context, runID string, status RunStatus) error {
	var completedAt any
	if status.Terminal() {
		completedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE pipeline_runs SET status = ?, completed_at = ? WHERE id = ?",
		status, completedAt, runID,
	)
	if err != nil {
		return fmt.Errorf("force run status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("force run status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ReapStuckRuns fails every running run that started before the cutoff,
// appending the timeout message to each. Returns the number of runs reaped.
func (s *Store) ReapStuckRuns(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reap tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM pipeline_runs WHERE status = ? AND started_at < ?",
		RunStatusRunning,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("select stuck runs: %w", err)
	}

	var stuck []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan stuck run: %w", err)
		}
		stuck = append(stuck, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate stuck runs: %w", err)
	}
	rows.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	reaped := 0
	for _, id := range stuck {
		res, err := tx.ExecContext(ctx, `
            UPDATE pipeline_runs SET status = ?, completed_at = ?
            WHERE id = ? AND status = ?`,
			RunStatusFailed, now, id, RunStatusRunning,
		)
		if err != nil {
			return 0, fmt.Errorf("reap run %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reap run %s rows affected: %w", id, err)
		}
		if affected == 0 {
			continue
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_errors (run_id, message, created_at) VALUES (?, ?, ?)",
			id, ReapedRunError, now,
		); err != nil {
			return 0, fmt.Errorf("record reap error for %s: %w", id, err)
		}
		reaped++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reap tx: %w", err)
	}
	return reaped, nil
}

func (s *Store) loadRunErrors(ctx context.Context, run *PipelineRun) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT message FROM run_errors WHERE run_id = ? ORDER BY id ASC",
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("load run errors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var message string
		if err := rows.Scan(&message); err != nil {
			return fmt.Errorf("scan run error: %w", err)
		}
		run.Errors = append(run.Errors, message)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate run errors: %w", err)
	}
	return nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*PipelineRun, error) {
	var (
		run          PipelineRun
		statusRaw    string
		startedRaw   string
		completedRaw sql.NullString
	)

	err := scanner.Scan(
		&run.ID,
		&run.RunDate,
		&statusRaw,
		&startedRaw,
		&completedRaw,
		&run.IdeasGenerated,
		&run.ScriptsGenerated,
		&run.VideosCreated,
		&run.VideosPublished,
	)
	if err != nil {
		return nil, err
	}

	status, ok := ParseRunStatus(statusRaw)
	if !ok {
		return nil, fmt.Errorf("run %s has unknown status %q", run.ID, statusRaw)
	}
	run.Status = status

	started, err := parseTimeString(startedRaw)
	if err != nil {
		return nil, fmt.Errorf("run %s has invalid started_at: %w", run.ID, err)
	}
	run.StartedAt = started

	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			run.CompletedAt = &completed
		}
	}
	return &run, nil
}
