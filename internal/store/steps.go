package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetStepResult returns the memoized result for a (run, step) pair, or nil
// when the step has not completed yet.
func (s *Store) GetStepResult(ctx context.Context, runID, stepID string) (*StepResult, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT run_id, step_id, output, failed, error_message, created_at
        FROM step_results WHERE run_id = ? AND step_id = ?`,
		runID, stepID)

	var (
		result   StepResult
		output   sql.NullString
		failed   int
		errorMsg sql.NullString
		created  string
	)
	err := row.Scan(&result.RunID, &result.StepID, &output, &failed, &errorMsg, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get step result: %w", err)
	}

	if output.Valid {
		result.Output = []byte(output.String)
	}
	result.Failed = failed != 0
	result.ErrorMessage = errorMsg.String
	if t, err := parseTimeString(created); err == nil {
		result.CreatedAt = t
	}
	return &result, nil
}

// PutStepResult records a step's terminal outcome. The first write for a
// (run, step) pair wins; later writes are no-ops so a result can never be
// rewritten by a racing duplicate execution.
func (s *Store) PutStepResult(ctx context.Context, result *StepResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	failed := 0
	if result.Failed {
		failed = 1
	}

	var output any
	if result.Output != nil {
		output = string(result.Output)
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO step_results (run_id, step_id, output, failed, error_message, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, step_id) DO NOTHING`,
		result.RunID,
		result.StepID,
		output,
		failed,
		nullableString(result.ErrorMessage),
		result.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put step result: %w", err)
	}
	return nil
}
