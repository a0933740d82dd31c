package taskstatus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julienpequegnot/openqa/internal/database"
)

// Repository keeps download task status in the local database.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) RecordSuccess(resourceID string, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO task_status (resource_id, task_type, success, reason, attempts,
		                         first_attempted_at, last_attempted_at, last_success_at, last_error)
		VALUES (?, ?, TRUE, '', 0, NULL, ?, ?, '')
		ON CONFLICT(resource_id, task_type) DO UPDATE SET
			success = TRUE,
			reason = '',
			attempts = 0,
			first_attempted_at = NULL,
			last_attempted_at = excluded.last_attempted_at,
			last_success_at = excluded.last_success_at,
			last_error = ''
	`, resourceID, TaskType, at, at)
	if err != nil {
		return fmt.Errorf("failed to record success: %w", err)
	}
	return nil
}

// RecordFailure counts one more failed attempt. The first failure after a success
// starts a new run.
func (r *Repository) RecordFailure(resourceID string, at time.Time, reason, details string) error {
	_, err := r.db.Exec(`
		INSERT INTO task_status (resource_id, task_type, success, reason, attempts,
		                         first_attempted_at, last_attempted_at, last_error)
		VALUES (?, ?, FALSE, ?, 1, ?, ?, ?)
		ON CONFLICT(resource_id, task_type) DO UPDATE SET
			success = FALSE,
			reason = excluded.reason,
			attempts = task_status.attempts + 1,
			first_attempted_at = COALESCE(task_status.first_attempted_at, excluded.first_attempted_at),
			last_attempted_at = excluded.last_attempted_at,
			last_error = excluded.last_error
	`, resourceID, TaskType, reason, at, at, details)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// Latest returns nil when no download has been attempted.
func (r *Repository) Latest(resourceID string) (*Record, error) {
	var (
		rec         Record
		first       sql.NullTime
		lastSuccess sql.NullTime
	)
	err := r.db.QueryRow(`
		SELECT success, COALESCE(reason, ''), attempts, first_attempted_at, last_success_at, COALESCE(last_error, '')
		FROM task_status
		WHERE resource_id = ? AND task_type = ?
	`, resourceID, TaskType).Scan(&rec.Success, &rec.Reason, &rec.Attempts, &first, &lastSuccess, &rec.LastError)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task status: %w", err)
	}

	if first.Valid {
		rec.FirstAttemptedAt = first.Time
	}
	if lastSuccess.Valid {
		t := lastSuccess.Time
		rec.LastSuccessAt = &t
	}
	return &rec, nil
}

// LatestStatus lets the repository serve as the scorer's status source.
func (r *Repository) LatestStatus(ctx context.Context, _ TaskContext, resourceID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Latest(resourceID)
}
