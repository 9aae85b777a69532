package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ThadPinch/ffp-render/internal/api/domain"
	"github.com/ThadPinch/ffp-render/internal/api/model"
	"github.com/jmoiron/sqlx"
)

// Storage handles database access for the API service. Jobs are keyed by
// correlation token for client-facing lookups; the internal id stays private.
type Storage struct {
	db *sqlx.DB
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// CreateJob inserts a new pending render job
func (s *Storage) CreateJob(ctx context.Context, job *model.RenderJob) error {
	query := `
		INSERT INTO render_jobs (
			job_token, user_id, design_id, kind,
			status, attempts, max_attempts, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9
		)
		RETURNING id
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		job.JobToken,
		job.UserID,
		job.DesignID,
		job.Kind,
		job.Status,
		job.Attempts,
		job.MaxAttempts,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID)

	if err != nil {
		return fmt.Errorf("failed to create render job: %w", err)
	}

	return nil
}

// GetJobByToken loads a job by its correlation token, scoped to its owner.
// A token owned by a different user reads the same as an unknown token.
func (s *Storage) GetJobByToken(ctx context.Context, token string, userID int64) (*model.RenderJob, error) {
	query := `
		SELECT
			j.id, j.job_token, j.user_id, j.design_id, j.kind, j.status,
			j.artifact_path, j.error_message, j.attempts, j.max_attempts,
			j.created_at, j.updated_at,
			d.name AS design_name
		FROM render_jobs j
		JOIN designs d ON d.id = j.design_id
		WHERE j.job_token = $1 AND j.user_id = $2
	`

	var job model.RenderJob
	err := s.db.GetContext(ctx, &job, query, token, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get render job: %w", err)
	}

	return &job, nil
}

// JobFilter narrows a job listing
type JobFilter struct {
	UserID   int64
	Kind     string
	Status   string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor is the keyset pagination position
type JobCursor struct {
	CreatedAt time.Time
	ID        int64
}

// ListJobs returns the caller's jobs newest first, fetching one extra row so
// the handler can tell whether another page exists
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.RenderJob, error) {
	query := `
		SELECT
			j.id, j.job_token, j.user_id, j.design_id, j.kind, j.status,
			j.artifact_path, j.error_message, j.attempts, j.max_attempts,
			j.created_at, j.updated_at,
			d.name AS design_name
		FROM render_jobs j
		JOIN designs d ON d.id = j.design_id
		WHERE j.user_id = $1
	`
	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.Kind != "" {
		query += fmt.Sprintf(" AND j.kind = $%d", argIdx)
		args = append(args, filter.Kind)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND j.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (j.created_at, j.id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIdx += 2
	}

	query += " ORDER BY j.created_at DESC, j.id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.RenderJob
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list render jobs: %w", err)
	}

	return jobs, nil
}
