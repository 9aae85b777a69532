package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThadPinch/ffp-render/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimAttempt atomically claims the next attempt of a render job using
// optimistic locking. Only pending jobs and failed jobs with budget left are
// claimable; the attempt counter is bumped inside the same statement so two
// workers can never run the same attempt.
func (s *Storage) ClaimAttempt(ctx context.Context, jobToken string) (*domain.Job, error) {
	query := `
		UPDATE render_jobs
		SET status = $1,
		    attempts = attempts + 1,
		    updated_at = NOW()
		WHERE job_token = $2
		  AND status IN ($3, $4)
		  AND attempts < max_attempts
		RETURNING id, job_token, user_id, design_id, kind, status, attempts, max_attempts
	`

	var job domain.Job
	err := s.db.GetContext(ctx, &job, query,
		domain.JobStatusProcessing,
		jobToken,
		domain.JobStatusPending,
		domain.JobStatusFailed,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim render attempt - job not claimable",
				slog.String("job_token", jobToken),
			)
			return nil, domain.ErrAttemptNotAvailable
		}
		return nil, fmt.Errorf("failed to claim render attempt: %w", err)
	}

	s.logger.Info("Render attempt claimed",
		slog.String("job_token", jobToken),
		slog.Int("attempt", job.Attempts),
		slog.Int("max_attempts", job.MaxAttempts),
	)

	return &job, nil
}

// CompleteAttempt records a successful render. The update is guarded by the
// attempt number so a stale attempt can never overwrite a newer one.
func (s *Storage) CompleteAttempt(ctx context.Context, jobID int64, attempt int, artifactPath string) error {
	query := `
		UPDATE render_jobs
		SET status = $1,
		    artifact_path = $2,
		    error_message = NULL,
		    updated_at = NOW()
		WHERE id = $3 AND attempts = $4 AND status = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusCompleted,
		artifactPath,
		jobID,
		attempt,
		domain.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete render attempt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAttemptSuperseded
	}

	return nil
}

// FailAttempt records a failed render with its error message. Guarded the
// same way as CompleteAttempt.
func (s *Storage) FailAttempt(ctx context.Context, jobID int64, attempt int, errorMsg string) error {
	query := `
		UPDATE render_jobs
		SET status = $1,
		    error_message = $2,
		    updated_at = NOW()
		WHERE id = $3 AND attempts = $4 AND status = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusFailed,
		errorMsg,
		jobID,
		attempt,
		domain.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to record render failure: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAttemptSuperseded
	}

	s.logger.Info("Render attempt failed",
		slog.Int64("job_id", jobID),
		slog.Int("attempt", attempt),
		slog.String("error", errorMsg),
	)

	return nil
}
