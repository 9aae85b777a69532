package model

import (
	"database/sql"
	"time"
)

// RenderJob is the durable record of one render request
type RenderJob struct {
	ID           int64          `db:"id"`
	JobToken     string         `db:"job_token"`
	UserID       int64          `db:"user_id"`
	DesignID     int64          `db:"design_id"`
	Kind         string         `db:"kind"`
	Status       string         `db:"status"`
	ArtifactPath sql.NullString `db:"artifact_path"`
	ErrorMessage sql.NullString `db:"error_message"`
	Attempts     int            `db:"attempts"`
	MaxAttempts  int            `db:"max_attempts"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`

	// DesignName is joined in for download filenames and listings
	DesignName string `db:"design_name"`
}
