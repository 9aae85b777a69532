package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThadPinch/ffp-render/internal/artifact"
	"github.com/ThadPinch/ffp-render/internal/design"
	"github.com/ThadPinch/ffp-render/internal/geometry"
	"github.com/ThadPinch/ffp-render/internal/worker/domain"
)

// processJob drives a single render attempt: claim, derive the document from
// the current design state, invoke the render service, store the artifact,
// and record the outcome. The returned error decides ACK vs NACK.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) (err error) {
	w.logger.Info("Processing render job",
		slog.String("job_token", msg.JobToken),
		slog.String("worker_id", w.workerID),
	)

	// Claim the attempt (pending/failed -> processing, attempts+1)
	job, claimErr := w.storage.ClaimAttempt(ctx, msg.JobToken)
	if claimErr != nil {
		if errors.Is(claimErr, domain.ErrAttemptNotAvailable) {
			w.logger.Warn("Render attempt not claimable, skipping",
				slog.String("job_token", msg.JobToken),
			)
			return claimErr
		}
		w.logger.Error("Failed to claim render attempt",
			slog.String("job_token", msg.JobToken),
			slog.String("error", claimErr.Error()),
		)
		return fmt.Errorf("failed to claim render attempt: %w", claimErr)
	}

	// Once claimed, the attempt must always reach a terminal state, even if
	// the render logic panics
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Render attempt panicked",
				slog.String("job_token", job.JobToken),
				slog.Int("attempt", job.Attempts),
				slog.Any("panic", r),
			)
			err = w.failAttempt(ctx, job, fmt.Errorf("render attempt panicked: %v", r))
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	artifactPath, renderErr := w.renderAttempt(jobCtx, job)
	if renderErr != nil {
		return w.failAttempt(ctx, job, renderErr)
	}

	if completeErr := w.storage.CompleteAttempt(ctx, job.ID, job.Attempts, artifactPath); completeErr != nil {
		if errors.Is(completeErr, domain.ErrAttemptSuperseded) {
			w.logger.Warn("Render attempt superseded before completion",
				slog.String("job_token", job.JobToken),
				slog.Int("attempt", job.Attempts),
			)
			// The newer attempt owns the job now; drop this delivery
			return nil
		}
		w.logger.Error("Failed to record render completion",
			slog.String("job_token", job.JobToken),
			slog.String("error", completeErr.Error()),
		)
		return w.failAttempt(ctx, job, completeErr)
	}

	w.logger.Info("Render attempt completed",
		slog.String("job_token", job.JobToken),
		slog.Int("attempt", job.Attempts),
		slog.String("artifact_path", artifactPath),
	)

	return nil
}

// renderAttempt derives a fresh render document and runs it through the
// render service and artifact store. The design is reloaded on every call so
// retries pick up edits made since the previous attempt.
func (w *Worker) renderAttempt(ctx context.Context, job *domain.Job) (string, error) {
	d, err := w.designs.GetDesign(ctx, job.DesignID)
	if err != nil {
		return "", fmt.Errorf("failed to load design %d: %w", job.DesignID, err)
	}

	elements, err := design.DecodeElements(d.Elements)
	if err != nil {
		return "", fmt.Errorf("failed to decode design elements: %w", err)
	}

	var doc geometry.Document
	switch job.Kind {
	case domain.KindStandard:
		doc = geometry.StandardDocument(d.Name, elements, d.Product)
	case domain.KindPrintReady:
		doc = geometry.PrintReadyDocument(d.Name, elements, d.Product, geometry.Metadata{}, time.Now().UTC(), w.cropMarks)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownKind, job.Kind)
	}

	pdf, err := w.renderer.Invoke(ctx, &doc)
	if err != nil {
		return "", fmt.Errorf("render service: %w", err)
	}

	artifactPath := artifactKey(job)
	putErr := w.artifacts.Put(ctx, artifact.PutInput{
		Key:         artifactPath,
		ContentType: "application/pdf",
		Reader:      bytes.NewReader(pdf),
		Size:        int64(len(pdf)),
	})
	if putErr != nil {
		return "", fmt.Errorf("failed to store artifact: %w", putErr)
	}

	return artifactPath, nil
}

// failAttempt records the failure and translates it into the ACK/NACK
// decision: retryable while budget remains, terminal once it is spent.
func (w *Worker) failAttempt(ctx context.Context, job *domain.Job, cause error) error {
	w.logger.Error("Render attempt failed",
		slog.String("job_token", job.JobToken),
		slog.Int("attempt", job.Attempts),
		slog.Int("max_attempts", job.MaxAttempts),
		slog.String("error", cause.Error()),
	)

	if failErr := w.storage.FailAttempt(ctx, job.ID, job.Attempts, cause.Error()); failErr != nil {
		if errors.Is(failErr, domain.ErrAttemptSuperseded) {
			w.logger.Warn("Render attempt superseded before failure was recorded",
				slog.String("job_token", job.JobToken),
				slog.Int("attempt", job.Attempts),
			)
			return nil
		}
		w.logger.Error("Failed to record render failure",
			slog.String("job_token", job.JobToken),
			slog.String("error", failErr.Error()),
		)
	}

	if job.Attempts < job.MaxAttempts {
		w.logger.Info("Render job will be retried",
			slog.String("job_token", job.JobToken),
			slog.Int("attempt", job.Attempts),
			slog.Int("max_attempts", job.MaxAttempts),
		)
		return domain.NewRetryableError(cause)
	}

	w.logger.Warn("Render job exhausted its attempt budget",
		slog.String("job_token", job.JobToken),
		slog.Int("attempts", job.Attempts),
	)
	return fmt.Errorf("%w: %v", domain.ErrMaxAttemptsExceeded, cause)
}

// artifactKey is the storage key for a job's finished PDF
func artifactKey(job *domain.Job) string {
	if job.Kind == domain.KindPrintReady {
		return fmt.Sprintf("designs/print-ready/%s.pdf", job.JobToken)
	}
	return fmt.Sprintf("designs/pdf/%s.pdf", job.JobToken)
}
