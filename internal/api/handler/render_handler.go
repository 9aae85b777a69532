package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ThadPinch/ffp-render/internal/api/domain"
	"github.com/ThadPinch/ffp-render/internal/api/dto"
	"github.com/ThadPinch/ffp-render/internal/api/model"
	"github.com/ThadPinch/ffp-render/internal/api/storage"
	"github.com/ThadPinch/ffp-render/internal/artifact"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// queueMessage is the envelope published to the render queue
type queueMessage struct {
	JobToken string `json:"job_token"`
}

// CreateRenderJob handles POST /api/v1/designs/:design_id/render.
// It creates a pending job, enqueues it, and returns immediately; rendering
// itself happens on the worker service.
func (h *RenderHandler) CreateRenderJob(c *gin.Context) {
	userID := currentUserID(c)

	designID, err := strconv.ParseInt(c.Param("design_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "design_id must be an integer"})
		return
	}

	var req dto.CreateRenderJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !domain.ValidKind(req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("kind must be %q or %q", domain.KindStandard, domain.KindPrintReady),
		})
		return
	}

	ownerID, ok, err := h.designs.DesignExists(c.Request.Context(), designID)
	if err != nil {
		h.logger.Error("Failed to resolve design",
			slog.Int64("design_id", designID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve design"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Design not found"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	now := time.Now().UTC()
	job := model.RenderJob{
		JobToken:    uuid.New().String(),
		UserID:      userID,
		DesignID:    designID,
		Kind:        req.Kind,
		Status:      domain.JobStatusPending,
		MaxAttempts: h.maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create render job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create render job"})
		return
	}

	body, err := json.Marshal(queueMessage{JobToken: job.JobToken})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue render job"})
		return
	}

	if err := h.publisher.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Error("Failed to enqueue render job",
			slog.String("job_token", job.JobToken),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue render job"})
		return
	}

	h.logger.Info("Render job created",
		slog.String("job_token", job.JobToken),
		slog.Int64("design_id", designID),
		slog.String("kind", job.Kind),
	)

	c.JSON(http.StatusCreated, dto.CreateRenderJobResponse{
		JobToken: job.JobToken,
		Message:  "Render job has been queued",
	})
}

// GetJobStatus handles GET /api/v1/render-jobs/:job_token.
// Read-only and non-blocking: it reports the job store's current word and
// never waits on an in-flight render.
func (h *RenderHandler) GetJobStatus(c *gin.Context) {
	userID := currentUserID(c)

	token := c.Param("job_token")
	if _, err := uuid.Parse(token); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Render job not found"})
		return
	}

	job, err := h.store.GetJobByToken(c.Request.Context(), token, userID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Render job not found"})
			return
		}
		h.logger.Error("Failed to get render job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get render job"})
		return
	}

	res := dto.JobStatusResponse{Status: job.Status}
	switch job.Status {
	case domain.JobStatusCompleted:
		res.DownloadURL = fmt.Sprintf("/api/v1/render-jobs/%s/artifact", job.JobToken)
	case domain.JobStatusFailed:
		res.Error = job.ErrorMessage.String
	}

	c.JSON(http.StatusOK, res)
}

// DownloadArtifact handles GET /api/v1/render-jobs/:job_token/artifact.
// Completed jobs stream the stored PDF; anything else reads as not found so
// an unfinished or foreign job never leaks partial state.
func (h *RenderHandler) DownloadArtifact(c *gin.Context) {
	userID := currentUserID(c)

	token := c.Param("job_token")
	if _, err := uuid.Parse(token); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Render job not found"})
		return
	}

	job, err := h.store.GetJobByToken(c.Request.Context(), token, userID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Render job not found"})
			return
		}
		h.logger.Error("Failed to get render job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get render job"})
		return
	}

	if job.Status != domain.JobStatusCompleted || !job.ArtifactPath.Valid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found or generation not complete"})
		return
	}

	obj, err := h.artifacts.Get(c.Request.Context(), job.ArtifactPath.String)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found or generation not complete"})
			return
		}
		h.logger.Error("Failed to fetch artifact",
			slog.String("job_token", token),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch artifact"})
		return
	}
	defer obj.Reader.Close()

	filename := downloadFilename(job.DesignName, job.Kind)
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Reader, headers)
}

// ListRenderJobs handles GET /api/v1/render-jobs with cursor pagination
func (h *RenderHandler) ListRenderJobs(c *gin.Context) {
	userID := currentUserID(c)

	var req dto.ListRenderJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), storage.JobFilter{
		UserID:   userID,
		Kind:     req.Kind,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list render jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list render jobs"})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.RenderJobDTO, len(jobs))
	for i, job := range jobs {
		jobResponse[i] = dto.RenderJobDTO{
			JobToken:   job.JobToken,
			DesignName: job.DesignName,
			Kind:       job.Kind,
			Status:     job.Status,
			Attempts:   job.Attempts,
			CreatedAt:  job.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  job.UpdatedAt.Format(time.RFC3339),
		}
	}

	var nextCursor string
	if hasMore {
		last := jobs[len(jobs)-1]
		nextCursor = EncodeJobCursor(&storage.JobCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListRenderJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

// downloadFilename derives the attachment name from design name and kind
func downloadFilename(designName, kind string) string {
	suffix := "standard"
	if kind == domain.KindPrintReady {
		suffix = "print-ready"
	}
	return slug(designName) + "_" + suffix + ".pdf"
}

// slug lowercases and collapses everything non-alphanumeric to hyphens
func slug(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "design"
	}
	return out
}

// currentUserID reads the authenticated user set by the identity middleware
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}
