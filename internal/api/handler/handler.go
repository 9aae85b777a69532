package handler

import (
	"context"
	"log/slog"

	"github.com/ThadPinch/ffp-render/internal/api/model"
	"github.com/ThadPinch/ffp-render/internal/api/storage"
	"github.com/ThadPinch/ffp-render/internal/artifact"
)

// JobStore is the job persistence the handlers need
type JobStore interface {
	CreateJob(ctx context.Context, job *model.RenderJob) error
	GetJobByToken(ctx context.Context, token string, userID int64) (*model.RenderJob, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]model.RenderJob, error)
}

// QueuePublisher enqueues render work onto the durable queue
type QueuePublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// DesignResolver resolves a design reference to its owner. Full design
// loading is the worker's concern; the API only needs reference resolution.
type DesignResolver interface {
	DesignExists(ctx context.Context, designID int64) (ownerID int64, ok bool, err error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Store       JobStore
	Publisher   QueuePublisher
	Designs     DesignResolver
	Artifacts   artifact.Store
	MaxAttempts int
}

// RenderHandler handles render pipeline HTTP requests
type RenderHandler struct {
	logger      *slog.Logger
	store       JobStore
	publisher   QueuePublisher
	designs     DesignResolver
	artifacts   artifact.Store
	maxAttempts int
}

// NewRenderHandler creates a new RenderHandler instance
func NewRenderHandler(deps *Dependencies) *RenderHandler {
	maxAttempts := deps.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}

	return &RenderHandler{
		logger:      deps.Logger,
		store:       deps.Store,
		publisher:   deps.Publisher,
		designs:     deps.Designs,
		artifacts:   deps.Artifacts,
		maxAttempts: maxAttempts,
	}
}
