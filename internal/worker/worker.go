package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ThadPinch/ffp-render/internal/artifact"
	"github.com/ThadPinch/ffp-render/internal/design"
	"github.com/ThadPinch/ffp-render/internal/geometry"
	"github.com/ThadPinch/ffp-render/internal/worker/domain"
	"github.com/ThadPinch/ffp-render/internal/worker/storage"
	"github.com/ThadPinch/ffp-render/shared/postgresql"
	"github.com/ThadPinch/ffp-render/shared/rabbitmq"
	"github.com/google/uuid"
)

// JobStore is the job persistence the worker needs
type JobStore interface {
	ClaimAttempt(ctx context.Context, jobToken string) (*domain.Job, error)
	CompleteAttempt(ctx context.Context, jobID int64, attempt int, artifactPath string) error
	FailAttempt(ctx context.Context, jobID int64, attempt int, errorMsg string) error
}

// DesignLoader loads the design snapshot for an attempt. It is called fresh
// on every attempt so a retry always renders the design as it stands now.
type DesignLoader interface {
	GetDesign(ctx context.Context, designID int64) (*design.Design, error)
}

// RenderInvoker submits a render document to the external render service
type RenderInvoker interface {
	Invoke(ctx context.Context, doc *geometry.Document) ([]byte, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	DBClient      *postgresql.Client
	RabbitClient  *rabbitmq.Client
	Renderer      RenderInvoker
	Artifacts     artifact.Store
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
	CropMarks     geometry.Options
}

// Worker consumes render jobs from RabbitMQ and drives each one through
// claim, payload derivation, render, artifact write, and status update.
type Worker struct {
	logger       *slog.Logger
	rabbitClient *rabbitmq.Client
	storage      JobStore
	designs      DesignLoader
	renderer     RenderInvoker
	artifacts    artifact.Store

	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	cropMarks     geometry.Options
	workerID      string

	jobsChan chan *domain.JobMessage
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}

	db := cfg.DBClient.GetDB()

	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		storage:       storage.NewStorage(db, cfg.Logger),
		designs:       design.NewStore(db),
		renderer:      cfg.Renderer,
		artifacts:     cfg.Artifacts,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		jobTimeout:    cfg.JobTimeout,
		cropMarks:     cfg.CropMarks,
		workerID:      fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8]),
		jobsChan:      make(chan *domain.JobMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming and processing render jobs. It blocks until the
// context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting render worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)

	w.startMessageDispatcher(ctx, deliveries)

	w.logger.Info("Worker context canceled, stopping...")
	return nil
}

// Stop gracefully stops the worker, waiting for in-flight renders to finish
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
