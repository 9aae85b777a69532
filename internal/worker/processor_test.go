package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThadPinch/ffp-render/internal/artifact"
	"github.com/ThadPinch/ffp-render/internal/design"
	"github.com/ThadPinch/ffp-render/internal/geometry"
	"github.com/ThadPinch/ffp-render/internal/worker/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory JobStore tracking one job through its attempts
type fakeStore struct {
	job          domain.Job
	errorMessage string
	artifactPath string
}

func (f *fakeStore) ClaimAttempt(_ context.Context, jobToken string) (*domain.Job, error) {
	if f.job.JobToken != jobToken {
		return nil, domain.ErrAttemptNotAvailable
	}
	claimable := f.job.Status == domain.JobStatusPending || f.job.Status == domain.JobStatusFailed
	if !claimable || f.job.Attempts >= f.job.MaxAttempts {
		return nil, domain.ErrAttemptNotAvailable
	}
	f.job.Status = domain.JobStatusProcessing
	f.job.Attempts++
	claimed := f.job
	return &claimed, nil
}

func (f *fakeStore) CompleteAttempt(_ context.Context, jobID int64, attempt int, artifactPath string) error {
	if f.job.ID != jobID || f.job.Attempts != attempt || f.job.Status != domain.JobStatusProcessing {
		return domain.ErrAttemptSuperseded
	}
	f.job.Status = domain.JobStatusCompleted
	f.artifactPath = artifactPath
	f.errorMessage = ""
	return nil
}

func (f *fakeStore) FailAttempt(_ context.Context, jobID int64, attempt int, errorMsg string) error {
	if f.job.ID != jobID || f.job.Attempts != attempt || f.job.Status != domain.JobStatusProcessing {
		return domain.ErrAttemptSuperseded
	}
	f.job.Status = domain.JobStatusFailed
	f.errorMessage = errorMsg
	return nil
}

type fakeDesigns struct {
	design *design.Design
	err    error
	calls  int
}

func (f *fakeDesigns) GetDesign(_ context.Context, designID int64) (*design.Design, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d := *f.design
	return &d, nil
}

// fakeRenderer returns scripted results per call
type fakeRenderer struct {
	results []renderResult
	calls   int
	docs    []*geometry.Document
}

type renderResult struct {
	pdf []byte
	err error
}

func (f *fakeRenderer) Invoke(_ context.Context, doc *geometry.Document) ([]byte, error) {
	f.docs = append(f.docs, doc)
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		return nil, errors.New("unexpected render call")
	}
	return f.results[idx].pdf, f.results[idx].err
}

type panicRenderer struct{}

func (panicRenderer) Invoke(_ context.Context, _ *geometry.Document) ([]byte, error) {
	panic("nil font table")
}

type fakeArtifacts struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeArtifacts) Provider() string { return "fake" }

func (f *fakeArtifacts) Put(_ context.Context, in artifact.PutInput) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[in.Key] = data
	return nil
}

func (f *fakeArtifacts) Get(_ context.Context, key string) (*artifact.Object, error) {
	return nil, artifact.ErrNotFound
}

func testDesign() *design.Design {
	elements, _ := json.Marshal([]map[string]interface{}{
		{"type": "text", "x": 72, "y": 72, "width": 144, "height": 36, "zIndex": 1,
			"content": "Hello", "fontSize": 18},
	})
	return &design.Design{
		ID:       42,
		UserID:   7,
		Name:     "Summer Flyer",
		Elements: elements,
		Product: design.Product{
			ID:             3,
			Name:           "Postcard 4x6",
			FinishedWidth:  6,
			FinishedLength: 4,
			Bleed:          0.125,
		},
	}
}

func newTestWorker(store *fakeStore, designs *fakeDesigns, renderer RenderInvoker, arts *fakeArtifacts) *Worker {
	return &Worker{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:    store,
		designs:    designs,
		renderer:   renderer,
		artifacts:  arts,
		jobTimeout: 30 * time.Second,
		workerID:   "test-worker",
	}
}

func pendingJob(kind string) domain.Job {
	return domain.Job{
		ID:          1,
		JobToken:    uuid.New().String(),
		UserID:      7,
		DesignID:    42,
		Kind:        kind,
		Status:      domain.JobStatusPending,
		Attempts:    0,
		MaxAttempts: 2,
	}
}

func TestProcessJob(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		renderer := &fakeRenderer{results: []renderResult{{pdf: []byte("%PDF-ok")}}}
		arts := &fakeArtifacts{}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, renderer, arts)

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, store.job.Status)
		assert.Equal(t, 1, store.job.Attempts)
		key := "designs/pdf/" + store.job.JobToken + ".pdf"
		assert.Equal(t, key, store.artifactPath)
		assert.Equal(t, []byte("%PDF-ok"), arts.objects[key])
	})

	t.Run("print-ready jobs land under the print-ready prefix", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindPrintReady)}
		renderer := &fakeRenderer{results: []renderResult{{pdf: []byte("%PDF-ok")}}}
		arts := &fakeArtifacts{}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, renderer, arts)

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.NoError(t, err)
		assert.Equal(t, "designs/print-ready/"+store.job.JobToken+".pdf", store.artifactPath)

		require.Len(t, renderer.docs, 1)
		doc := renderer.docs[0]
		assert.Equal(t, geometry.KindPrintReady, doc.Kind)
		assert.InDelta(t, 6.5, doc.PageWidth, 1e-9)
		assert.InDelta(t, 4.5, doc.PageHeight, 1e-9)
	})

	t.Run("failed attempt with budget left is retryable", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		renderer := &fakeRenderer{results: []renderResult{
			{err: errors.New("upstream timeout")},
		}}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, renderer, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.Error(t, err)
		assert.True(t, w.shouldRequeueJob(err), "attempt 1 of 2 should requeue")
		assert.Equal(t, domain.JobStatusFailed, store.job.Status)
		assert.Equal(t, 1, store.job.Attempts)
		assert.Contains(t, store.errorMessage, "upstream timeout")
	})

	t.Run("second failure exhausts the budget", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		renderer := &fakeRenderer{results: []renderResult{
			{err: errors.New("first failure")},
			{err: errors.New("second failure")},
		}}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, renderer, &fakeArtifacts{})
		msg := &domain.JobMessage{JobToken: store.job.JobToken}

		err := w.processJob(context.Background(), msg)
		require.Error(t, err)
		require.True(t, w.shouldRequeueJob(err))

		err = w.processJob(context.Background(), msg)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMaxAttemptsExceeded)
		assert.False(t, w.shouldRequeueJob(err), "budget spent, must not requeue")
		assert.Equal(t, domain.JobStatusFailed, store.job.Status)
		assert.Equal(t, 2, store.job.Attempts)
		assert.Contains(t, store.errorMessage, "second failure",
			"the last attempt's error should be the one recorded")
	})

	t.Run("retry renders the design as it stands now", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		designs := &fakeDesigns{design: testDesign()}
		renderer := &fakeRenderer{results: []renderResult{
			{err: errors.New("flaky")},
			{pdf: []byte("%PDF-ok")},
		}}
		w := newTestWorker(store, designs, renderer, &fakeArtifacts{})
		msg := &domain.JobMessage{JobToken: store.job.JobToken}

		require.Error(t, w.processJob(context.Background(), msg))

		designs.design.Name = "Summer Flyer v2"
		require.NoError(t, w.processJob(context.Background(), msg))

		assert.Equal(t, 2, designs.calls, "design must be reloaded per attempt")
		require.Len(t, renderer.docs, 2)
		assert.Equal(t, "Summer Flyer v2", renderer.docs[1].DesignName)
	})

	t.Run("completed job cannot be claimed again", func(t *testing.T) {
		job := pendingJob(domain.KindStandard)
		job.Status = domain.JobStatusCompleted
		job.Attempts = 1
		store := &fakeStore{job: job}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, &fakeRenderer{}, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: job.JobToken})

		assert.ErrorIs(t, err, domain.ErrAttemptNotAvailable)
		assert.False(t, w.shouldRequeueJob(err))
	})

	t.Run("unknown token is not claimable", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, &fakeRenderer{}, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: uuid.New().String()})

		assert.ErrorIs(t, err, domain.ErrAttemptNotAvailable)
	})

	t.Run("unknown kind fails the attempt", func(t *testing.T) {
		store := &fakeStore{job: pendingJob("poster")}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, &fakeRenderer{}, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.Error(t, err)
		assert.Equal(t, domain.JobStatusFailed, store.job.Status)
		assert.Contains(t, store.errorMessage, "unknown render kind")
	})

	t.Run("design load failure fails the attempt", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		designs := &fakeDesigns{err: fmt.Errorf("connection refused")}
		w := newTestWorker(store, designs, &fakeRenderer{}, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.Error(t, err)
		assert.True(t, w.shouldRequeueJob(err))
		assert.Equal(t, domain.JobStatusFailed, store.job.Status)
		assert.Contains(t, store.errorMessage, "connection refused")
	})

	t.Run("artifact write failure fails the attempt", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		renderer := &fakeRenderer{results: []renderResult{{pdf: []byte("%PDF-ok")}}}
		arts := &fakeArtifacts{putErr: errors.New("disk full")}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, renderer, arts)

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.Error(t, err)
		assert.True(t, w.shouldRequeueJob(err))
		assert.Contains(t, store.errorMessage, "disk full")
	})

	t.Run("panic still reaches a terminal state", func(t *testing.T) {
		store := &fakeStore{job: pendingJob(domain.KindStandard)}
		w := newTestWorker(store, &fakeDesigns{design: testDesign()}, panicRenderer{}, &fakeArtifacts{})

		err := w.processJob(context.Background(), &domain.JobMessage{JobToken: store.job.JobToken})

		require.Error(t, err)
		assert.Equal(t, domain.JobStatusFailed, store.job.Status)
		assert.Contains(t, store.errorMessage, "nil font table")
		assert.True(t, w.shouldRequeueJob(err), "first panicked attempt still has budget")
	})
}

func TestShouldRequeueJob(t *testing.T) {
	w := newTestWorker(&fakeStore{}, &fakeDesigns{}, &fakeRenderer{}, &fakeArtifacts{})

	assert.True(t, w.shouldRequeueJob(domain.NewRetryableError(errors.New("boom"))))
	assert.False(t, w.shouldRequeueJob(domain.ErrAttemptNotAvailable))
	assert.False(t, w.shouldRequeueJob(fmt.Errorf("%w: boom", domain.ErrMaxAttemptsExceeded)))
	assert.False(t, w.shouldRequeueJob(domain.ErrInvalidMessage))
	assert.False(t, w.shouldRequeueJob(errors.New("unclassified")))
}
