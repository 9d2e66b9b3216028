package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"leadflow_backend/internal/enrichment/ai"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

type fakeQueueConfig struct{}

func (fakeQueueConfig) GetRedisURL() string       { return "redis://127.0.0.1:6379/0" }
func (fakeQueueConfig) GetRedisTLSInsecure() bool { return false }
func (fakeQueueConfig) GetQueueName() string      { return "leads" }
func (fakeQueueConfig) GetQueueConcurrency() int  { return 1 }

type fakeLeadReader struct {
	leads map[uuid.UUID]repository.Lead
}

func (f *fakeLeadReader) Get(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

type fakeUpdater struct {
	updates []repository.UpdateLeadParams
	err     error
}

func (f *fakeUpdater) Update(_ context.Context, _ uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	if f.err != nil {
		return repository.Lead{}, f.err
	}
	f.updates = append(f.updates, params)
	return repository.Lead{}, nil
}

type fakeInvalidator struct {
	invalidated []uuid.UUID
	err         error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.invalidated = append(f.invalidated, id)
	return nil
}

type fakeSummarizer struct {
	summary ai.Summary
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string) (ai.Summary, error) {
	f.calls++
	if f.err != nil {
		return ai.Summary{}, f.err
	}
	return f.summary, nil
}

type workerFixture struct {
	worker     *Worker
	reader     *fakeLeadReader
	updater    *fakeUpdater
	cache      *fakeInvalidator
	summarizer *fakeSummarizer
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		reader:     &fakeLeadReader{leads: make(map[uuid.UUID]repository.Lead)},
		updater:    &fakeUpdater{},
		cache:      &fakeInvalidator{},
		summarizer: &fakeSummarizer{},
	}

	worker, err := NewWorker(fakeQueueConfig{}, f.reader, f.updater, f.cache, f.summarizer, logger.New("development"))
	if err != nil {
		t.Fatalf("NewWorker returned error: %v", err)
	}
	f.worker = worker
	return f
}

func (f *workerFixture) seedLead() uuid.UUID {
	id := uuid.New()
	f.reader.leads[id] = repository.Lead{ID: id, Name: "Ana Smith", Email: "ana@example.com", CreatedAt: time.Now()}
	return id
}

func summarizeTask(t *testing.T, leadID string) *asynq.Task {
	t.Helper()
	task, err := NewLeadSummarizeTask(LeadSummarizePayload{LeadID: leadID})
	if err != nil {
		t.Fatalf("NewLeadSummarizeTask returned error: %v", err)
	}
	return task
}

func TestHandleLeadSummarizePersistsAndInvalidates(t *testing.T) {
	f := newWorkerFixture(t)
	f.summarizer.summary = ai.Summary{Summary: "Engaged prospect", NextAction: "Schedule a demo call"}
	id := f.seedLead()

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, id.String())); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if len(f.updater.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(f.updater.updates))
	}
	update := f.updater.updates[0]
	if update.Summary == nil || *update.Summary != "Engaged prospect" {
		t.Fatalf("unexpected summary: %v", update.Summary)
	}
	if update.NextAction == nil || *update.NextAction != "Schedule a demo call" {
		t.Fatalf("unexpected next action: %v", update.NextAction)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != id {
		t.Fatalf("expected cache invalidation for %s, got %v", id, f.cache.invalidated)
	}
}

func TestHandleLeadSummarizeAIFailureWritesFallback(t *testing.T) {
	f := newWorkerFixture(t)
	f.summarizer.err = errors.New("model overloaded")
	id := f.seedLead()

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, id.String())); err != nil {
		t.Fatalf("handler must not fail the job on an AI error, got: %v", err)
	}

	if len(f.updater.updates) != 1 {
		t.Fatalf("expected fallback update, got %d updates", len(f.updater.updates))
	}
	update := f.updater.updates[0]
	if update.Summary == nil || *update.Summary != FallbackSummary {
		t.Fatalf("expected fallback summary, got %v", update.Summary)
	}
	if update.NextAction == nil || *update.NextAction != FallbackNextAction {
		t.Fatalf("expected fallback next action, got %v", update.NextAction)
	}
	if len(f.cache.invalidated) != 1 {
		t.Fatal("fallback writes must still invalidate the cache")
	}
}

func TestHandleLeadSummarizeUnknownLeadDropsJob(t *testing.T) {
	f := newWorkerFixture(t)

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, uuid.NewString())); err != nil {
		t.Fatalf("dropped job must not return an error, got: %v", err)
	}
	if f.summarizer.calls != 0 {
		t.Fatal("summarizer must not run for a missing lead")
	}
	if len(f.updater.updates) != 0 {
		t.Fatal("no update expected for a missing lead")
	}
}

func TestHandleLeadSummarizeStoreFailureDropsJob(t *testing.T) {
	f := newWorkerFixture(t)
	f.updater.err = apperr.Internal("store write failed")
	id := f.seedLead()

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, id.String())); err != nil {
		t.Fatalf("dropped job must not return an error, got: %v", err)
	}
	if len(f.cache.invalidated) != 0 {
		t.Fatal("cache must not be invalidated when the write failed")
	}
}

func TestHandleLeadSummarizeInvalidateFailureDropsJob(t *testing.T) {
	f := newWorkerFixture(t)
	f.cache.err = apperr.Internal("cache invalidate failed")
	id := f.seedLead()

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, id.String())); err != nil {
		t.Fatalf("dropped job must not return an error, got: %v", err)
	}
	if len(f.updater.updates) != 1 {
		t.Fatal("update must land even when invalidation then fails")
	}
}

func TestHandleLeadSummarizeMalformedPayloadDropsJob(t *testing.T) {
	f := newWorkerFixture(t)

	task := asynq.NewTask(TaskLeadSummarize, []byte("{not json"))
	if err := f.worker.HandleLeadSummarize(context.Background(), task); err != nil {
		t.Fatalf("malformed payload must be dropped, got: %v", err)
	}

	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, "not-a-uuid")); err != nil {
		t.Fatalf("invalid lead id must be dropped, got: %v", err)
	}
	if f.summarizer.calls != 0 {
		t.Fatal("summarizer must not run for an unreadable job")
	}
}

func TestWorkerKeepsProcessingAfterFailures(t *testing.T) {
	f := newWorkerFixture(t)
	first := f.seedLead()
	second := f.seedLead()

	f.summarizer.err = errors.New("model overloaded")
	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, first.String())); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	f.summarizer.err = nil
	f.summarizer.summary = ai.Summary{Summary: "Recovered", NextAction: "Follow up"}
	if err := f.worker.HandleLeadSummarize(context.Background(), summarizeTask(t, second.String())); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if len(f.updater.updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(f.updater.updates))
	}
	if *f.updater.updates[1].Summary != "Recovered" {
		t.Fatalf("expected second job to succeed, got %q", *f.updater.updates[1].Summary)
	}
}
