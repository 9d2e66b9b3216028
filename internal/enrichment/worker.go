package enrichment

import (
	"context"

	"leadflow_backend/internal/enrichment/ai"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Fallback payload written when the summarizer fails for any reason. Trades
// accuracy for pipeline availability: an AI outage never stalls the worker.
const (
	FallbackSummary    = "no summary could be generated at this time"
	FallbackNextAction = "review manually"
)

// LeadReader resolves leads through the cache-aside path, matching the
// consistency contract of client reads.
type LeadReader interface {
	Get(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

// CacheInvalidator removes a cached lead entry after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// LeadUpdater applies the enrichment payload to the record store.
type LeadUpdater interface {
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
}

// Summarizer produces the enrichment payload for a lead.
type Summarizer interface {
	Summarize(ctx context.Context, name, email string) (ai.Summary, error)
}

// Worker consumes summarize jobs from the durable queue. Jobs are processed
// at-least-once with no ordering guarantee across concurrent handlers; a job
// that hits an infrastructure failure is logged and dropped, never retried.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reader     LeadReader
	updater    LeadUpdater
	cache      CacheInvalidator
	summarizer Summarizer
	log        *logger.Logger
}

// NewWorker creates the queue consumer with the configured concurrency bound.
func NewWorker(cfg config.QueueConfig, reader LeadReader, updater LeadUpdater, cache CacheInvalidator, summarizer Summarizer, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetQueueConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			cfg.GetQueueName(): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		reader:     reader,
		updater:    updater,
		cache:      cache,
		summarizer: summarizer,
		log:        log.WithComponent("enrichment-worker"),
	}

	mux.HandleFunc(TaskLeadSummarize, w.HandleLeadSummarize)

	return w, nil
}

// Run serves the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("enrichment worker stopped", "error", err)
	}
}

// HandleLeadSummarize enriches one lead: resolve through the cache, summarize,
// persist, invalidate. It always returns nil — an infrastructure failure here
// is terminal for the job (no retry, no dead-letter), so the error is logged
// with the job's lead id and explicitly swallowed rather than handed back to
// the queue for redelivery.
func (w *Worker) HandleLeadSummarize(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadSummarizePayload(task)
	if err != nil {
		w.log.Error("summarize payload unreadable, dropping job", "error", err)
		return nil
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		w.log.Error("summarize payload has invalid lead id, dropping job", "lead_id", payload.LeadID, "error", err)
		return nil
	}

	w.log.Info("summarize job started", "lead_id", leadID)

	lead, err := w.reader.Get(ctx, leadID)
	if err != nil {
		w.log.JobDropped(TaskLeadSummarize, payload.LeadID, err)
		return nil
	}

	summary, err := w.summarizer.Summarize(ctx, lead.Name, lead.Email)
	if err != nil {
		// AI failure never fails the job: substitute the fixed fallback and
		// continue to the update step as if it were a success.
		w.log.Warn("summarizer failed, applying fallback payload", "lead_id", leadID, "error", err)
		summary = ai.Summary{Summary: FallbackSummary, NextAction: FallbackNextAction}
	}

	if _, err := w.updater.Update(ctx, leadID, repository.UpdateLeadParams{
		Summary:    &summary.Summary,
		NextAction: &summary.NextAction,
	}); err != nil {
		w.log.JobDropped(TaskLeadSummarize, payload.LeadID, err)
		return nil
	}

	if err := w.cache.Invalidate(ctx, leadID); err != nil {
		w.log.JobDropped(TaskLeadSummarize, payload.LeadID, err)
		return nil
	}

	w.log.Info("summarize job completed", "lead_id", leadID)
	return nil
}
