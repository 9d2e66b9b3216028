// Package service contains the business logic for lead management: direct
// CRUD against the repository, cache-aside reads, and the enqueue side of the
// asynchronous enrichment pipeline.
package service

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// LeadReader is the cache-aside read path. Reads served here may be up to one
// cache TTL stale relative to the repository.
type LeadReader interface {
	Get(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

// Enqueuer submits summarize jobs to the durable queue. Enqueue returns once
// the queue acknowledges receipt; it never waits for processing.
type Enqueuer interface {
	EnqueueSummarize(ctx context.Context, leadID uuid.UUID) error
}

// Service provides lead management operations.
type Service struct {
	repo   repository.LeadsRepository
	reader LeadReader
	queue  Enqueuer
	log    *logger.Logger
}

// New creates a lead service.
func New(repo repository.LeadsRepository, reader LeadReader, queue Enqueuer, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		reader: reader,
		queue:  queue,
		log:    log,
	}
}

// Create persists a new lead. Duplicate emails surface as a Conflict error.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.Info("lead created", "lead_id", lead.ID, "email", lead.Email)
	return toResponse(lead), nil
}

// List returns all leads, newest first.
func (s *Service) List(ctx context.Context) (transport.LeadListResponse, error) {
	leads, err := s.repo.List(ctx)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toResponse(lead))
	}

	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// Get returns a single lead through the cache-aside read path.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.reader.Get(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

// RequestSummary verifies the lead exists against the authoritative store and
// enqueues a summarize job. The existence check runs before the enqueue so no
// job ever references a nonexistent lead at enqueue time.
func (s *Service) RequestSummary(ctx context.Context, id uuid.UUID) (transport.SummarizeAcceptedResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.SummarizeAcceptedResponse{}, err
	}

	if err := s.queue.EnqueueSummarize(ctx, lead.ID); err != nil {
		return transport.SummarizeAcceptedResponse{}, err
	}

	s.log.Info("summarize job enqueued", "lead_id", lead.ID)
	return transport.SummarizeAcceptedResponse{
		LeadID:  lead.ID,
		Status:  "processing",
		Message: "Request received. The AI summary is being generated in the background.",
	}, nil
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:         lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Summary:    lead.Summary,
		NextAction: lead.NextAction,
		CreatedAt:  lead.CreatedAt.Format(time.RFC3339),
	}
}
