package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

// fakeRepo enforces email uniqueness the way the database unique index does.
type fakeRepo struct {
	leads   map[uuid.UUID]repository.Lead
	byEmail map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:   make(map[uuid.UUID]repository.Lead),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if _, exists := f.byEmail[params.Email]; exists {
		return repository.Lead{}, apperr.Conflict("a lead with this email already exists")
	}
	lead := repository.Lead{
		ID:        uuid.New(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: time.Now(),
	}
	f.leads[lead.ID] = lead
	f.byEmail[lead.Email] = lead.ID
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*repository.Lead, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	lead := f.leads[id]
	return &lead, nil
}

func (f *fakeRepo) List(_ context.Context) ([]repository.Lead, error) {
	leads := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		leads = append(leads, lead)
	}
	return leads, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, _ repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

// fakeReader serves reads straight from the repository, standing in for the cache.
type fakeReader struct {
	repo *fakeRepo
}

func (f *fakeReader) Get(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	return f.repo.GetByID(ctx, id)
}

type fakeEnqueuer struct {
	enqueued []uuid.UUID
	err      error
}

func (f *fakeEnqueuer) EnqueueSummarize(_ context.Context, leadID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, leadID)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeEnqueuer) {
	repo := newFakeRepo()
	queue := &fakeEnqueuer{}
	svc := New(repo, &fakeReader{repo: repo}, queue, logger.New("development"))
	return svc, repo, queue
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPhone(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:  "Ana Smith",
		Email: "ana@example.com",
		Phone: strPtr("(212) 555-0147"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Phone == nil || *resp.Phone != "+12125550147" {
		t.Fatalf("expected E.164 phone, got %v", resp.Phone)
	}
	if resp.ID == uuid.Nil {
		t.Fatal("expected assigned lead ID")
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestService()

	first := transport.CreateLeadRequest{Name: "Ana", Email: "ana@example.com"}
	if _, err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{Name: "Other Ana", Email: "ana@example.com"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict for duplicate email, got %v", err)
	}
}

func TestGetReturnsNotFoundForUnknownLead(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestRequestSummaryEnqueuesJob(t *testing.T) {
	svc, _, queue := newTestService()

	created, err := svc.Create(context.Background(), transport.CreateLeadRequest{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	resp, err := svc.RequestSummary(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("RequestSummary returned error: %v", err)
	}
	if resp.Status != "processing" {
		t.Fatalf("expected status %q, got %q", "processing", resp.Status)
	}
	if resp.LeadID != created.ID {
		t.Fatalf("expected lead ID %s, got %s", created.ID, resp.LeadID)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatalf("expected one enqueued job for %s, got %v", created.ID, queue.enqueued)
	}
}

func TestRequestSummaryUnknownLeadDoesNotEnqueue(t *testing.T) {
	svc, _, queue := newTestService()

	_, err := svc.RequestSummary(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("expected no enqueued jobs, got %v", queue.enqueued)
	}
}

func TestRequestSummaryQueueFailureSurfaces(t *testing.T) {
	svc, _, queue := newTestService()
	queue.err = apperr.Unavailable("queue unavailable")

	created, err := svc.Create(context.Background(), transport.CreateLeadRequest{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.RequestSummary(context.Background(), created.ID); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}
