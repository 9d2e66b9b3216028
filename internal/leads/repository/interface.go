package repository

import (
	"context"

	"github.com/google/uuid"
)

// LeadsRepository is the persistence contract for leads. The service, the
// summarization worker, and the importer all depend on this interface so
// in-memory fakes can replace Postgres in tests.
type LeadsRepository interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	// GetByEmail returns (nil, nil) when no lead has the given email.
	GetByEmail(ctx context.Context, email string) (*Lead, error)
	List(ctx context.Context) ([]Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
}

var _ LeadsRepository = (*Repository)(nil)
