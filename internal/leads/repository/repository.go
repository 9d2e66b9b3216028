package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Lead is the persisted lead record. Summary and NextAction stay nil until
// the enrichment worker (or the importer's placeholder) writes them.
type Lead struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Phone      *string
	Summary    *string
	NextAction *string
	CreatedAt  time.Time
}

// CreateLeadParams holds the fields supplied at creation time.
type CreateLeadParams struct {
	Name       string
	Email      string
	Phone      *string
	Summary    *string
	NextAction *string
}

// UpdateLeadParams merges non-nil fields into the stored record.
type UpdateLeadParams struct {
	Name       *string
	Phone      *string
	Summary    *string
	NextAction *string
}

// Repository persists leads in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a lead repository backed by the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, summary, next_action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, phone, summary, next_action, created_at
	`, params.Name, params.Email, params.Phone, params.Summary, params.NextAction).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Summary, &lead.NextAction, &lead.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Lead{}, apperr.Conflict("a lead with this email already exists").WithOp("leads.Create")
		}
		return Lead{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("create lead failed: %v", err), err).WithOp("leads.Create")
	}

	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, summary, next_action, created_at
		FROM leads WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Summary, &lead.NextAction, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound(fmt.Sprintf("lead %s not found", id)).WithOp("leads.GetByID")
	}
	if err != nil {
		return Lead{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get lead failed: %v", err), err).WithOp("leads.GetByID")
	}

	return lead, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, summary, next_action, created_at
		FROM leads WHERE email = $1
	`, email).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Summary, &lead.NextAction, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("get lead by email failed: %v", err), err).WithOp("leads.GetByEmail")
	}

	return &lead, nil
}

func (r *Repository) List(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, summary, next_action, created_at
		FROM leads
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list leads failed: %v", err), err).WithOp("leads.List")
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Summary, &lead.NextAction, &lead.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan lead failed: %v", err), err).WithOp("leads.List")
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list leads failed: %v", rows.Err()), rows.Err()).WithOp("leads.List")
	}

	return leads, nil
}

// Update merges the given fields into the stored record via COALESCE and
// returns the post-update row. Email is the natural key and is never updated.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			summary = COALESCE($4, summary),
			next_action = COALESCE($5, next_action)
		WHERE id = $1
		RETURNING id, name, email, phone, summary, next_action, created_at
	`, id, params.Name, params.Phone, params.Summary, params.NextAction).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Summary, &lead.NextAction, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound(fmt.Sprintf("lead %s not found", id)).WithOp("leads.Update")
	}
	if err != nil {
		return Lead{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("update lead failed: %v", err), err).WithOp("leads.Update")
	}

	return lead, nil
}
