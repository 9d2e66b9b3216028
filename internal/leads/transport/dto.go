package transport

import "github.com/google/uuid"

// CreateLeadRequest contains data for creating a new lead.
type CreateLeadRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	NextAction *string   `json:"next_action,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// SummarizeAcceptedResponse acknowledges an enqueued enrichment request.
type SummarizeAcceptedResponse struct {
	LeadID  uuid.UUID `json:"leadId"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}
