package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/quote-service/internal/domain"
)

// CreateManualQuoteRequest payload.
type CreateManualQuoteRequest struct {
	EstimatedHoursMinimum decimal.Decimal              `json:"estimated_hours_minimum"`
	EstimatedHoursMaximum decimal.Decimal              `json:"estimated_hours_maximum"`
	HourlyRate            decimal.Decimal              `json:"hourly_rate"`
	FixedCost             decimal.Decimal              `json:"fixed_cost"`
	EffortLevel           domain.QuoteEffortLevel      `json:"effort_level"`
	ConfidenceLevel       *domain.QuoteConfidenceLevel `json:"confidence_level,omitempty"`
}

// UpdateQuoteRequest is a partial change set against a known base version.
// Absent fields carry forward unchanged.
type UpdateQuoteRequest struct {
	BaseVersion           int                          `json:"base_version"`
	EstimatedHoursMinimum *decimal.Decimal             `json:"estimated_hours_minimum,omitempty"`
	EstimatedHoursMaximum *decimal.Decimal             `json:"estimated_hours_maximum,omitempty"`
	HourlyRate            *decimal.Decimal             `json:"hourly_rate,omitempty"`
	FixedCost             *decimal.Decimal             `json:"fixed_cost,omitempty"`
	EffortLevel           *domain.QuoteEffortLevel     `json:"effort_level,omitempty"`
	ConfidenceLevel       *domain.QuoteConfidenceLevel `json:"confidence_level,omitempty"`
	Reason                string                       `json:"reason"`
}

// QuoteResponse carries one quote version with its derived figures. Derived
// values are computed on the way out, never read back from storage.
type QuoteResponse struct {
	ID                       string                       `json:"id"`
	TicketID                 string                       `json:"ticket_id"`
	Version                  int                          `json:"version"`
	EstimatedHoursMinimum    decimal.Decimal              `json:"estimated_hours_minimum"`
	EstimatedHoursMaximum    decimal.Decimal              `json:"estimated_hours_maximum"`
	HourlyRate               decimal.Decimal              `json:"hourly_rate"`
	FixedCost                decimal.Decimal              `json:"fixed_cost"`
	EffortLevel              domain.QuoteEffortLevel      `json:"effort_level"`
	ConfidenceLevel          *domain.QuoteConfidenceLevel `json:"confidence_level"`
	EstimatedCost            decimal.Decimal              `json:"estimated_cost"`
	EstimatedResolutionHours decimal.Decimal              `json:"estimated_resolution_hours"`
	CreatedByID              string                       `json:"created_by_staff_id"`
	CreatedAt                time.Time                    `json:"created_at"`
}

// QuoteRevisionResponse is one audit-trail entry.
type QuoteRevisionResponse struct {
	ID          string    `json:"id"`
	QuoteID     string    `json:"quote_id"`
	FieldName   string    `json:"field_name"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	Reason      string    `json:"reason"`
	ChangedByID string    `json:"changed_by_staff_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuoteApprovalResponse reports approval workflow state.
type QuoteApprovalResponse struct {
	ID            string                `json:"id"`
	QuoteID       string                `json:"quote_id"`
	Status        domain.ApprovalStatus `json:"status"`
	SubmittedByID string                `json:"submitted_by_staff_id"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
