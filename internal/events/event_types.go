package events

import (
	"time"

	"github.com/spec-kit/quote-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQuoteCreated              EventType = "quote_created"
	EventQuoteUpdated              EventType = "quote_updated"
	EventQuoteSubmittedForApproval EventType = "quote_submitted_for_approval"
)

// QuoteSource distinguishes auto-generated from manually entered quotes.
type QuoteSource string

const (
	QuoteSourceGenerated QuoteSource = "GENERATED"
	QuoteSourceManual    QuoteSource = "MANUAL"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	QuoteID   string      `json:"quote_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QuoteCreatedPayload payload.
type QuoteCreatedPayload struct {
	Version       int                     `json:"version"`
	Source        QuoteSource             `json:"source"`
	EffortLevel   domain.QuoteEffortLevel `json:"effort_level"`
	EstimatedCost string                  `json:"estimated_cost"`
}

// QuoteUpdatedPayload payload.
type QuoteUpdatedPayload struct {
	Version       int      `json:"version"`
	ChangedFields []string `json:"changed_fields"`
	Reason        string   `json:"reason"`
}

// QuoteSubmittedPayload payload.
type QuoteSubmittedPayload struct {
	ApprovalStatus domain.ApprovalStatus `json:"approval_status"`
}
