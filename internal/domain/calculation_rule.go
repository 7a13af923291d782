package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteCalculationRule maps a combination of ticket attributes to a
// suggested hour range, effort level and confidence level. A nil key field
// is a wildcard matching any ticket. Rules are toggled active/inactive
// rather than deleted.
type QuoteCalculationRule struct {
	ID                    string
	TicketTypeID          *string
	TicketSeverityID      *string
	BusinessImpactID      *string
	EstimatedHoursMinimum decimal.Decimal
	EstimatedHoursMaximum decimal.Decimal
	EffortLevel           QuoteEffortLevel
	ConfidenceLevel       QuoteConfidenceLevel
	ResolutionMultiplier  *decimal.Decimal
	Active                bool
	ActivatedAt           time.Time
	CreatedAt             time.Time
}

// Matches reports whether every non-wildcard key field equals the ticket's
// corresponding attribute.
func (r *QuoteCalculationRule) Matches(ticket *Ticket) bool {
	if r.TicketTypeID != nil && *r.TicketTypeID != ticket.TicketTypeID {
		return false
	}
	if r.TicketSeverityID != nil && *r.TicketSeverityID != ticket.TicketSeverityID {
		return false
	}
	if r.BusinessImpactID != nil && *r.BusinessImpactID != ticket.BusinessImpactID {
		return false
	}
	return true
}

// Specificity counts non-wildcard key fields. When multiple active rules
// match a ticket, the most specific rule wins.
func (r *QuoteCalculationRule) Specificity() int {
	count := 0
	if r.TicketTypeID != nil {
		count++
	}
	if r.TicketSeverityID != nil {
		count++
	}
	if r.BusinessImpactID != nil {
		count++
	}
	return count
}
