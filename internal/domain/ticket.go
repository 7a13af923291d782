package domain

import "time"

// Ticket carries the attributes the quote engine reads from the ticket
// subsystem. Intake, triage and the comment thread live outside this
// service; only the costing-relevant attributes are resolved here.
type Ticket struct {
	ID               string
	OrganizationID   string
	TicketTypeID     string
	TicketSeverityID string
	BusinessImpactID string
	UsersImpacted    int
	RequesterID      string
	Title            string
	CreatedAt        time.Time
}
