package domain

import "time"

// QuoteDetailRevision is an immutable audit entry recording one field's
// before/after value within an update operation. An update that changes K
// fields produces exactly K revisions sharing the same created_at and
// mandatory reason.
type QuoteDetailRevision struct {
	ID          string
	QuoteID     string
	FieldName   string
	OldValue    string
	NewValue    string
	Reason      string
	ChangedByID string
	CreatedAt   time.Time
}
