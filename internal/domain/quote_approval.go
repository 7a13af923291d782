package domain

import "time"

// ApprovalStatus enumerates the quote approval workflow states.
type ApprovalStatus string

const (
	ApprovalStatusDraft    ApprovalStatus = "DRAFT"
	ApprovalStatusPending  ApprovalStatus = "PENDING_APPROVAL"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// QuoteApproval tracks the approval state for one quote version. At most one
// record exists per quote. Approved/Rejected outcomes are produced by an
// external approver workflow.
type QuoteApproval struct {
	ID            string
	QuoteID       string
	Status        ApprovalStatus
	SubmittedByID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Submittable reports whether the approval record permits a (re-)submission.
// Absent records are submittable; callers handle that case directly.
func (a *QuoteApproval) Submittable() bool {
	return a.Status == ApprovalStatusDraft || a.Status == ApprovalStatusRejected
}
