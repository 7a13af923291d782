package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/quote-service/internal/domain"
	"github.com/spec-kit/quote-service/internal/repository"
)

// ApprovalTracker enforces the quote approval state machine. A quote with no
// approval record, a Draft record, or a Rejected record may be submitted;
// PendingApproval and Approved reject re-submission. Grant/reject decisions
// come from an external approver workflow.
type ApprovalTracker struct {
	approvals repository.QuoteApprovalRepository
	quotes    repository.QuoteRepository
}

// NewApprovalTracker constructs the tracker.
func NewApprovalTracker(approvals repository.QuoteApprovalRepository, quotes repository.QuoteRepository) *ApprovalTracker {
	return &ApprovalTracker{approvals: approvals, quotes: quotes}
}

// Submit transitions the quote to PendingApproval.
func (t *ApprovalTracker) Submit(ctx context.Context, quoteID, actorID string) (*domain.QuoteApproval, error) {
	if _, err := t.quotes.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}

	existing, err := t.approvals.GetByQuote(ctx, quoteID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if existing == nil || errors.Is(err, pgx.ErrNoRows) {
		approval := &domain.QuoteApproval{
			QuoteID:       quoteID,
			Status:        domain.ApprovalStatusPending,
			SubmittedByID: actorID,
		}
		if err := t.approvals.Create(ctx, approval); err != nil {
			return nil, err
		}
		return approval, nil
	}

	if !existing.Submittable() {
		return nil, domain.ErrInvalidApprovalTransition
	}
	if err := t.approvals.UpdateStatus(ctx, existing.ID, domain.ApprovalStatusPending, actorID); err != nil {
		return nil, err
	}
	existing.Status = domain.ApprovalStatusPending
	existing.SubmittedByID = actorID
	return existing, nil
}
