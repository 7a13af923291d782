package domain

import "errors"

// Quote lifecycle failure taxonomy. All are recoverable by the caller via
// user correction or retry-with-fresh-state; persistence failures propagate
// separately and are never folded into these.
var (
	ErrPermissionDenied          = errors.New("caller lacks required capability")
	ErrTicketNotFound            = errors.New("ticket not found")
	ErrQuoteNotFound             = errors.New("quote not found")
	ErrNoApplicableRule          = errors.New("no active calculation rule matches ticket")
	ErrInvalidQuoteFigures       = errors.New("quote figures invalid")
	ErrMissingReason             = errors.New("update reason required")
	ErrNoChangesSupplied         = errors.New("update contains no changes")
	ErrStaleQuoteVersion         = errors.New("quote was updated by another editor")
	ErrQuoteAlreadyExists        = errors.New("ticket already has a quote")
	ErrDuplicateInitialQuote     = errors.New("initial quote already exists for ticket")
	ErrInvalidApprovalTransition = errors.New("quote cannot be submitted in its current approval state")
)
