package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/quote-service/internal/domain"
	apperrors "github.com/spec-kit/quote-service/pkg/util"
)

// mapDomainError translates lifecycle sentinel errors into transport errors
// with stable codes. Unrecognized errors pass through untouched.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPermissionDenied):
		return apperrors.NewForbidden("caller lacks the required quote capability")
	case errors.Is(err, domain.ErrTicketNotFound):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, domain.ErrQuoteNotFound):
		return apperrors.NewNotFound("quote", nil)
	case errors.Is(err, domain.ErrInvalidQuoteFigures):
		return apperrors.NewValidationError("quote figures invalid", nil)
	case errors.Is(err, domain.ErrMissingReason):
		return apperrors.NewValidationError("a reason is required for quote changes", nil)
	case errors.Is(err, domain.ErrNoChangesSupplied):
		return apperrors.NewValidationError("no effective changes supplied", nil)
	case errors.Is(err, domain.ErrStaleQuoteVersion):
		return apperrors.NewConflict("STALE_QUOTE_VERSION", "quote was modified since the version you read")
	case errors.Is(err, domain.ErrQuoteAlreadyExists):
		return apperrors.NewConflict("QUOTE_ALREADY_EXISTS", "ticket already has a quote; update it instead")
	case errors.Is(err, domain.ErrDuplicateInitialQuote):
		return apperrors.NewConflict("DUPLICATE_INITIAL_QUOTE", "an initial quote was created concurrently")
	case errors.Is(err, domain.ErrInvalidApprovalTransition):
		return apperrors.NewConflict("INVALID_APPROVAL_TRANSITION", "quote is not in a submittable approval state")
	case errors.Is(err, domain.ErrNoApplicableRule):
		return apperrors.NewDomainError("NO_APPLICABLE_RULE", "no calculation rule matches this ticket; create the quote manually", http.StatusUnprocessableEntity, nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError(fiberErrorCode(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return err
}

func fiberErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	default:
		return "REQUEST_FAILED"
	}
}
