package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/quote-service/internal/api/dto"
	"github.com/spec-kit/quote-service/internal/auth"
	"github.com/spec-kit/quote-service/internal/domain"
	"github.com/spec-kit/quote-service/internal/service"
)

// QuotesHandler exposes the quote lifecycle endpoints.
type QuotesHandler struct {
	quotes *service.QuoteService
}

// NewQuotesHandler constructs handler.
func NewQuotesHandler(quotes *service.QuoteService) *QuotesHandler {
	return &QuotesHandler{quotes: quotes}
}

// Generate handles POST /api/tickets/:ticketId/quotes/generate.
func (h *QuotesHandler) Generate(c *fiber.Ctx) error {
	perm, err := permissionContext(c)
	if err != nil {
		return err
	}
	quote, err := h.quotes.Generate(c.UserContext(), perm, c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": quoteResponse(quote)})
}

// CreateManual handles POST /api/tickets/:ticketId/quotes.
func (h *QuotesHandler) CreateManual(c *fiber.Ctx) error {
	perm, err := permissionContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateManualQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	figures := domain.QuoteFigures{
		EstimatedHoursMinimum: req.EstimatedHoursMinimum,
		EstimatedHoursMaximum: req.EstimatedHoursMaximum,
		HourlyRate:            req.HourlyRate,
		FixedCost:             req.FixedCost,
		EffortLevel:           req.EffortLevel,
		ConfidenceLevel:       req.ConfidenceLevel,
	}
	quote, err := h.quotes.CreateManual(c.UserContext(), perm, c.Params("ticketId"), figures)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": quoteResponse(quote)})
}

// Update handles PATCH /api/tickets/:ticketId/quotes.
func (h *QuotesHandler) Update(c *fiber.Ctx) error {
	perm, err := permissionContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.BaseVersion < 1 {
		return fiber.NewError(http.StatusBadRequest, "base_version required")
	}

	changes := domain.QuoteChangeSet{
		EstimatedHoursMinimum: req.EstimatedHoursMinimum,
		EstimatedHoursMaximum: req.EstimatedHoursMaximum,
		HourlyRate:            req.HourlyRate,
		FixedCost:             req.FixedCost,
		EffortLevel:           req.EffortLevel,
		ConfidenceLevel:       req.ConfidenceLevel,
	}
	quote, err := h.quotes.Update(c.UserContext(), perm, c.Params("ticketId"), req.BaseVersion, changes, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": quoteResponse(quote)})
}

// List handles GET /api/tickets/:ticketId/quotes.
func (h *QuotesHandler) List(c *fiber.Ctx) error {
	quotes, err := h.quotes.ListQuotes(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	resp := make([]dto.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		resp = append(resp, quoteResponse(&quotes[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetCurrent handles GET /api/tickets/:ticketId/quotes/current.
func (h *QuotesHandler) GetCurrent(c *fiber.Ctx) error {
	quote, err := h.quotes.GetCurrent(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": quoteResponse(quote)})
}

// SubmitForApproval handles POST /api/quotes/:quoteId/approval.
func (h *QuotesHandler) SubmitForApproval(c *fiber.Ctx) error {
	perm, err := permissionContext(c)
	if err != nil {
		return err
	}
	approval, err := h.quotes.SubmitForApproval(c.UserContext(), perm, c.Params("quoteId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": approvalResponse(approval)})
}

// ListRevisions handles GET /api/quotes/:quoteId/revisions.
func (h *QuotesHandler) ListRevisions(c *fiber.Ctx) error {
	revisions, err := h.quotes.GetHistory(c.UserContext(), c.Params("quoteId"))
	if err != nil {
		return err
	}
	resp := make([]dto.QuoteRevisionResponse, 0, len(revisions))
	for i := range revisions {
		resp = append(resp, revisionResponse(&revisions[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func permissionContext(c *fiber.Ctx) (domain.PermissionContext, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return domain.PermissionContext{}, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return auth.PermissionContextFor(principal), nil
}

func quoteResponse(quote *domain.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		ID:                       quote.ID,
		TicketID:                 quote.TicketID,
		Version:                  quote.Version,
		EstimatedHoursMinimum:    quote.EstimatedHoursMinimum,
		EstimatedHoursMaximum:    quote.EstimatedHoursMaximum,
		HourlyRate:               quote.HourlyRate,
		FixedCost:                quote.FixedCost,
		EffortLevel:              quote.EffortLevel,
		ConfidenceLevel:          quote.ConfidenceLevel,
		EstimatedCost:            quote.EstimatedCost(),
		EstimatedResolutionHours: quote.EstimatedResolutionHours(),
		CreatedByID:              quote.CreatedByID,
		CreatedAt:                quote.CreatedAt,
	}
}

func revisionResponse(rev *domain.QuoteDetailRevision) dto.QuoteRevisionResponse {
	return dto.QuoteRevisionResponse{
		ID:          rev.ID,
		QuoteID:     rev.QuoteID,
		FieldName:   rev.FieldName,
		OldValue:    rev.OldValue,
		NewValue:    rev.NewValue,
		Reason:      rev.Reason,
		ChangedByID: rev.ChangedByID,
		CreatedAt:   rev.CreatedAt,
	}
}

func approvalResponse(approval *domain.QuoteApproval) dto.QuoteApprovalResponse {
	return dto.QuoteApprovalResponse{
		ID:            approval.ID,
		QuoteID:       approval.QuoteID,
		Status:        approval.Status,
		SubmittedByID: approval.SubmittedByID,
		CreatedAt:     approval.CreatedAt,
		UpdatedAt:     approval.UpdatedAt,
	}
}
