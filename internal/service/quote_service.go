package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/quote-service/internal/domain"
	"github.com/spec-kit/quote-service/internal/events"
	"github.com/spec-kit/quote-service/internal/repository"
)

// QuoteService orchestrates the quote lifecycle: generation, manual
// creation, audited updates, approval submission and history reads. Every
// mutating operation checks the caller's permission context before touching
// state; versioning conflicts surface as ErrStaleQuoteVersion and are never
// retried here.
type QuoteService struct {
	quotes     repository.QuoteRepository
	tickets    repository.TicketRepository
	lookups    LookupSnapshots
	calculator *QuoteCalculator
	approvals  *ApprovalTracker
	dispatcher events.Dispatcher
}

// QuoteDependencies bundles collaborators for the quote service.
type QuoteDependencies struct {
	QuoteRepo  repository.QuoteRepository
	TicketRepo repository.TicketRepository
	Lookups    LookupSnapshots
	Calculator *QuoteCalculator
	Approvals  *ApprovalTracker
	Dispatcher events.Dispatcher
}

// NewQuoteService constructs the service.
func NewQuoteService(deps QuoteDependencies) *QuoteService {
	return &QuoteService{
		quotes:     deps.QuoteRepo,
		tickets:    deps.TicketRepo,
		lookups:    deps.Lookups,
		calculator: deps.Calculator,
		approvals:  deps.Approvals,
		dispatcher: deps.Dispatcher,
	}
}

// Generate auto-creates version 1 for a ticket from the active rate profile
// and calculation rules. Tickets that already have a quote must go through
// Update instead.
func (s *QuoteService) Generate(ctx context.Context, perm domain.PermissionContext, ticketID string) (*domain.Quote, error) {
	if !perm.Has(domain.CapabilityQuotesCreate) {
		return nil, domain.ErrPermissionDenied
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoCurrentQuote(ctx, ticketID); err != nil {
		return nil, err
	}

	profile, err := s.lookups.RateProfileFor(ctx, ticket.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoApplicableRule
		}
		return nil, err
	}
	rules, err := s.lookups.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	figures, err := s.calculator.CalculateDraft(ticket, profile, rules)
	if err != nil {
		return nil, err
	}

	return s.createInitial(ctx, ticketID, figures, perm.ActorID, events.QuoteSourceGenerated)
}

// CreateManual creates version 1 from caller-supplied figures, bypassing the
// calculator.
func (s *QuoteService) CreateManual(ctx context.Context, perm domain.PermissionContext, ticketID string, figures domain.QuoteFigures) (*domain.Quote, error) {
	if !perm.Has(domain.CapabilityQuotesCreate) {
		return nil, domain.ErrPermissionDenied
	}
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if err := s.ensureNoCurrentQuote(ctx, ticketID); err != nil {
		return nil, err
	}
	if figures.ResolutionMultiplier.IsZero() {
		figures.ResolutionMultiplier = decimal.NewFromInt(1)
	}
	if err := figures.Validate(); err != nil {
		return nil, err
	}

	return s.createInitial(ctx, ticketID, figures, perm.ActorID, events.QuoteSourceManual)
}

// Update applies a partial change set against the version the caller last
// read, producing version baseVersion+1 plus one revision row per changed
// field. The reason is mandatory and recorded verbatim on every revision.
func (s *QuoteService) Update(ctx context.Context, perm domain.PermissionContext, ticketID string, baseVersion int, changes domain.QuoteChangeSet, reason string) (*domain.Quote, error) {
	if !perm.Has(domain.CapabilityQuotesUpdate) {
		return nil, domain.ErrPermissionDenied
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}

	base, err := s.quotes.GetCurrent(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	if base.Version != baseVersion {
		return nil, domain.ErrStaleQuoteVersion
	}

	figures, changed := domain.ApplyChanges(base, changes)
	if len(changed) == 0 {
		return nil, domain.ErrNoChangesSupplied
	}
	if err := figures.Validate(); err != nil {
		return nil, err
	}

	next := quoteFromFigures(ticketID, baseVersion+1, figures, perm.ActorID)
	revisions := make([]domain.QuoteDetailRevision, 0, len(changed))
	fieldNames := make([]string, 0, len(changed))
	for _, change := range changed {
		revisions = append(revisions, domain.QuoteDetailRevision{
			FieldName:   change.FieldName,
			OldValue:    change.OldValue,
			NewValue:    change.NewValue,
			Reason:      reason,
			ChangedByID: perm.ActorID,
		})
		fieldNames = append(fieldNames, change.FieldName)
	}

	if err := s.quotes.ApplyUpdate(ctx, next, revisions); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventQuoteUpdated,
		TicketID: ticketID,
		QuoteID:  next.ID,
		ActorID:  perm.ActorID,
		Payload: events.QuoteUpdatedPayload{
			Version:       next.Version,
			ChangedFields: fieldNames,
			Reason:        reason,
		},
	})
	return next, nil
}

// SubmitForApproval moves the quote into the approval workflow.
func (s *QuoteService) SubmitForApproval(ctx context.Context, perm domain.PermissionContext, quoteID string) (*domain.QuoteApproval, error) {
	if !perm.Has(domain.CapabilityQuotesUpdate) {
		return nil, domain.ErrPermissionDenied
	}
	approval, err := s.approvals.Submit(ctx, quoteID, perm.ActorID)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err == nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventQuoteSubmittedForApproval,
			TicketID: quote.TicketID,
			QuoteID:  quoteID,
			ActorID:  perm.ActorID,
			Payload:  events.QuoteSubmittedPayload{ApprovalStatus: approval.Status},
		})
	}
	return approval, nil
}

// GetHistory returns the revision audit trail for a quote, oldest first.
func (s *QuoteService) GetHistory(ctx context.Context, quoteID string) ([]domain.QuoteDetailRevision, error) {
	if _, err := s.quotes.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	return s.quotes.ListRevisions(ctx, quoteID)
}

// GetCurrent returns the highest-version quote for a ticket.
func (s *QuoteService) GetCurrent(ctx context.Context, ticketID string) (*domain.Quote, error) {
	quote, err := s.quotes.GetCurrent(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	return quote, nil
}

// ListQuotes returns every version for a ticket, ascending by version.
func (s *QuoteService) ListQuotes(ctx context.Context, ticketID string) ([]domain.Quote, error) {
	return s.quotes.ListByTicket(ctx, ticketID)
}

func (s *QuoteService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *QuoteService) ensureNoCurrentQuote(ctx context.Context, ticketID string) error {
	_, err := s.quotes.GetCurrent(ctx, ticketID)
	if err == nil {
		return domain.ErrQuoteAlreadyExists
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func (s *QuoteService) createInitial(ctx context.Context, ticketID string, figures domain.QuoteFigures, actorID string, source events.QuoteSource) (*domain.Quote, error) {
	quote := quoteFromFigures(ticketID, 1, figures, actorID)
	if err := s.quotes.CreateInitial(ctx, quote); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventQuoteCreated,
		TicketID: ticketID,
		QuoteID:  quote.ID,
		ActorID:  actorID,
		Payload: events.QuoteCreatedPayload{
			Version:       quote.Version,
			Source:        source,
			EffortLevel:   quote.EffortLevel,
			EstimatedCost: quote.EstimatedCost().String(),
		},
	})
	return quote, nil
}

func (s *QuoteService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func quoteFromFigures(ticketID string, version int, figures domain.QuoteFigures, actorID string) *domain.Quote {
	return &domain.Quote{
		TicketID:              ticketID,
		Version:               version,
		EstimatedHoursMinimum: figures.EstimatedHoursMinimum,
		EstimatedHoursMaximum: figures.EstimatedHoursMaximum,
		HourlyRate:            figures.HourlyRate,
		FixedCost:             figures.FixedCost,
		EffortLevel:           figures.EffortLevel,
		ConfidenceLevel:       figures.ConfidenceLevel,
		ResolutionMultiplier:  figures.ResolutionMultiplier,
		CreatedByID:           actorID,
	}
}
