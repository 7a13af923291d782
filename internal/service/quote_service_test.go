package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/quote-service/internal/domain"
	"github.com/spec-kit/quote-service/internal/events"
)

type memQuoteRepo struct {
	seq       int
	quotes    []*domain.Quote
	revisions map[string][]domain.QuoteDetailRevision
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{revisions: map[string][]domain.QuoteDetailRevision{}}
}

func (r *memQuoteRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("quote-%d", r.seq)
}

func (r *memQuoteRepo) maxVersion(ticketID string) int {
	max := 0
	for _, q := range r.quotes {
		if q.TicketID == ticketID && q.Version > max {
			max = q.Version
		}
	}
	return max
}

func (r *memQuoteRepo) CreateInitial(ctx context.Context, quote *domain.Quote) error {
	for _, existing := range r.quotes {
		if existing.TicketID == quote.TicketID && existing.Version == quote.Version {
			return domain.ErrDuplicateInitialQuote
		}
	}
	quote.ID = r.nextID()
	quote.CreatedAt = time.Now()
	stored := *quote
	r.quotes = append(r.quotes, &stored)
	return nil
}

func (r *memQuoteRepo) ApplyUpdate(ctx context.Context, next *domain.Quote, revisions []domain.QuoteDetailRevision) error {
	if r.maxVersion(next.TicketID) != next.Version-1 {
		return domain.ErrStaleQuoteVersion
	}
	next.ID = r.nextID()
	next.CreatedAt = time.Now()
	stored := *next
	r.quotes = append(r.quotes, &stored)
	for i := range revisions {
		revisions[i].ID = fmt.Sprintf("rev-%s-%d", next.ID, i)
		revisions[i].QuoteID = next.ID
		revisions[i].CreatedAt = next.CreatedAt
		r.revisions[next.ID] = append(r.revisions[next.ID], revisions[i])
	}
	return nil
}

func (r *memQuoteRepo) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	for _, q := range r.quotes {
		if q.ID == id {
			copied := *q
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memQuoteRepo) GetCurrent(ctx context.Context, ticketID string) (*domain.Quote, error) {
	var current *domain.Quote
	for _, q := range r.quotes {
		if q.TicketID == ticketID && (current == nil || q.Version > current.Version) {
			current = q
		}
	}
	if current == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *current
	return &copied, nil
}

func (r *memQuoteRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Quote, error) {
	var result []domain.Quote
	for _, q := range r.quotes {
		if q.TicketID == ticketID {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func (r *memQuoteRepo) ListRevisions(ctx context.Context, quoteID string) ([]domain.QuoteDetailRevision, error) {
	return append([]domain.QuoteDetailRevision{}, r.revisions[quoteID]...), nil
}

type memTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

type staticLookups struct {
	profile *domain.RateProfile
	rules   []domain.QuoteCalculationRule
}

func (l *staticLookups) RateProfileFor(ctx context.Context, organizationID string) (*domain.RateProfile, error) {
	if l.profile == nil || l.profile.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	return l.profile, nil
}

func (l *staticLookups) ActiveRules(ctx context.Context) ([]domain.QuoteCalculationRule, error) {
	return l.rules, nil
}

type memApprovalRepo struct {
	seq       int
	approvals map[string]*domain.QuoteApproval
}

func newMemApprovalRepo() *memApprovalRepo {
	return &memApprovalRepo{approvals: map[string]*domain.QuoteApproval{}}
}

func (r *memApprovalRepo) Create(ctx context.Context, approval *domain.QuoteApproval) error {
	r.seq++
	approval.ID = fmt.Sprintf("approval-%d", r.seq)
	approval.CreatedAt = time.Now()
	approval.UpdatedAt = approval.CreatedAt
	stored := *approval
	r.approvals[approval.QuoteID] = &stored
	return nil
}

func (r *memApprovalRepo) GetByQuote(ctx context.Context, quoteID string) (*domain.QuoteApproval, error) {
	approval, ok := r.approvals[quoteID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *approval
	return &copied, nil
}

func (r *memApprovalRepo) UpdateStatus(ctx context.Context, id string, status domain.ApprovalStatus, actorID string) error {
	for _, approval := range r.approvals {
		if approval.ID == id {
			approval.Status = status
			approval.SubmittedByID = actorID
			approval.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrQuoteNotFound
}

type fixture struct {
	service   *QuoteService
	quotes    *memQuoteRepo
	approvals *memApprovalRepo
	published *[]events.Event
}

func newFixture() *fixture {
	quotes := newMemQuoteRepo()
	approvals := newMemApprovalRepo()
	tickets := &memTicketRepo{tickets: map[string]*domain.Ticket{
		"ticket-1": testTicket(),
	}}
	lookups := &staticLookups{
		profile: testProfile(),
		rules:   []domain.QuoteCalculationRule{activeRule(nil)},
	}

	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	capture := func(ctx context.Context, event events.Event) error {
		*published = append(*published, event)
		return nil
	}
	dispatcher.Subscribe(events.EventQuoteCreated, capture)
	dispatcher.Subscribe(events.EventQuoteUpdated, capture)
	dispatcher.Subscribe(events.EventQuoteSubmittedForApproval, capture)

	svc := NewQuoteService(QuoteDependencies{
		QuoteRepo:  quotes,
		TicketRepo: tickets,
		Lookups:    lookups,
		Calculator: NewQuoteCalculator(),
		Approvals:  NewApprovalTracker(approvals, quotes),
		Dispatcher: dispatcher,
	})
	return &fixture{service: svc, quotes: quotes, approvals: approvals, published: published}
}

var (
	leadPerm  = domain.NewPermissionContext("staff-lead", domain.CapabilityQuotesCreate, domain.CapabilityQuotesUpdate)
	agentPerm = domain.NewPermissionContext("staff-agent")
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates version 1 from rule and rate profile", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		require.Equal(t, 1, quote.Version)
		require.Equal(t, "ticket-1", quote.TicketID)
		require.Equal(t, "staff-lead", quote.CreatedByID)
		require.True(t, quote.HourlyRate.Equal(dec("85")))
		require.True(t, quote.EstimatedCost().Equal(dec("850")))
		require.True(t, quote.EstimatedResolutionHours().Equal(dec("10")))

		require.Len(t, *f.published, 1)
		require.Equal(t, events.EventQuoteCreated, (*f.published)[0].Type)
		payload := (*f.published)[0].Payload.(events.QuoteCreatedPayload)
		require.Equal(t, events.QuoteSourceGenerated, payload.Source)
	})

	t.Run("requires create capability", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Generate(ctx, agentPerm, "ticket-1")
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
		require.Empty(t, f.quotes.quotes, "denied call must not write")
	})

	t.Run("unknown ticket", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Generate(ctx, leadPerm, "ticket-missing")
		require.ErrorIs(t, err, domain.ErrTicketNotFound)
	})

	t.Run("second quote for the same ticket is rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)
		_, err = f.service.Generate(ctx, leadPerm, "ticket-1")
		require.ErrorIs(t, err, domain.ErrQuoteAlreadyExists)
	})
}

func TestCreateManual(t *testing.T) {
	ctx := context.Background()

	figures := domain.QuoteFigures{
		EstimatedHoursMinimum: dec("2"),
		EstimatedHoursMaximum: dec("6"),
		HourlyRate:            dec("70"),
		FixedCost:             dec("100"),
		EffortLevel:           domain.EffortLevelMedium,
	}

	t.Run("creates version 1 with the supplied figures", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.CreateManual(ctx, leadPerm, "ticket-1", figures)
		require.NoError(t, err)
		require.Equal(t, 1, quote.Version)
		require.Nil(t, quote.ConfidenceLevel, "confidence stays unset unless supplied")
		require.True(t, quote.ResolutionMultiplier.Equal(decimal.NewFromInt(1)), "multiplier defaults to 1")
		require.True(t, quote.EstimatedCost().Equal(dec("520")))
	})

	t.Run("rejects invalid figures", func(t *testing.T) {
		f := newFixture()
		bad := figures
		bad.EstimatedHoursMinimum = dec("8")
		_, err := f.service.CreateManual(ctx, leadPerm, "ticket-1", bad)
		require.ErrorIs(t, err, domain.ErrInvalidQuoteFigures)
	})

	t.Run("requires create capability", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateManual(ctx, agentPerm, "ticket-1", figures)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *fixture) *domain.Quote {
		t.Helper()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)
		return quote
	}

	t.Run("creates the next version with revision rows", func(t *testing.T) {
		f := newFixture()
		seed(t, f)

		rate := dec("95")
		quote, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, "customer negotiated rate")
		require.NoError(t, err)
		require.Equal(t, 2, quote.Version)
		require.True(t, quote.HourlyRate.Equal(rate))
		require.True(t, quote.EstimatedHoursMaximum.Equal(dec("10")), "unchanged fields carry forward")
		require.True(t, quote.EstimatedCost().Equal(dec("950")))

		revisions, err := f.service.GetHistory(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, revisions, 1)
		require.Equal(t, domain.FieldHourlyRate, revisions[0].FieldName)
		require.Equal(t, "85", revisions[0].OldValue)
		require.Equal(t, "95", revisions[0].NewValue)
		require.Equal(t, "customer negotiated rate", revisions[0].Reason)
		require.Equal(t, "staff-lead", revisions[0].ChangedByID)

		all, err := f.service.ListQuotes(ctx, "ticket-1")
		require.NoError(t, err)
		require.Len(t, all, 2, "superseded versions are retained")
		require.Equal(t, 1, all[0].Version)
		require.Equal(t, 2, all[1].Version)
	})

	t.Run("changing K fields produces K revisions sharing reason and timestamp", func(t *testing.T) {
		f := newFixture()
		seed(t, f)

		rate := dec("95")
		hoursMax := dec("14")
		effort := domain.EffortLevelMedium
		quote, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{
			HourlyRate:            &rate,
			EstimatedHoursMaximum: &hoursMax,
			EffortLevel:           &effort,
		}, "re-scoped after triage")
		require.NoError(t, err)

		revisions, err := f.service.GetHistory(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, revisions, 3)
		for _, rev := range revisions {
			require.Equal(t, "re-scoped after triage", rev.Reason)
			require.Equal(t, quote.CreatedAt, rev.CreatedAt)
		}
	})

	t.Run("stale base version is rejected", func(t *testing.T) {
		f := newFixture()
		seed(t, f)

		rate := dec("95")
		_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, "first writer")
		require.NoError(t, err)

		other := dec("100")
		_, err = f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &other}, "second writer, stale read")
		require.ErrorIs(t, err, domain.ErrStaleQuoteVersion)

		current, err := f.service.GetCurrent(ctx, "ticket-1")
		require.NoError(t, err)
		require.Equal(t, 2, current.Version)
		require.True(t, current.HourlyRate.Equal(rate), "losing write must not land")
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		f := newFixture()
		seed(t, f)
		rate := dec("95")
		for _, reason := range []string{"", "   "} {
			_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, reason)
			require.ErrorIs(t, err, domain.ErrMissingReason)
		}
		all, err := f.service.ListQuotes(ctx, "ticket-1")
		require.NoError(t, err)
		require.Len(t, all, 1, "rejected update must not write")
	})

	t.Run("sequential updates accumulate", func(t *testing.T) {
		f := newFixture()
		seed(t, f)

		rate := dec("95")
		_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, "rate change")
		require.NoError(t, err)

		hoursMax := dec("12")
		_, err = f.service.Update(ctx, leadPerm, "ticket-1", 2, domain.QuoteChangeSet{EstimatedHoursMaximum: &hoursMax}, "scope grew")
		require.NoError(t, err)

		fixed := dec("50")
		current, err := f.service.Update(ctx, leadPerm, "ticket-1", 3, domain.QuoteChangeSet{FixedCost: &fixed}, "setup fee")
		require.NoError(t, err)

		require.Equal(t, 4, current.Version)
		require.True(t, current.HourlyRate.Equal(rate))
		require.True(t, current.EstimatedHoursMaximum.Equal(hoursMax))
		require.True(t, current.FixedCost.Equal(fixed))
		require.True(t, current.EstimatedCost().Equal(dec("1190")))

		all, err := f.service.ListQuotes(ctx, "ticket-1")
		require.NoError(t, err)
		require.Len(t, all, 4)
		for i, q := range all {
			require.Equal(t, i+1, q.Version, "versions are gapless and ascending")
		}
	})

	t.Run("no-op change set is rejected without a new version", func(t *testing.T) {
		f := newFixture()
		seed(t, f)
		same := dec("85.00")
		_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &same}, "no actual change")
		require.ErrorIs(t, err, domain.ErrNoChangesSupplied)

		current, err := f.service.GetCurrent(ctx, "ticket-1")
		require.NoError(t, err)
		require.Equal(t, 1, current.Version)
	})

	t.Run("update without an existing quote", func(t *testing.T) {
		f := newFixture()
		rate := dec("95")
		_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, "nothing to update")
		require.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})

	t.Run("requires update capability", func(t *testing.T) {
		f := newFixture()
		seed(t, f)
		rate := dec("95")
		_, err := f.service.Update(ctx, agentPerm, "ticket-1", 1, domain.QuoteChangeSet{HourlyRate: &rate}, "agent attempt")
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("rejects figures made invalid by the merge", func(t *testing.T) {
		f := newFixture()
		seed(t, f)
		hoursMin := dec("20")
		_, err := f.service.Update(ctx, leadPerm, "ticket-1", 1, domain.QuoteChangeSet{EstimatedHoursMinimum: &hoursMin}, "min above max")
		require.ErrorIs(t, err, domain.ErrInvalidQuoteFigures)
	})
}

func TestSubmitForApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the quote to pending approval", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		approval, err := f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ApprovalStatusPending, approval.Status)
		require.Equal(t, "staff-lead", approval.SubmittedByID)

		last := (*f.published)[len(*f.published)-1]
		require.Equal(t, events.EventQuoteSubmittedForApproval, last.Type)
	})

	t.Run("pending quote cannot be resubmitted", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		_, err = f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.NoError(t, err)
		_, err = f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.ErrorIs(t, err, domain.ErrInvalidApprovalTransition)
	})

	t.Run("rejected quote may be resubmitted", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		_, err = f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.NoError(t, err)
		f.approvals.approvals[quote.ID].Status = domain.ApprovalStatusRejected

		approval, err := f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ApprovalStatusPending, approval.Status)
	})

	t.Run("approved quote cannot be resubmitted", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		_, err = f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.NoError(t, err)
		f.approvals.approvals[quote.ID].Status = domain.ApprovalStatusApproved

		_, err = f.service.SubmitForApproval(ctx, leadPerm, quote.ID)
		require.ErrorIs(t, err, domain.ErrInvalidApprovalTransition)
	})

	t.Run("unknown quote", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.SubmitForApproval(ctx, leadPerm, "quote-missing")
		require.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})

	t.Run("requires update capability", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)
		_, err = f.service.SubmitForApproval(ctx, agentPerm, quote.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestReads(t *testing.T) {
	ctx := context.Background()

	t.Run("current quote for an unquoted ticket", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.GetCurrent(ctx, "ticket-1")
		require.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})

	t.Run("history of an unknown quote", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.GetHistory(ctx, "quote-missing")
		require.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})

	t.Run("reads do not change state", func(t *testing.T) {
		f := newFixture()
		quote, err := f.service.Generate(ctx, leadPerm, "ticket-1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			current, err := f.service.GetCurrent(ctx, "ticket-1")
			require.NoError(t, err)
			require.Equal(t, quote.ID, current.ID)
		}
		all, err := f.service.ListQuotes(ctx, "ticket-1")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}
